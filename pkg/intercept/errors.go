package intercept

import (
	"errors"
	"fmt"

	"github.com/jingkaihe/netmock/pkg/api"
)

// RegistrationError reports a malformed interceptor. It is returned
// synchronously by Registry.Register and the Scope reply methods; other
// interceptors are unaffected.
type RegistrationError struct {
	Interceptor string
	Err         error
}

func (e *RegistrationError) Error() string {
	if e.Interceptor == "" {
		return fmt.Sprintf("register interceptor: %v", e.Err)
	}
	return fmt.Sprintf("register interceptor %s: %v", e.Interceptor, e.Err)
}

// Unwrap exposes api.ErrInvalidInterceptor alongside the underlying cause.
func (e *RegistrationError) Unwrap() []error {
	if e.Err == nil || errors.Is(e.Err, api.ErrInvalidInterceptor) {
		return []error{e.Err}
	}
	return []error{api.ErrInvalidInterceptor, e.Err}
}
