package api

import "errors"

var (
	ErrInvalidOrigin        = errors.New("invalid origin")
	ErrInvalidMethod        = errors.New("invalid method")
	ErrInvalidInterceptor   = errors.New("invalid interceptor")
	ErrInvalidPattern       = errors.New("invalid net-connect pattern")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrNetConnectDisallowed = errors.New("net connect disallowed")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
