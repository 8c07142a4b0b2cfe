package transport

import "errors"

var (
	ErrNoResponse = errors.New("mocked verdict carries no response")
)
