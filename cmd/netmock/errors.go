package main

import "errors"

// Config errors
var (
	ErrLoadConfig = errors.New("load config")
	ErrInitLogger = errors.New("init logger")
)

// Check errors
var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrInvalidMockHost  = errors.New("invalid mock origin")
	ErrInvalidAllowHost = errors.New("invalid allow entry")
	ErrRequestBlocked   = errors.New("request blocked")
)
