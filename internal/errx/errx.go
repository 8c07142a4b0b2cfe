// Package errx builds errors that keep a package sentinel reachable via
// errors.Is while carrying call-site detail.
package errx

import "fmt"

// Wrap joins a sentinel with its underlying cause. Both remain matchable with
// errors.Is, and the message reads "sentinel: cause".
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrapped{sentinel: sentinel, cause: cause}
}

// With appends formatted detail to a sentinel. The format string is appended
// verbatim after the sentinel message, so callers usually start it with ": "
// or " ". A %w verb in format keeps that argument matchable as well.
func With(sentinel error, format string, args ...any) error {
	detail := fmt.Errorf(format, args...)
	return &detailed{sentinel: sentinel, detail: detail}
}

type wrapped struct {
	sentinel error
	cause    error
}

func (e *wrapped) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *wrapped) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}

type detailed struct {
	sentinel error
	detail   error
}

func (e *detailed) Error() string {
	return e.sentinel.Error() + e.detail.Error()
}

func (e *detailed) Unwrap() []error {
	return []error{e.sentinel, e.detail}
}
