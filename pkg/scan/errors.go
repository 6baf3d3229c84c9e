package scan

import "fmt"

// InputError reports a missing or malformed domain. It maps to HTTP 400.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// InternalError reports a failure that escaped the per-check guards. It
// maps to HTTP 500.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("scan failed: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
