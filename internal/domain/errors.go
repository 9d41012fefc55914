package domain

import "fmt"

// AssertionError marks a test failure caused by an unmet expectation,
// as opposed to a transport or runtime error. The scheduler records it
// as status failed rather than error.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

// Failf builds an AssertionError
func Failf(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}
