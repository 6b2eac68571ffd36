package operations

import (
	"fmt"
	"strconv"
)

// ExitError is an intentional early termination raised by an operation.
// It is not a fault: the run finishes and the message is recorded.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return strconv.Itoa(e.Code)
}

func Exit(code int, format string, a ...interface{}) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, a...)}
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown command: %q", e.Name)
}
