package command_runner

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyCommand     = errors.New("empty command")
	ErrMalformedCommand = errors.New("malformed command")
	// ErrCaptureClosed is returned to writers that outlive their invocation.
	ErrCaptureClosed = errors.New("capture scope is closed")
)

// MalformedCommandError reports a command line that could not be split into
// words, such as an unterminated quote.
type MalformedCommandError struct {
	Err error
}

func (e *MalformedCommandError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedCommand, e.Err)
}

func (e *MalformedCommandError) Unwrap() error { return e.Err }

func (e *MalformedCommandError) Is(target error) bool {
	return target == ErrMalformedCommand
}

// RedirectionFaultError is a failure of the output capture itself. A run that
// hits one has no trustworthy output and must not be recorded.
type RedirectionFaultError struct {
	Op  string
	Err error
}

func (e *RedirectionFaultError) Error() string {
	return fmt.Sprintf("output redirection fault during %s: %v", e.Op, e.Err)
}

func (e *RedirectionFaultError) Unwrap() error { return e.Err }

// InterruptedError is recorded when the caller's context ends before the
// operation returns.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return fmt.Sprintf("command timed out: %v", e.Err)
	}
	return fmt.Sprintf("command interrupted: %v", e.Err)
}

func (e *InterruptedError) Unwrap() error { return e.Err }

// PanicError carries the value recovered from a panicking operation.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
