package command_runner

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/services/operations"
	"golang-admin-command-runner/internal/utils"
)

// Resolver looks up the operation behind a command name.
type Resolver interface {
	Resolve(name string) (operations.Operation, error)
}

// Result is the captured outcome of one invocation.
type Result struct {
	Argv      []string
	Stdout    string
	Stderr    string
	Truncated bool
	// Err is the failure recorded for the run; nil means it completed.
	Err        error
	ExitCode   *int
	TimedOut   bool
	FinishedAt time.Time
}

func (r *Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func (r *Result) Status() models.CommandRunStatus {
	switch {
	case r.Err == nil:
		return models.StatusCompleted
	case r.TimedOut:
		return models.StatusTimeout
	default:
		return models.StatusFailed
	}
}

type Executor struct {
	resolver       Resolver
	logger         *logrus.Logger
	maxOutputBytes int
	newSink        SinkFactory
	now            func() time.Time
}

func NewExecutor(resolver Resolver, logger *logrus.Logger, maxOutputBytes int) *Executor {
	return &Executor{
		resolver:       resolver,
		logger:         logger,
		maxOutputBytes: maxOutputBytes,
		newSink:        NewBoundedBuffer,
		now:            utils.TimeNowUTC,
	}
}

// Run tokenizes line and executes it. A line that cannot be tokenized yields
// a failed result, not an error.
func (e *Executor) Run(ctx context.Context, line string) (*Result, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return &Result{Err: err, FinishedAt: e.now()}, nil
	}
	return e.Execute(ctx, tokens[0], tokens[1:])
}

// Execute resolves name and invokes it with output captured into a scope
// private to this call. Every failure of the command itself ends up in the
// result; the returned error is reserved for faults of the capture, in which
// case the result must be discarded.
func (e *Executor) Execute(ctx context.Context, name string, args []string) (*Result, error) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)

	scope := OpenCaptureScope(e.maxOutputBytes, e.newSink)
	runErr, err := e.invokeCaptured(ctx, scope, name, args)
	if err != nil {
		e.logger.WithError(err).WithField("command", name).Error("Failed to capture command output")
		return nil, err
	}

	result := &Result{
		Argv:       argv,
		Stdout:     scope.Stdout(),
		Stderr:     scope.Stderr(),
		Truncated:  scope.Truncated(),
		Err:        runErr,
		FinishedAt: e.now(),
	}

	var exitErr *operations.ExitError
	var interrupted *InterruptedError
	switch {
	case errors.As(runErr, &exitErr):
		result.ExitCode = utils.ToPointer(exitErr.Code)
	case errors.As(runErr, &interrupted):
		result.TimedOut = true
	}
	return result, nil
}

func (e *Executor) invokeCaptured(ctx context.Context, scope *CaptureScope, name string, args []string) (runErr error, err error) {
	defer func() {
		if closeErr := scope.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	op, resolveErr := e.resolver.Resolve(name)
	if resolveErr != nil {
		return resolveErr, nil
	}
	return e.invoke(ctx, op, scope.Streams(), args), nil
}

// invoke runs op inline when ctx can never end. Otherwise op runs on its own
// goroutine and invoke returns as soon as ctx ends; the capture scope is then
// closed under the abandoned operation.
func (e *Executor) invoke(ctx context.Context, op operations.Operation, streams operations.Streams, args []string) error {
	if ctx.Done() == nil {
		return e.call(ctx, op, streams, args)
	}

	done := make(chan error, 1)
	go func() {
		done <- e.call(ctx, op, streams, args)
	}()

	select {
	case err := <-done:
		// A failure observed after ctx ended counts as a timeout even if the
		// operation failed for its own reasons at the same moment.
		if err != nil && ctx.Err() != nil {
			return &InterruptedError{Err: ctx.Err()}
		}
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			if err == nil {
				return nil
			}
		default:
		}
		return &InterruptedError{Err: ctx.Err()}
	}
}

func (e *Executor) call(ctx context.Context, op operations.Operation, streams operations.Streams, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered panic from command")
			err = &PanicError{Value: r}
		}
	}()
	return op.Run(ctx, streams, args)
}
