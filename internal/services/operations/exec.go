package operations

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"
)

const defaultTerminationGrace = 5 * time.Second

// ExecOperation runs an allowlisted binary. The binary path and leading args
// are fixed by configuration; invocation args are appended after them.
type ExecOperation struct {
	Path             string
	Args             []string
	Env              []string
	Dir              string
	Timeout          time.Duration
	TerminationGrace time.Duration
}

func (o *ExecOperation) validate() error {
	if !filepath.IsAbs(o.Path) {
		return fmt.Errorf("binary path must be absolute: %s", o.Path)
	}
	return nil
}

func (o *ExecOperation) Run(ctx context.Context, streams Streams, args []string) error {
	if err := o.validate(); err != nil {
		return err
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	argv := make([]string, 0, len(o.Args)+len(args))
	argv = append(argv, o.Args...)
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, o.Path, argv...)
	// Controlled environment, nothing is inherited from the server process.
	cmd.Env = append([]string{}, o.Env...)
	cmd.Dir = o.Dir
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	grace := o.TerminationGrace
	if grace <= 0 {
		grace = defaultTerminationGrace
	}
	setProcessGroup(cmd, grace)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("command terminated: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return &ExitError{Code: code, Message: fmt.Sprintf("exit status %d", code)}
	}
	return fmt.Errorf("spawn error: %w", err)
}
