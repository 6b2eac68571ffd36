package operations

import (
	"context"
	"io"
)

const (
	KindBuiltin = "builtin"
	KindCobra   = "cobra"
	KindExec    = "exec"
	KindFunc    = "func"
)

// Streams are the output channels of a single invocation. Operations must
// write through them and never to os.Stdout or os.Stderr.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Operation is a named unit of work taking string arguments.
//
// Run may return an *ExitError to signal an intentional early exit, or any
// other error to signal failure. Either way the output already written to
// streams is kept.
type Operation interface {
	Run(ctx context.Context, streams Streams, args []string) error
}

type Func func(ctx context.Context, streams Streams, args []string) error

func (f Func) Run(ctx context.Context, streams Streams, args []string) error {
	return f(ctx, streams, args)
}

// Definition is a registry entry.
type Definition struct {
	Name      string
	Help      string
	Kind      string
	Operation Operation
}
