package operations

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"
)

// flagErrorExitCode matches the exit status of a usage error in most CLIs.
const flagErrorExitCode = 2

// CobraOperation runs a cobra command built fresh for every invocation, so
// flag values never leak between runs.
type CobraOperation struct {
	build func() *cobra.Command
}

func NewCobraOperation(build func() *cobra.Command) *CobraOperation {
	return &CobraOperation{build: build}
}

// CobraDefinition builds a registry entry named after the command's Use line.
func CobraDefinition(kind string, build func() *cobra.Command) Definition {
	cmd := build()
	return Definition{
		Name:      cmd.Name(),
		Help:      cmd.Short,
		Kind:      kind,
		Operation: NewCobraOperation(build),
	}
}

func (o *CobraOperation) Run(ctx context.Context, streams Streams, args []string) error {
	cmd := o.build()

	// cobra falls back to os.Args when args is nil
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetOut(streams.Stdout)
	cmd.SetErr(streams.Stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErr(c.UsageString())
		c.PrintErrf("%s: error: %v\n", c.CommandPath(), err)
		return &ExitError{Code: flagErrorExitCode, Message: err.Error()}
	})

	return cmd.ExecuteContext(ctx)
}
