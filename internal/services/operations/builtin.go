package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping() error
}

type BuiltinDeps struct {
	Version string
	DB      Pinger
	Migrate func(ctx context.Context) error
}

// RegisterBuiltins adds the operations every deployment ships with.
func RegisterBuiltins(reg *Registry, deps BuiltinDeps) error {
	builders := []func() *cobra.Command{
		func() *cobra.Command { return newHelpCommand(reg) },
		newEchoCommand,
		newSleepCommand,
		func() *cobra.Command { return newVersionCommand(deps.Version) },
	}
	if deps.DB != nil {
		builders = append(builders, func() *cobra.Command { return newCheckCommand(deps.DB) })
	}
	if deps.Migrate != nil {
		builders = append(builders, func() *cobra.Command { return newMigrateCommand(deps.Migrate) })
	}

	for _, build := range builders {
		if err := reg.Register(CobraDefinition(KindBuiltin, build)); err != nil {
			return fmt.Errorf("failed to register builtin command: %w", err)
		}
	}
	return nil
}

func newHelpCommand(reg *Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "List available commands or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				def, ok := reg.Lookup(args[0])
				if !ok {
					return &NotFoundError{Name: args[0]}
				}
				cmd.Printf("%s (%s)\n  %s\n", def.Name, def.Kind, def.Help)
				return nil
			}

			cmd.Println("Available commands:")
			for _, def := range reg.List() {
				cmd.Printf("  %-16s %s\n", def.Name, def.Help)
			}
			return nil
		},
	}
}

func newEchoCommand() *cobra.Command {
	var noNewline, toStderr bool
	cmd := &cobra.Command{
		Use:   "echo [words...]",
		Short: "Write the arguments back",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if toStderr {
				out = cmd.ErrOrStderr()
			}
			text := strings.Join(args, " ")
			if !noNewline {
				text += "\n"
			}
			_, err := fmt.Fprint(out, text)
			return err
		},
	}
	cmd.Flags().BoolVarP(&noNewline, "no-newline", "n", false, "do not print the trailing newline")
	cmd.Flags().BoolVar(&toStderr, "stderr", false, "write to standard error instead")
	return cmd
}

func newSleepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sleep DURATION",
		Short: "Wait for a duration such as 500ms or 2s",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				cmd.Printf("slept %s\n", d)
				return nil
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}

func newCheckCommand(db Pinger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Ping(); err != nil {
				cmd.PrintErrf("database: %v\n", err)
				return errors.New("system check identified some issues")
			}
			cmd.Println("System check identified no issues.")
			return nil
		},
	}
}

func newMigrateCommand(migrate func(ctx context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println("Applying migrations...")
			if err := migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			cmd.Println("Migrations applied.")
			return nil
		},
	}
}
