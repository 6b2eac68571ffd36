package operations

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newDeployCommand() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("deploying to %s\n", env)
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "staging", "target environment")
	return cmd
}

func runOp(t *testing.T, op Operation, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := op.Run(context.Background(), Streams{Stdout: &stdout, Stderr: &stderr}, args)
	return stdout.String(), stderr.String(), err
}

func TestCobraDefinition(t *testing.T) {
	def := CobraDefinition(KindCobra, newDeployCommand)
	if def.Name != "deploy" || def.Help != "Deploy the application" || def.Kind != KindCobra {
		t.Errorf("CobraDefinition() = %+v", def)
	}
}

func TestCobraOperation_Run(t *testing.T) {
	op := NewCobraOperation(newDeployCommand)

	tests := []struct {
		name       string
		args       []string
		wantStdout string
	}{
		{name: "flag", args: []string{"--env", "prod"}, wantStdout: "deploying to prod\n"},
		{name: "default", args: nil, wantStdout: "deploying to staging\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runOp(t, op, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
		})
	}
}

func TestCobraOperation_FlagError(t *testing.T) {
	op := NewCobraOperation(newDeployCommand)
	stdout, stderr, err := runOp(t, op, "--bogus")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("Run() error = %v, want *ExitError with code 2", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "Usage:") || !strings.Contains(stderr, "deploy: error: unknown flag: --bogus") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuiltins(t *testing.T) {
	reg := NewRegistry(newTestLogger())
	err := RegisterBuiltins(reg, BuiltinDeps{
		Version: "1.2.3",
		DB:      pingerFunc(func() error { return nil }),
		Migrate: func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}

	tests := []struct {
		name       string
		command    string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{name: "echo", command: "echo", args: []string{"hello", "world"}, wantStdout: "hello world\n"},
		{name: "echo no newline", command: "echo", args: []string{"-n", "ok"}, wantStdout: "ok"},
		{name: "echo stderr", command: "echo", args: []string{"--stderr", "warn"}, wantStderr: "warn\n"},
		{name: "version", command: "version", wantStdout: "1.2.3\n"},
		{name: "check", command: "check", wantStdout: "System check identified no issues.\n"},
		{name: "migrate", command: "migrate", wantStdout: "Applying migrations...\nMigrations applied.\n"},
		{name: "sleep", command: "sleep", args: []string{"1ms"}, wantStdout: "slept 1ms\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := reg.Resolve(tt.command)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			stdout, stderr, err := runOp(t, op, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stdout != tt.wantStdout || stderr != tt.wantStderr {
				t.Errorf("stdout = %q, stderr = %q; want %q, %q", stdout, stderr, tt.wantStdout, tt.wantStderr)
			}
		})
	}
}

func TestBuiltins_Help(t *testing.T) {
	reg := NewRegistry(newTestLogger())
	if err := RegisterBuiltins(reg, BuiltinDeps{Version: "dev"}); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	if _, ok := reg.Lookup("check"); ok {
		t.Error("check must not be registered without a database")
	}

	op, _ := reg.Resolve("help")
	stdout, _, err := runOp(t, op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, name := range []string{"echo", "help", "sleep", "version"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("help output %q does not list %s", stdout, name)
		}
	}

	_, _, err = runOp(t, op, "missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("help missing error = %v, want *NotFoundError", err)
	}
}

func TestBuiltins_CheckFails(t *testing.T) {
	reg := NewRegistry(newTestLogger())
	err := RegisterBuiltins(reg, BuiltinDeps{DB: pingerFunc(func() error { return errors.New("connection refused") })})
	if err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	op, _ := reg.Resolve("check")
	_, stderr, err := runOp(t, op)
	if err == nil {
		t.Fatal("check should fail when the database is down")
	}
	if stderr != "database: connection refused\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuiltins_SleepCancelled(t *testing.T) {
	reg := NewRegistry(newTestLogger())
	if err := RegisterBuiltins(reg, BuiltinDeps{}); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	op, _ := reg.Resolve("sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	var out bytes.Buffer
	err := op.Run(ctx, Streams{Stdout: &out, Stderr: &out}, []string{"1m"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
}

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }
