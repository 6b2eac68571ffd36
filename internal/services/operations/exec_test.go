//go:build unix

package operations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExecOperation_Run(t *testing.T) {
	tests := []struct {
		name       string
		op         *ExecOperation
		args       []string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{
			name:       "fixed and user args",
			op:         &ExecOperation{Path: "/bin/sh", Args: []string{"-c", `echo "$0 $1"`}},
			args:       []string{"deploy", "prod"},
			wantStdout: "deploy prod\n",
		},
		{
			name:       "controlled env",
			op:         &ExecOperation{Path: "/bin/sh", Args: []string{"-c", `echo "$TARGET"`}, Env: []string{"TARGET=eu-1"}},
			wantStdout: "eu-1\n",
		},
		{
			name:       "non-zero exit keeps partial output",
			op:         &ExecOperation{Path: "/bin/sh", Args: []string{"-c", "echo partial; echo boom >&2; exit 3"}},
			wantStdout: "partial\n",
			wantStderr: "boom\n",
			wantCode:   3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runOp(t, tt.op, tt.args...)
			if tt.wantCode == 0 && err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if tt.wantCode != 0 {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) || exitErr.Code != tt.wantCode {
					t.Fatalf("Run() error = %v, want exit code %d", err, tt.wantCode)
				}
				if exitErr.Error() != "exit status 3" {
					t.Errorf("Error() = %q", exitErr.Error())
				}
			}
			if stdout != tt.wantStdout || stderr != tt.wantStderr {
				t.Errorf("stdout = %q, stderr = %q; want %q, %q", stdout, stderr, tt.wantStdout, tt.wantStderr)
			}
		})
	}
}

func TestExecOperation_RelativePath(t *testing.T) {
	op := &ExecOperation{Path: "sh"}
	if _, _, err := runOp(t, op); err == nil || !strings.Contains(err.Error(), "must be absolute") {
		t.Errorf("Run() error = %v, want absolute path error", err)
	}
}

func TestExecOperation_Timeout(t *testing.T) {
	op := &ExecOperation{
		Path:             "/bin/sh",
		Args:             []string{"-c", "sleep 30"},
		Env:              []string{"PATH=/usr/bin:/bin"},
		Timeout:          50 * time.Millisecond,
		TerminationGrace: 100 * time.Millisecond,
	}

	start := time.Now()
	_, _, err := runOp(t, op)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("process group was not terminated, took %s", elapsed)
	}
}

func writeScript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "report.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho report\n"), 0o755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir)
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid",
			content: "commands:\n" +
				"  - name: report\n" +
				"    help: Print the daily report\n" +
				"    path: " + script + "\n" +
				"    env:\n" +
				"      REGION: eu-1\n" +
				"    timeout: 30s\n",
		},
		{name: "relative path", content: "commands:\n  - name: report\n    path: report.sh\n", wantErr: true},
		{name: "not executable", content: "commands:\n  - name: report\n    path: " + plain + "\n", wantErr: true},
		{name: "missing binary", content: "commands:\n  - name: report\n    path: /does/not/exist\n", wantErr: true},
		{name: "blank name", content: "commands:\n  - path: " + script + "\n", wantErr: true},
		{name: "bad yaml", content: "commands: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "commands.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			catalog, err := LoadCatalog(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCatalog) {
					t.Errorf("LoadCatalog() error = %v, want ErrInvalidCatalog", err)
				}
				return
			}
			entry := catalog.Commands[0]
			if entry.Timeout != 30*time.Second || entry.Env["REGION"] != "eu-1" {
				t.Errorf("entry = %+v", entry)
			}
		})
	}
}

func TestRegisterCatalog(t *testing.T) {
	script := writeScript(t, t.TempDir())
	catalog := &Catalog{Commands: []CatalogEntry{{Name: "report", Path: script}}}

	reg := NewRegistry(newTestLogger())
	if err := RegisterCatalog(reg, catalog, time.Second); err != nil {
		t.Fatalf("RegisterCatalog() error = %v", err)
	}
	def, ok := reg.Lookup("report")
	if !ok || def.Kind != KindExec || def.Help != script {
		t.Fatalf("Lookup() = %+v, %v", def, ok)
	}

	stdout, _, err := runOp(t, def.Operation)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stdout != "report\n" {
		t.Errorf("stdout = %q, want %q", stdout, "report\n")
	}

	if err := RegisterCatalog(reg, catalog, time.Second); err == nil {
		t.Error("registering the same catalog twice should fail")
	}
}
