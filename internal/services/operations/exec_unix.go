//go:build unix

package operations

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcessGroup puts the child in its own process group so cancellation
// reaches every process it spawned: SIGTERM first, SIGKILL after grace.
func setProcessGroup(cmd *exec.Cmd, grace time.Duration) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = grace
}
