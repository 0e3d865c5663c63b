//go:build !windows

package provider

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup runs the backend in its own process group and replaces
// the default cancel with a group-wide kill, so children forked by the
// CLI die with it at the deadline.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
}
