//go:build unix

package runctx

import (
	"os"
	"syscall"
)

// pidAlive probes process existence with signal 0.
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
