//go:build windows

package provider

import "os/exec"

// setProcessGroup is a no-op on Windows; WaitDelay still bounds the wait
// after the direct child is killed.
func setProcessGroup(cmd *exec.Cmd) {}
