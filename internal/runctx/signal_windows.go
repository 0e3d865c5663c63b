//go:build windows

package runctx

// Windows has no zero-signal probe, so an existing lock is always treated
// as held; the owner must remove it or the user clears it manually.
func pidAlive(int) bool { return true }
