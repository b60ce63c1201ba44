//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the whole process group of pid so
// Chrome's renderer and GPU helpers do not outlive the browser.
func KillProcessGroup(pid int) {
	// Best effort; launcher.Kill() runs afterwards as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
