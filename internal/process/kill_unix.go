//go:build !windows

package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; error ignored as exec.Cmd.Cancel provides fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// GroupAttr returns SysProcAttr settings that place a child process in
// its own process group, so KillProcessGroup can take down the whole
// tree spawned by soffice.
func GroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
