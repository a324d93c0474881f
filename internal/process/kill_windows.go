//go:build windows

package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; error ignored as exec.Cmd.Cancel provides fallback
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}

// GroupAttr returns SysProcAttr settings for spawning soffice. On
// Windows the tree kill above does not need a process group, so no
// special attributes are set.
func GroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}
