package refresh

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ChildArgs are the arguments the current executable is re-run with to
// perform a detached refresh.
var ChildArgs = []string{"refresh", "--detached-child"}

// Spawn starts exe with args as a background process in its own session,
// with output appended to logFile, and returns its PID without waiting for
// it. The child outlives the caller.
func Spawn(exe string, args []string, logFile string) (int, error) {
	// Open log file for output
	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	cmd := exec.Command(exe, args...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start refresh process: %w", err)
	}

	pid := cmd.Process.Pid

	// Detach from parent
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release process: %w", err)
	}

	return pid, nil
}

// SpawnSelf re-runs the current executable as a detached refresh child.
func SpawnSelf(logFile string) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}
	return Spawn(executable, ChildArgs, logFile)
}
