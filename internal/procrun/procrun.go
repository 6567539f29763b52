// Package procrun executes a shell command under a bounded runtime budget
// The child runs in its own process group so that the whole tree it
// spawns can be signaled together; a 100ms poll loop watches for exit and
// escalates SIGTERM to SIGKILL if the deadline passes before the group
// reaps.
package procrun

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval is how often Run checks whether the child has exited.
const pollInterval = 100 * time.Millisecond

// Result describes the outcome of one bounded command execution.
type Result struct {
	// Output is the combined stdout+stderr captured from the child, capped
	// at no particular size: callers tokenize it downstream.
	Output string

	// TimedOut is true if the runtime budget elapsed before the child
	// exited on its own.
	TimedOut bool

	// ExitCode is the child's exit status, or -1 if it never produced one
	// (killed, or failed to start).
	ExitCode int
}

// Run executes command via /bin/sh -c under a new process group, allowing it
// (and any descendants it forked) up to runtime to finish. If the deadline
// passes first, the whole group is sent SIGTERM, then SIGKILL after one more
// poll tick if it is still alive.
func Run(ctx context.Context, command string, runtime time.Duration) (Result, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, err
	}

	pgid := cmd.Process.Pid

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	deadline := time.Now().Add(runtime)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	timedOut := false

	for {
		select {
		case err := <-done:
			return resultFrom(buf.String(), timedOut, err), nil
		case <-ticker.C:
			if time.Now().Before(deadline) {
				continue
			}

			if !timedOut {
				timedOut = true
				_ = signalGroup(pgid, unix.SIGTERM)

				continue
			}

			// One tick of grace after SIGTERM; still alive, so escalate.
			_ = signalGroup(pgid, unix.SIGKILL)
		}
	}
}

// signalGroup delivers sig to the process group led by pgid. A negative pid
// targets the group rather than the single process.
func signalGroup(pgid int, sig unix.Signal) error {
	return unix.Kill(-pgid, sig)
}

func resultFrom(output string, timedOut bool, waitErr error) Result {
	exitCode := -1

	if waitErr == nil {
		exitCode = 0
	} else if exitErr, ok := waitErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	return Result{
		Output:   output,
		TimedOut: timedOut,
		ExitCode: exitCode,
	}
}
