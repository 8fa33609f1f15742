// Package app controls the Stickies.app process.
//
// Stickies.app reads its bundles and state file only at launch and writes
// them back on quit, so after sticky changes the filesystem the app has to
// be restarted to show the new notes (and to avoid overwriting them).
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sticky-situation/sticky/internal/sticky"
)

// DefaultName is the process and application name of Stickies.
const DefaultName = "Stickies"

// Controller is the narrow interface sync and the CLI use to manage the
// companion application.
type Controller interface {
	// IsRunning reports whether the application has a live process.
	IsRunning(ctx context.Context) (bool, error)

	// Restart terminates the running application, waits for it to exit and
	// launches it again. Returns sticky.ErrNotRunning if it is not running.
	Restart(ctx context.Context) error

	// Launch starts the application. Launching a running app is a no-op.
	Launch(ctx context.Context) error
}

// Process controls an application by name with pgrep, SIGTERM and open(1).
type Process struct {
	// Name is matched exactly against process names and passed to open -a.
	Name string
	// Run executes commands. Defaults to ExecContext with Timeout.
	Run Runner
	// Terminate signals a process to quit. Defaults to SIGTERM.
	Terminate func(pid int) error
	// Timeout bounds each command and the wait for the process to exit.
	Timeout time.Duration
	// Poll is the interval between exit checks.
	Poll time.Duration
}

// New returns a Process controller for the named application.
func New(name string) *Process {
	if name == "" {
		name = DefaultName
	}
	p := &Process{
		Name:      name,
		Terminate: terminate,
		Timeout:   10 * time.Second,
		Poll:      100 * time.Millisecond,
	}
	p.Run = func(ctx context.Context, cmd string, args ...string) ([]byte, error) {
		return ExecContext(ctx, p.Timeout, cmd, args...)
	}
	return p
}

// pids lists the process IDs of the application.
func (p *Process) pids(ctx context.Context) ([]int, error) {
	if !supported {
		return nil, sticky.ErrUnsupported
	}

	out, err := p.Run(ctx, "pgrep", "-x", p.Name)
	if err != nil {
		// pgrep exits 1 when nothing matched
		if exitCode(err) == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up %s process: %w", p.Name, err)
	}

	var pids []int
	for _, line := range ParseLines(out) {
		pid, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// IsRunning implements Controller.IsRunning.
func (p *Process) IsRunning(ctx context.Context) (bool, error) {
	pids, err := p.pids(ctx)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// Restart implements Controller.Restart.
func (p *Process) Restart(ctx context.Context) error {
	pids, err := p.pids(ctx)
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		return fmt.Errorf("%w: %s", sticky.ErrNotRunning, p.Name)
	}

	for _, pid := range pids {
		if err := p.Terminate(pid); err != nil {
			return fmt.Errorf("failed to stop %s (pid %d): %w", p.Name, pid, err)
		}
	}

	if err := p.waitForExit(ctx); err != nil {
		return err
	}

	return p.Launch(ctx)
}

// Launch implements Controller.Launch.
func (p *Process) Launch(ctx context.Context) error {
	running, err := p.IsRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		return nil
	}

	if _, err := p.Run(ctx, "open", "-a", p.Name); err != nil {
		return fmt.Errorf("failed to launch %s: %w", p.Name, err)
	}
	return nil
}

func (p *Process) waitForExit(ctx context.Context) error {
	deadline := time.Now().Add(p.Timeout)
	for {
		running, err := p.IsRunning(ctx)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %s to exit", p.Name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Poll):
		}
	}
}
