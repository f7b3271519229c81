// Package hook runs the optional post-add command: a detached external
// process notified about each finalized component, for CI-style side
// effects. Hook failures never affect the add result.
package hook

import (
	"os/exec"

	"trackd/internal/config"
	"trackd/internal/log"
)

// Runner spawns the configured post-add command.
type Runner struct {
	command string
	args    []string
}

// New creates a runner from the configuration. A nil runner is returned
// when no hook is configured.
func New(cfg *config.Config) *Runner {
	if cfg.Hook.Command == "" {
		return nil
	}
	return &Runner{
		command: cfg.Hook.Command,
		args:    append([]string(nil), cfg.Hook.Args...),
	}
}

// Fire spawns the hook for one added component, passing the component id
// and its storage root as trailing arguments. The process is started
// detached and never waited on; any spawn failure is logged and swallowed.
func (r *Runner) Fire(componentID, root string) {
	if r == nil {
		return
	}
	args := append(append([]string(nil), r.args...), componentID, root)
	cmd := exec.Command(r.command, args...)
	if err := cmd.Start(); err != nil {
		log.Warn("post-add hook failed to start: %v", err)
		return
	}
	log.Debug("post-add hook started for %s (pid %d)", componentID, cmd.Process.Pid)
	// Reap the child in the background so it doesn't linger as a zombie.
	go func() {
		_ = cmd.Wait()
	}()
}
