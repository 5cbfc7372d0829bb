package shutdown

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// NoOp reports every action except Logout as unsupported. It is the last
// link in the backend chain, used when neither logind nor a sudo helper
// is available; Logout never needs a privileged backend since it only
// means "let the X server disconnect."
type NoOp struct{}

func (NoOp) Name() string { return "noop" }

func (NoOp) Execute(ctx context.Context, action domain.ShutdownType) error {
	if action == domain.ShutdownLogout {
		return nil
	}
	return fmt.Errorf("shutdown: no backend available to service %v", action)
}

var _ arch.ShutdownBackend = NoOp{}

// Chain tries each backend in order, returning the first success. It
// implements arch.ShutdownBackend itself so the manager can be handed one
// Execute call regardless of how many real backends were discovered.
type Chain struct {
	Backends []arch.ShutdownBackend
}

func NewChain(backends ...arch.ShutdownBackend) *Chain {
	return &Chain{Backends: backends}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Execute(ctx context.Context, action domain.ShutdownType) error {
	var lastErr error
	for _, b := range c.Backends {
		if err := b.Execute(ctx, action); err != nil {
			lastErr = fmt.Errorf("%s: %w", b.Name(), err)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("shutdown: no backend configured")
	}
	return lastErr
}

var _ arch.ShutdownBackend = (*Chain)(nil)

// CommandRunner executes the plain argv-list commands attached to
// Properties records (Anyway shutdown_command, discard_command) via
// os/exec, satisfying manager.ShutdownExecutor.
type CommandRunner struct{}

func (CommandRunner) RunShutdownCommand(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	return cmd.Start()
}
