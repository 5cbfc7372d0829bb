// Package startup provides a concrete arch.StartupLauncher that spawns
// client processes with os/exec.
package startup

import (
	"os/exec"
	"sync"
	"time"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// Launcher spawns restart commands and arms a per-entry startup timeout.
// It is the manager's only route to process creation; the manager itself
// never calls os/exec directly.
type Launcher struct {
	Logger  arch.Logger
	Time    arch.TimeProvider
	Timeout time.Duration

	mu      sync.Mutex
	pending map[string]arch.Timer
}

// New returns a Launcher with the given per-entry startup timeout.
func New(logger arch.Logger, tp arch.TimeProvider, timeout time.Duration) *Launcher {
	return &Launcher{
		Logger:  logger,
		Time:    tp,
		Timeout: timeout,
		pending: make(map[string]arch.Timer),
	}
}

// Launch spawns props.RestartCommand with props.Environment and
// props.CurrentDirectory and arms a startup timeout that calls onTimeout
// exactly once if the client never registers in time.
func (l *Launcher) Launch(props *domain.Properties, onTimeout func(*domain.Properties)) {
	if len(props.RestartCommand) == 0 {
		l.Logger.Warn("cannot launch client with empty restart command", "client_id", props.ClientID)
		if onTimeout != nil {
			onTimeout(props)
		}
		return
	}

	cmd := exec.Command(props.RestartCommand[0], props.RestartCommand[1:]...)
	if props.CurrentDirectory != "" {
		cmd.Dir = props.CurrentDirectory
	}
	if len(props.Environment) > 0 {
		cmd.Env = props.Environment
	}

	if err := cmd.Start(); err != nil {
		l.Logger.Error("failed to launch client", "client_id", props.ClientID, "program", props.Program, "error", err)
		if onTimeout != nil {
			onTimeout(props)
		}
		return
	}
	l.Logger.Info("launched client", "client_id", props.ClientID, "program", props.Program, "pid", cmd.Process.Pid)

	// The spawned process is intentionally not waited on here: once it
	// forks into the session it is tracked by its own XSMP registration,
	// not by this process handle (the protocol treats launch and
	// registration as decoupled events).
	go func() { _ = cmd.Wait() }()

	id := string(props.ClientID)
	timer := l.Time.AfterFunc(l.Timeout, func() {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
		if onTimeout != nil {
			onTimeout(props)
		}
	})

	l.mu.Lock()
	l.pending[id] = timer
	l.mu.Unlock()
}

// Cancel stops a pending startup timeout, e.g. because the client
// registered before the timer fired.
func (l *Launcher) Cancel(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.pending[clientID]; ok {
		t.Stop()
		delete(l.pending, clientID)
	}
}
