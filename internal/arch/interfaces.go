// Package arch defines the collaborator interfaces the manager and its
// neighbors depend on. Concrete implementations live in other packages;
// nothing in this package performs I/O.
package arch

import (
	"context"
	"time"

	"github.com/xfce-go/xsmd/internal/domain"
)

// Logger is the structured logging contract shared by every package.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
}

// TimeProvider abstracts wall-clock access so the manager's timeout logic
// can be driven deterministically in tests.
type TimeProvider interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable delayed callback, mirroring time.Timer's Stop
// semantics so fakes can substitute instantly-firing timers in tests.
type Timer interface {
	Stop() bool
}

// Notifier receives manager lifecycle events. Implementations must not
// block; the manager treats Notify as fire-and-forget.
type Notifier interface {
	Notify(event domain.Event)
}

// MultiNotifier fans a single event out to every subscribed Notifier, so
// the manager can be constructed with one Notify call site even when
// several independent observers (IPC event stream, history store) care
// about its events.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(event domain.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(event)
		}
	}
}

// LateBoundNotifier breaks the constructor cycle between a Manager (which
// needs its Notifier at construction) and collaborators that themselves
// need the constructed Manager (the IPC server). Construct one, pass it to
// manager.New, then Set the real target once it exists.
type LateBoundNotifier struct {
	target Notifier
}

// Set installs the real Notifier to forward to. Not safe to call
// concurrently with Notify; callers set it once during startup before the
// Manager's Loop begins running.
func (l *LateBoundNotifier) Set(n Notifier) {
	l.target = n
}

func (l *LateBoundNotifier) Notify(event domain.Event) {
	if l.target != nil {
		l.target.Notify(event)
	}
}

// StartupLauncher is the external Startup Orchestrator contract.
// It owns process spawning; the manager only tells it what to launch and
// listens for completion via SessionContinue.
type StartupLauncher interface {
	// Launch spawns props.RestartCommand with props.Environment and
	// props.CurrentDirectory, arming a per-entry startup timeout. On
	// timeout it must call onTimeout(props) exactly once.
	Launch(props *domain.Properties, onTimeout func(*domain.Properties))
	// Cancel stops a pending startup timeout for a client that registered
	// before its timeout fired.
	Cancel(clientID string)
}

// Chooser is the external session-chooser dialog: when more
// than one persisted session exists it lets the user pick one or log out
// outright.
type Chooser interface {
	// Choose returns the chosen session name, or ok=false if the user
	// picked "logout" (the caller must exit immediately).
	Choose(ctx context.Context, sessionNames []string) (name string, ok bool)
}

// LegacyTracker is the external legacy (non-XSMP) client tracker. Legacy
// clients are asked to save their state before XSMP clients are polled,
// and contribute their own records to the session file on write.
type LegacyTracker interface {
	SaveYourself(ctx context.Context) error
	Records(sessionName string) []domain.Properties
}

// ShutdownBackend executes a single resolved power action. Backends are
// tried in a fixed order by the Shutdown Driver; a backend that cannot
// handle the action returns a non-nil error so the next one is tried.
type ShutdownBackend interface {
	Name() string
	Execute(ctx context.Context, action domain.ShutdownType) error
}
