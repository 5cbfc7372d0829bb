// Package manager implements the Manager State Machine: the
// central coordinator owning the global state, the five properties/client
// queues, and the XSMP save/interact/phase-2/die protocol.
package manager

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/client"
	"github.com/xfce-go/xsmd/internal/domain"
	"github.com/xfce-go/xsmd/internal/sessionfile"
)

// Config holds the manager's operational parameters.
type Config struct {
	SaveTimeout    time.Duration
	DieTimeout     time.Duration
	StartupTimeout time.Duration
	CheckpointDir  string
	ChooserEnabled bool
}

// Manager owns the session state machine. It is not safe for concurrent
// use directly: every exported method assumes it runs on the single
// goroutine described in the protocol. Use Loop (loop.go) to serialize calls
// from multiple producers (transport callbacks, timers, IPC requests)
// onto that one goroutine.
type Manager struct {
	cfg Config

	logger   arch.Logger
	time     arch.TimeProvider
	notifier arch.Notifier
	launcher arch.StartupLauncher
	chooser  arch.Chooser
	legacy   arch.LegacyTracker
	codec    *sessionfile.Codec
	shutdown ShutdownExecutor

	state           domain.ManagerState
	pendingShutdown domain.ShutdownType

	sessionName           string
	checkpointSessionName string

	// Queues: every Properties is owned by exactly one of these
	// four places at any moment.
	pending  []*domain.Properties
	starting map[domain.ClientId]*domain.Properties
	restart  []*domain.Properties
	running  map[domain.ClientId]*client.Client

	failsafe []domain.FailsafeClient

	interacting     *client.Client
	waitForInteract []*client.Client

	screenWorkspaces map[int]int

	dieTimer arch.Timer
	done     chan struct{}
}

// ShutdownExecutor is the narrow slice of the Shutdown Driver the manager
// needs: executing the Anyway shutdown_command argv list is a plain
// os/exec concern handled by internal/shutdown, not by this package.
type ShutdownExecutor interface {
	RunShutdownCommand(argv []string) error
}

// New constructs a Manager in the Startup state. Collaborators are
// constructor-injected so the Manager never reaches into a process-global.
func New(
	cfg Config,
	logger arch.Logger,
	tp arch.TimeProvider,
	notifier arch.Notifier,
	launcher arch.StartupLauncher,
	chooser arch.Chooser,
	legacy arch.LegacyTracker,
	codec *sessionfile.Codec,
	shutdown ShutdownExecutor,
) *Manager {
	return &Manager{
		cfg:              cfg,
		logger:           logger,
		time:             tp,
		notifier:         notifier,
		launcher:         launcher,
		chooser:          chooser,
		legacy:           legacy,
		codec:            codec,
		shutdown:         shutdown,
		state:            domain.Startup,
		starting:         make(map[domain.ClientId]*domain.Properties),
		running:          make(map[domain.ClientId]*client.Client),
		screenWorkspaces: make(map[int]int),
		done:             make(chan struct{}),
	}
}

// State returns the current global state.
func (m *Manager) State() domain.ManagerState {
	return m.state
}

// RunningClients returns a snapshot of currently registered clients, sorted
// by client id for deterministic IPC listing.
func (m *Manager) RunningClients() []*client.Client {
	out := make([]*client.Client, 0, len(m.running))
	for _, c := range m.running {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// setState is the single setter for the global state; every transition
// goes through here so a notification is always emitted.
func (m *Manager) setState(to domain.ManagerState) {
	if m.state == to {
		return
	}
	old := m.state
	m.state = to
	m.logger.Info("manager state changed", "old", old, "new", to)
	m.notify(domain.Event{Type: domain.EventStateChanged, Timestamp: m.time.Now(), OldState: old, NewState: to})
}

func (m *Manager) notify(e domain.Event) {
	if m.notifier != nil {
		m.notifier.Notify(e)
	}
}

// newClientID synthesizes a fresh ClientId for a peer that registered
// without a previous_id.
func newClientID() domain.ClientId {
	return domain.ClientId(uuid.New().String())
}

