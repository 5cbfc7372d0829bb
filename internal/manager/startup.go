package manager

import (
	"context"
	"sort"

	"github.com/xfce-go/xsmd/internal/domain"
)

// ErrChooserLogout is returned by LoadSession when the Chooser collaborator
// reports the user picked "logout" rather than a session to load; the
// caller must exit immediately.
var ErrChooserLogout = errString("user chose logout at the session chooser")

// ErrNoFailsafeSession is returned by LoadSession when no session could be
// loaded and no failsafe session definition could be found either, neither
// in the session file's own Failsafe Session group nor anywhere on the
// Session File Codec's failsafe search path. This is fatal: the caller
// must print the diagnostic and exit with a non-zero status rather than
// start a manager with nothing to run.
var ErrNoFailsafeSession = errString(
	"xsmd: unable to load a session or a failsafe session, exiting. Please check\n" +
		"      the value of the environment variable XDG_CONFIG_DIRS and make sure\n" +
		"      it includes a directory providing xfce4/xfce4-session/failsafe.session")

type errString string

func (e errString) Error() string { return string(e) }

// LoadSession reads the named session file group (or lets the Chooser
// collaborator pick one, if enabled and more than one exists) into the
// pending queue, and loads the Failsafe Session group. Returns
// ErrNoFailsafeSession if no session clients and no failsafe clients could
// be found at all; the caller must treat that as fatal. It must be called
// once, before LaunchPending.
func (m *Manager) LoadSession(ctx context.Context, requestedName string) error {
	names, err := m.codec.ListSessionNames()
	if err != nil {
		return err
	}

	sessionName := requestedName
	if sessionName == "" && len(names) == 1 {
		sessionName = names[0]
	}
	if sessionName == "" && len(names) > 1 && m.cfg.ChooserEnabled && m.chooser != nil {
		chosen, ok := m.chooser.Choose(ctx, names)
		if !ok {
			return ErrChooserLogout
		}
		sessionName = chosen
	}
	if sessionName == "" && len(names) > 0 {
		sessionName = names[0]
	}

	sf, err := m.codec.Load(sessionName)
	if err != nil {
		return err
	}

	m.sessionName = sessionName
	m.failsafe = sf.Failsafe
	m.screenWorkspaces = sf.ScreenWorkspaces
	if m.screenWorkspaces == nil {
		m.screenWorkspaces = make(map[int]int)
	}

	m.pending = make([]*domain.Properties, 0, len(sf.Clients))
	for i := range sf.Clients {
		p := sf.Clients[i]
		m.pending = append(m.pending, &p)
	}
	sort.SliceStable(m.pending, func(i, j int) bool { return m.pending[i].Priority < m.pending[j].Priority })

	if len(m.pending) == 0 && len(m.failsafe) == 0 {
		return ErrNoFailsafeSession
	}

	return nil
}

// LaunchPending begins the Startup Orchestrator pass over the pending
// queue: every entry in priority order is launched and moved to starting.
// If pending is empty, falls through to the failsafe session. LoadSession
// guarantees at least one of the two is non-empty by the time this runs in
// production; sessionContinue still settles the manager into Idle if
// nothing ends up launched at all.
func (m *Manager) LaunchPending() {
	if len(m.pending) == 0 {
		m.launchFailsafe()
	} else {
		for _, props := range m.pending {
			m.launchOne(props)
		}
		m.pending = nil
	}
	m.sessionContinue()
}

func (m *Manager) launchFailsafe() {
	for _, fc := range m.failsafe {
		props := domain.NewProperties(newClientID(), "", "")
		props.RestartCommand = fc.Command
		m.launchOne(props)
	}
}

func (m *Manager) launchOne(props *domain.Properties) {
	m.starting[props.ClientID] = props
	m.launcher.Launch(props, m.handleFailedClient)
}

// sessionContinue advances the Startup Orchestrator once the starting
// queue has drained.
func (m *Manager) sessionContinue() {
	if m.state != domain.Startup {
		return
	}
	if len(m.starting) == 0 && len(m.pending) == 0 {
		m.setState(domain.Idle)
	}
}

// handleFailedClient is invoked by the Startup Orchestrator when a launched
// entry's startup timeout expires without registration: its
// discard_command runs, the entry is dropped, and if the starting queue is
// now empty startup advances.
func (m *Manager) handleFailedClient(props *domain.Properties) {
	delete(m.starting, props.ClientID)

	if len(props.DiscardCommand) > 0 {
		if err := m.shutdown.RunShutdownCommand(props.DiscardCommand); err != nil {
			m.logger.Error("discard command failed", "client_id", props.ClientID, "error", err)
		}
	}

	m.sessionContinue()
}
