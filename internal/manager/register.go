package manager

import (
	"github.com/xfce-go/xsmd/internal/client"
	"github.com/xfce-go/xsmd/internal/domain"
)

// RegisterClient implements the RegisterClient XSMP request.
// conn is the transport handle the manager will use to send subsequent
// protocol messages to this peer.
func (m *Manager) RegisterClient(conn client.Conn, previousID domain.ClientId) (domain.ClientId, error) {
	if previousID != "" {
		return m.registerWithPreviousID(conn, previousID)
	}
	return m.registerNew(conn)
}

func (m *Manager) registerWithPreviousID(conn client.Conn, previousID domain.ClientId) (domain.ClientId, error) {
	if props, ok := m.starting[previousID]; ok {
		m.launcher.Cancel(string(previousID))
		delete(m.starting, previousID)
		return m.bindAndRun(conn, props, previousID), nil
	}
	for i, props := range m.pending {
		if props.ClientID == previousID {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return m.bindAndRun(conn, props, previousID), nil
		}
	}
	return "", ErrUnknownPreviousID
}

func (m *Manager) registerNew(conn client.Conn) (domain.ClientId, error) {
	id := newClientID()
	props := domain.NewProperties(id, "", "")
	m.bindAndRun(conn, props, "")

	// A brand-new client is immediately asked to save locally so its
	// initial properties reach disk without waiting for the next
	// checkpoint.
	c := m.running[id]
	_ = c.Conn.SendSaveYourself(domain.SaveLocal, false, domain.InteractNone, false)
	_ = c.Transition(domain.ClientSavingLocal) // Idle -> SavingLocal is always legal
	m.armSaveTimeout(c)

	return id, nil
}

// bindAndRun binds props to a new Client handle, adds it to running, emits
// client-registered, resets its restart-attempt counter, and — during
// Startup — advances the startup orchestration once the starting queue
// drains ("After any successful registration during Startup, if
// starting is empty, advance the Startup Orchestrator to continue"). If
// previousID is non-empty the registration replaces an earlier one under
// the same id (props.ClientID == previousID); the event carries it as
// PreviousID.
func (m *Manager) bindAndRun(conn client.Conn, props *domain.Properties, previousID domain.ClientId) domain.ClientId {
	props.ResetRestartAttempts()
	props.DisarmStartupTimeout()

	c := client.New(conn, props)
	m.running[props.ClientID] = c
	m.notify(domain.Event{
		Type:        domain.EventClientRegistered,
		Timestamp:   m.time.Now(),
		ClientID:    props.ClientID,
		Program:     props.Program,
		Hostname:    props.Hostname,
		PreviousID:  previousID,
		SessionName: m.sessionName,
	})

	if m.state == domain.Startup && len(m.starting) == 0 {
		m.sessionContinue()
	}
	return props.ClientID
}
