package manager

import (
	"context"

	"github.com/xfce-go/xsmd/internal/client"
	"github.com/xfce-go/xsmd/internal/domain"
)

// armSaveTimeout starts the per-client save-timeout. On expiry
// the client is forcibly closed as a protocol violation.
func (m *Manager) armSaveTimeout(c *client.Client) {
	c.CancelSaveTimeout()
	id := c.ID()
	c.SetSaveTimeout(m.time.AfterFunc(m.cfg.SaveTimeout, func() {
		m.logger.Warn("client save-timeout expired", "client_id", id)
		m.CloseClient(id)
	}))
}

// Checkpoint starts a global checkpoint: legal only from Idle.
func (m *Manager) Checkpoint(sessionName string) error {
	if m.state != domain.Idle {
		return ErrBadState
	}
	if sessionName != "" {
		m.checkpointSessionName = sessionName
	}
	m.setState(domain.Checkpoint)
	m.globalSaveYourself(false)
	return nil
}

// RequestShutdown starts a global shutdown for the given action: legal
// only from Idle. The action is recorded and later read back via
// PendingShutdownType once Done() fires, so the caller can invoke the
// Shutdown Driver with the right ShutdownType after the protocol sequence
// completes.
func (m *Manager) RequestShutdown(action domain.ShutdownType) error {
	if m.state != domain.Idle {
		return ErrBadState
	}
	m.pendingShutdown = action
	m.setState(domain.Shutdown)
	m.globalSaveYourself(true)
	return nil
}

// PendingShutdownType returns the action passed to RequestShutdown, valid
// once Done() has fired.
func (m *Manager) PendingShutdownType() domain.ShutdownType {
	return m.pendingShutdown
}

// globalSaveYourself drives the save-yourself pass across every running
// client. Legacy clients are asked first.
func (m *Manager) globalSaveYourself(shutdown bool) {
	if m.legacy != nil {
		_ = m.legacy.SaveYourself(context.Background())
	}

	for _, c := range m.RunningClients() {
		if c.Props.IsXterm() {
			continue // xterm is a legacy placeholder, never sent SaveYourself
		}
		if c.State == domain.ClientSavingLocal {
			continue // already saving; do not re-issue
		}
		_ = c.Conn.SendSaveYourself(domain.SaveGlobal, shutdown, domain.InteractAny, false)
		_ = c.Transition(domain.ClientSaving)
		m.armSaveTimeout(c)
	}
}

// InteractRequest implements the InteractRequest XSMP message.
func (m *Manager) InteractRequest(id domain.ClientId) error {
	c, ok := m.running[id]
	if !ok {
		return ErrProtocolViolation
	}
	if c.State != domain.ClientSaving || (m.state != domain.Checkpoint && m.state != domain.Shutdown) {
		m.CloseClient(id)
		return ErrProtocolViolation
	}

	if m.interacting != nil {
		_ = c.Transition(domain.ClientWaitForInteract)
		m.waitForInteract = append(m.waitForInteract, c)
		return nil
	}

	c.CancelSaveTimeout()
	_ = c.Transition(domain.ClientInteracting)
	m.interacting = c
	_ = c.Conn.SendInteract()
	return nil
}

// InteractDone implements the InteractDone XSMP message.
func (m *Manager) InteractDone(id domain.ClientId, cancel bool) error {
	c, ok := m.running[id]
	if !ok {
		return ErrProtocolViolation
	}
	if c.State != domain.ClientInteracting || (m.state != domain.Checkpoint && m.state != domain.Shutdown) {
		m.CloseClient(id)
		return ErrProtocolViolation
	}

	_ = c.Transition(domain.ClientSaving)
	m.armSaveTimeout(c)
	m.interacting = nil

	if cancel && m.state == domain.Shutdown {
		m.setState(domain.Checkpoint)
		for _, waiting := range m.waitForInteract {
			_ = waiting.Conn.SendShutdownCancelled()
			_ = waiting.Transition(domain.ClientSaving)
			m.armSaveTimeout(waiting)
		}
		m.waitForInteract = nil
		m.notify(domain.Event{Type: domain.EventShutdownCancelled, Timestamp: m.time.Now()})
		return nil
	}

	if len(m.waitForInteract) > 0 {
		next := m.waitForInteract[0]
		m.waitForInteract = m.waitForInteract[1:]
		next.CancelSaveTimeout()
		_ = next.Transition(domain.ClientInteracting)
		m.interacting = next
		_ = next.Conn.SendInteract()
	}
	return nil
}

// SaveYourselfPhase2Request implements that XSMP message.
func (m *Manager) SaveYourselfPhase2Request(id domain.ClientId) error {
	c, ok := m.running[id]
	if !ok {
		return ErrProtocolViolation
	}

	if m.state != domain.Checkpoint && m.state != domain.Shutdown {
		_ = c.Conn.SendSaveYourselfPhase2()
		_ = c.Transition(domain.ClientSavingLocal)
		m.armSaveTimeout(c)
		return nil
	}

	_ = c.Transition(domain.ClientWaitForPhase2)
	c.CancelSaveTimeout()

	if !m.anyoneSaving() {
		m.maybeEnterPhase2()
	}
	return nil
}

// anyoneSaving reports whether any running client is still in Saving.
func (m *Manager) anyoneSaving() bool {
	for _, c := range m.running {
		if c.State == domain.ClientSaving {
			return true
		}
	}
	return false
}

// maybeEnterPhase2 promotes every WaitForPhase2 client to Saving and sends
// SaveYourselfPhase2. Returns whether anyone was promoted.
func (m *Manager) maybeEnterPhase2() bool {
	promoted := false
	for _, c := range m.running {
		if c.State != domain.ClientWaitForPhase2 {
			continue
		}
		_ = c.Conn.SendSaveYourselfPhase2()
		_ = c.Transition(domain.ClientSaving)
		m.armSaveTimeout(c)
		promoted = true
	}
	return promoted
}

// SaveYourselfDone implements that XSMP message.
func (m *Manager) SaveYourselfDone(id domain.ClientId, success bool) error {
	c, ok := m.running[id]
	if !ok {
		return ErrProtocolViolation
	}
	if c.State != domain.ClientSaving && c.State != domain.ClientSavingLocal {
		m.CloseClient(id)
		return ErrProtocolViolation
	}
	c.CancelSaveTimeout()

	if c.State == domain.ClientSavingLocal {
		_ = c.Transition(domain.ClientIdle)
		_ = c.Conn.SendSaveComplete()
		return nil
	}

	if m.state != domain.Checkpoint && m.state != domain.Shutdown {
		m.CloseClient(id)
		return ErrProtocolViolation
	}

	_ = c.Transition(domain.ClientSaveDone)
	m.completeSaveYourself()
	return nil
}

// completeSaveYourself finishes a global save pass once every client has
// reported SaveDone and no Phase-2 promotion is outstanding.
func (m *Manager) completeSaveYourself() {
	if m.anyoneSaving() {
		return
	}
	if m.maybeEnterPhase2() {
		return
	}

	m.persistSession()

	switch m.state {
	case domain.Checkpoint:
		for _, c := range m.running {
			_ = c.Transition(domain.ClientIdle)
			_ = c.Conn.SendSaveComplete()
		}
		m.setState(domain.Idle)
	case domain.Shutdown:
		m.performShutdown()
	}
}

// performShutdown implements perform_shutdown: Die to every
// client, execute Anyway shutdown_commands, arm the die-timeout.
func (m *Manager) performShutdown() {
	m.setState(domain.ShutdownPhase2)

	for _, c := range m.running {
		_ = c.Conn.SendDie()
	}

	for _, props := range m.restart {
		if props.RestartStyleHint == domain.RestartAnyway && len(props.ShutdownCommand) > 0 {
			if err := m.shutdown.RunShutdownCommand(props.ShutdownCommand); err != nil {
				m.logger.Error("shutdown command failed", "client_id", props.ClientID, "error", err)
			}
		}
	}

	if len(m.running) == 0 {
		m.quit()
		return
	}

	m.dieTimer = m.time.AfterFunc(m.cfg.DieTimeout, func() {
		m.logger.Warn("die-timeout expired, forcing exit")
		m.dieTimer = nil
		m.quit()
	})
}
