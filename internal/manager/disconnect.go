package manager

import (
	"github.com/xfce-go/xsmd/internal/client"
	"github.com/xfce-go/xsmd/internal/domain"
)

// CloseClient handles a transport disconnection of a running client. It is
// also the path used to forcibly close a client on a protocol violation or
// a save-timeout expiry.
func (m *Manager) CloseClient(id domain.ClientId) {
	c, ok := m.running[id]
	if !ok {
		return
	}
	c.CancelSaveTimeout()
	_ = c.Transition(domain.ClientDisconnected)
	_ = c.Conn.Close()
	m.removeFromInteractQueues(c)

	if m.state == domain.ShutdownPhase2 {
		delete(m.running, id)
		m.notify(domain.Event{Type: domain.EventClientRemoved, Timestamp: m.time.Now(), ClientID: id})
		if len(m.running) == 0 {
			if m.dieTimer != nil {
				m.dieTimer.Stop()
				m.dieTimer = nil
			}
			m.quit()
		}
		return
	}

	if m.state == domain.Shutdown || m.state == domain.Checkpoint {
		delete(m.running, id)
		m.notify(domain.Event{Type: domain.EventClientRemoved, Timestamp: m.time.Now(), ClientID: id})
		m.completeSaveYourself()
		return
	}

	// Idle or Startup: disposition depends on restart_style_hint.
	m.handleExitDisposition(c)
	delete(m.running, id)
	m.notify(domain.Event{Type: domain.EventClientRemoved, Timestamp: m.time.Now(), ClientID: id})
}

// removeFromInteractQueues clears c from the single Interacting slot and
// from WaitForInteract, wherever it was.
func (m *Manager) removeFromInteractQueues(c *client.Client) {
	if m.interacting == c {
		m.interacting = nil
	}
	for i, waiting := range m.waitForInteract {
		if waiting == c {
			m.waitForInteract = append(m.waitForInteract[:i], m.waitForInteract[i+1:]...)
			break
		}
	}
}

func (m *Manager) handleExitDisposition(c *client.Client) {
	props := c.Props

	switch props.RestartStyleHint {
	case domain.RestartAnyway:
		m.restart = append(m.restart, props)
	case domain.RestartImmediately:
		// Exceeding the ceiling demotes to restart; otherwise the design
		// permits a re-launch, but current behavior intentionally does
		// not relaunch in-session.
		if props.IncrementRestartAttempts() {
			m.restart = append(m.restart, props)
		}
	case domain.RestartNever, domain.RestartIfRunning:
		// no persistence
	}

	if m.state == domain.Idle && len(props.DiscardCommand) > 0 {
		if err := m.shutdown.RunShutdownCommand(props.DiscardCommand); err != nil {
			m.logger.Error("discard command failed", "client_id", props.ClientID, "error", err)
		}
	}
}

// quit signals that the main loop should exit: either every client
// disconnected in ShutdownPhase2, or the die-timeout fired.
func (m *Manager) quit() {
	select {
	case <-m.done:
		// already closed
	default:
		close(m.done)
	}
}

// Done returns a channel closed once the manager has finished its
// shutdown sequence; cmd/xsmd waits on it before calling the Shutdown
// Driver's execute step and exiting the process.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
