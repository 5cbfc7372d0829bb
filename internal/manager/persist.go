package manager

import (
	"github.com/xfce-go/xsmd/internal/domain"
	"github.com/xfce-go/xsmd/internal/sessionfile"
)

// persistSession writes the current session to disk. It is
// called once per completed save-yourself pass, whether the pass was a
// checkpoint or the save-before-die step of a shutdown.
func (m *Manager) persistSession() {
	name := m.sessionName
	if m.checkpointSessionName != "" {
		name = m.checkpointSessionName
	}

	running := make([]domain.Properties, 0, len(m.running))
	for _, c := range m.running {
		running = append(running, *c.Props)
	}

	restart := make([]domain.Properties, len(m.restart))
	for i, p := range m.restart {
		restart[i] = *p
	}

	var legacy []domain.Properties
	if m.legacy != nil {
		legacy = m.legacy.Records(name)
	}

	err := m.codec.Write(sessionfile.WriteRequest{
		SessionName:      name,
		Restart:          restart,
		Running:          running,
		Legacy:           legacy,
		ScreenWorkspaces: m.screenWorkspaces,
		Now:              m.time,
	})
	if err != nil {
		// Session-file I/O error on write: log and skip; the prior .bak
		// (if any) remains.
		m.logger.Error("failed to persist session file", "session", name, "error", err)
	}

	if m.checkpointSessionName != "" {
		m.sessionName = m.checkpointSessionName
		m.checkpointSessionName = ""
	}
}

// SetCheckpointSessionName sets the alias under which the next persisted
// session is written (checkpoint-only alias).
func (m *Manager) SetCheckpointSessionName(name string) {
	m.checkpointSessionName = name
}
