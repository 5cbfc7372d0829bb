package sessionfile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/ini.v1"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// WriteRequest bundles everything the manager has gathered for one
// checkpoint write.
type WriteRequest struct {
	SessionName      string // the group to write; may be the checkpoint alias
	Restart          []domain.Properties
	Running          []domain.Properties
	Legacy           []domain.Properties
	ScreenWorkspaces map[int]int
	Now              arch.TimeProvider
}

// Write rewrites the named session group: restart-queue entries first,
// then every valid running client whose hint is not Never, then legacy
// records, numbered contiguously Client0_ .. ClientK-1_. It backs up any
// prior file via hard-link before writing (unlink+link is acceptable,
// not required to be atomic).
func (c *Codec) Write(req WriteRequest) error {
	if err := c.backup(); err != nil {
		if c.Logger != nil {
			c.Logger.Error("session file backup failed, writing anyway", "error", err)
		}
	}

	cfg, err := loadOrNew(c.Path)
	if err != nil {
		return fmt.Errorf("session file: %w", err)
	}

	group := sessionGroupPrefix + req.SessionName
	cfg.DeleteSection(group)
	sec, err := cfg.NewSection(group)
	if err != nil {
		return fmt.Errorf("session file: new section %s: %w", group, err)
	}

	records := make([]domain.Properties, 0, len(req.Restart)+len(req.Running)+len(req.Legacy))
	records = append(records, req.Restart...)
	for _, p := range req.Running {
		if p.IsValid() && p.RestartStyleHint != domain.RestartNever {
			records = append(records, p)
		}
	}
	records = append(records, req.Legacy...)

	for n, p := range records {
		encodeClient(sec, n, &p)
	}
	sec.Key(keyCount).SetValue(fmt.Sprintf("%d", len(records)))

	screens := make([]int, 0, len(req.ScreenWorkspaces))
	for s := range req.ScreenWorkspaces {
		screens = append(screens, s)
	}
	sort.Ints(screens)
	for _, s := range screens {
		sec.Key(fmt.Sprintf("Screen%d_ActiveWorkspace", s)).SetValue(fmt.Sprintf("%d", req.ScreenWorkspaces[s]))
	}

	now := req.Now.Now()
	sec.Key(keyLastAccess).SetValue(fmt.Sprintf("%d", now.Unix()))

	if err := cfg.SaveTo(c.Path); err != nil {
		return fmt.Errorf("session file: save %s: %w", c.Path, err)
	}
	return nil
}

func loadOrNew(path string) (*ini.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ini.Empty(), nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// backup hard-links the current file to Path + ".bak", unlinking any prior
// backup first. A no-op if Path does not yet exist.
func (c *Codec) backup() error {
	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		return nil
	}
	bak := c.Path + ".bak"
	if err := os.Remove(bak); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove prior backup %s: %w", bak, err)
	}
	if err := os.Link(c.Path, bak); err != nil {
		return fmt.Errorf("link backup %s: %w", bak, err)
	}
	return nil
}

func encodeClient(sec *ini.Section, n int, p *domain.Properties) {
	prefix := fmt.Sprintf("Client%d_", n)
	sec.Key(prefix + "ClientId").SetValue(string(p.ClientID))
	sec.Key(prefix + "Hostname").SetValue(p.Hostname)
	sec.Key(prefix + "Program").SetValue(p.Program)
	sec.Key(prefix + "CurrentDirectory").SetValue(p.CurrentDirectory)
	sec.Key(prefix + "Environment").SetValue(joinEscaped(p.Environment))
	sec.Key(prefix + "RestartCommand").SetValue(joinEscaped(p.RestartCommand))
	sec.Key(prefix + "CloneCommand").SetValue(joinEscaped(p.CloneCommand))
	sec.Key(prefix + "DiscardCommand").SetValue(joinEscaped(p.DiscardCommand))
	sec.Key(prefix + "ShutdownCommand").SetValue(joinEscaped(p.ShutdownCommand))
	sec.Key(prefix + "RestartStyleHint").SetValue(p.RestartStyleHint.String())
	sec.Key(prefix + "UserId").SetValue(p.UserID)
	sec.Key(prefix + "Priority").SetValue(fmt.Sprintf("%d", p.Priority))
}
