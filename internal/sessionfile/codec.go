// Package sessionfile implements the Session File Codec: a
// keyed configuration file, one group per named session plus a handful of
// fixed groups, read at startup into the pending queue and rewritten on
// every checkpoint.
package sessionfile

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

const (
	sectionGeneral      = "General"
	sectionChooser      = "Chooser"
	sectionCompat       = "Compatibility"
	sectionFailsafe     = "Failsafe Session"
	sessionGroupPrefix  = "Session: "
	keyCount           = "Count"
	keyLastAccess      = "LastAccess"
	keyFailsafeCommand = "Command"
	keyFailsafeScreen  = "Screen"
)

// SessionFile is the decoded contents relevant to one chosen session plus
// the always-present Failsafe Session group.
type SessionFile struct {
	SessionNames      []string
	Clients           []domain.Properties
	Failsafe          []domain.FailsafeClient
	ScreenWorkspaces  map[int]int
	LastAccess        time.Time
}

// Codec reads and writes session files at a fixed path.
type Codec struct {
	Path   string
	Logger arch.Logger

	// FailsafeSearchPath is searched, in order, for a system-wide fallback
	// "Failsafe Session" group when the per-display session file has none
	// of its own (or doesn't exist yet). Each entry is a directory; the
	// fallback file checked under it is "xfce4/xfce4-session/failsafe.session".
	// Normally populated from $XDG_CONFIG_DIRS.
	FailsafeSearchPath []string
}

// New returns a Codec for the given on-disk path. The path is the
// cache-area file derived from the X display name; the Codec uses it as
// given (config.SessionFilePath replaces every ":" with "_").
func New(path string, failsafeSearchPath []string, logger arch.Logger) *Codec {
	return &Codec{Path: path, FailsafeSearchPath: failsafeSearchPath, Logger: logger}
}

// ListSessionNames returns every "Session: <name>" group present, without
// fully decoding any of them. Used by the manager to decide whether the
// Chooser collaborator needs to be invoked.
func (c *Codec) ListSessionNames() ([]string, error) {
	cfg, err := ini.Load(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session file: load %s: %w", c.Path, err)
	}
	var names []string
	for _, sec := range cfg.Sections() {
		if strings.HasPrefix(sec.Name(), sessionGroupPrefix) {
			names = append(names, strings.TrimPrefix(sec.Name(), sessionGroupPrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load decodes the named session group plus the Failsafe Session group.
// Records that fail Properties.IsValid are dropped; unknown
// groups and keys are ignored for forward compatibility.
func (c *Codec) Load(sessionName string) (*SessionFile, error) {
	cfg, err := ini.Load(c.Path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("session file: load %s: %w", c.Path, err)
	}

	sf := &SessionFile{ScreenWorkspaces: map[int]int{}}

	if cfg != nil {
		names, lerr := c.ListSessionNames()
		if lerr != nil {
			return nil, lerr
		}
		sf.SessionNames = names

		if sessionName != "" && cfg.HasSection(sessionGroupPrefix+sessionName) {
			sec := cfg.Section(sessionGroupPrefix + sessionName)
			sf.Clients = decodeClients(sec, c.Logger)
			sf.ScreenWorkspaces = decodeScreens(sec)
			if key, err := sec.GetKey(keyLastAccess); err == nil {
				if unix, perr := key.Int64(); perr == nil {
					sf.LastAccess = time.Unix(unix, 0)
				}
			}
		}

		if cfg.HasSection(sectionFailsafe) {
			sf.Failsafe = decodeFailsafe(cfg.Section(sectionFailsafe))
		}
	}

	if len(sf.Clients) == 0 && len(sf.Failsafe) == 0 {
		fallback, ferr := c.loadFailsafeFallback()
		if ferr != nil {
			if c.Logger != nil {
				c.Logger.Warn("failed reading failsafe fallback session", "error", ferr)
			}
		} else {
			sf.Failsafe = fallback
		}
	}

	return sf, nil
}

// loadFailsafeFallback searches FailsafeSearchPath, in order, for a
// system-wide failsafe session definition, returning the first one found.
// This is the fallback xfce4-session itself falls back to when the
// per-display session file carries no usable session and no Failsafe
// Session group of its own.
func (c *Codec) loadFailsafeFallback() ([]domain.FailsafeClient, error) {
	for _, dir := range c.FailsafeSearchPath {
		if dir == "" {
			continue
		}
		path := dir + string(os.PathSeparator) + "xfce4" + string(os.PathSeparator) + "xfce4-session" + string(os.PathSeparator) + "failsafe.session"
		cfg, err := ini.Load(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failsafe search: load %s: %w", path, err)
		}
		if cfg.HasSection(sectionFailsafe) {
			if fc := decodeFailsafe(cfg.Section(sectionFailsafe)); len(fc) > 0 {
				return fc, nil
			}
		}
	}
	return nil, nil
}

func decodeClients(sec *ini.Section, logger arch.Logger) []domain.Properties {
	count, _ := sec.Key(keyCount).Int()
	out := make([]domain.Properties, 0, count)
	for n := 0; n < count; n++ {
		prefix := fmt.Sprintf("Client%d_", n)
		p := domain.Properties{
			ClientID:         domain.ClientId(sec.Key(prefix + "ClientId").String()),
			Hostname:         sec.Key(prefix + "Hostname").String(),
			Program:          sec.Key(prefix + "Program").String(),
			CurrentDirectory: sec.Key(prefix + "CurrentDirectory").String(),
			Environment:      splitEscaped(sec.Key(prefix + "Environment").String()),
			RestartCommand:   splitEscaped(sec.Key(prefix + "RestartCommand").String()),
			CloneCommand:     splitEscaped(sec.Key(prefix + "CloneCommand").String()),
			DiscardCommand:   splitEscaped(sec.Key(prefix + "DiscardCommand").String()),
			ShutdownCommand:  splitEscaped(sec.Key(prefix + "ShutdownCommand").String()),
			RestartStyleHint: decodeHint(sec.Key(prefix + "RestartStyleHint").String()),
			UserID:           sec.Key(prefix + "UserId").String(),
		}
		if prio, err := sec.Key(prefix + "Priority").Int(); err == nil {
			p.Priority = uint8(prio)
		} else {
			p.Priority = domain.DefaultPriority
		}
		if !p.IsValid() {
			if logger != nil {
				logger.Warn("dropping invalid session-file client record", "index", n, "client_id", p.ClientID)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func decodeScreens(sec *ini.Section) map[int]int {
	out := map[int]int{}
	for _, key := range sec.Keys() {
		var screen, workspace int
		if _, err := fmt.Sscanf(key.Name(), "Screen%d_ActiveWorkspace", &screen); err == nil {
			if workspace, err = key.Int(); err == nil {
				out[screen] = workspace
			}
		}
	}
	return out
}

func decodeFailsafe(sec *ini.Section) []domain.FailsafeClient {
	count, _ := sec.Key(keyCount).Int()
	if count <= 1 && sec.HasKey(keyFailsafeCommand) {
		screen, _ := sec.Key(keyFailsafeScreen).Int()
		return []domain.FailsafeClient{{
			Command:      splitEscaped(sec.Key(keyFailsafeCommand).String()),
			ScreenTarget: screen,
		}}
	}
	out := make([]domain.FailsafeClient, 0, count)
	for n := 0; n < count; n++ {
		prefix := fmt.Sprintf("Client%d_", n)
		screen, _ := sec.Key(prefix + keyFailsafeScreen).Int()
		out = append(out, domain.FailsafeClient{
			Command:      splitEscaped(sec.Key(prefix + keyFailsafeCommand).String()),
			ScreenTarget: screen,
		})
	}
	return out
}

func decodeHint(s string) domain.RestartStyleHint {
	switch s {
	case "Anyway":
		return domain.RestartAnyway
	case "Immediately":
		return domain.RestartImmediately
	case "Never":
		return domain.RestartNever
	default:
		return domain.RestartIfRunning
	}
}

// splitEscaped splits a comma-separated, backslash-escaped list value
// ("list values are comma-separated with backslash escaping").
func splitEscaped(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	return out
}

// joinEscaped is splitEscaped's inverse.
func joinEscaped(vals []string) string {
	escaped := make([]string, len(vals))
	for i, v := range vals {
		v = strings.ReplaceAll(v, "\\", "\\\\")
		v = strings.ReplaceAll(v, ",", "\\,")
		escaped[i] = v
	}
	return strings.Join(escaped, ",")
}
