// Package shutdown implements the Shutdown Driver: a chain of
// backends that can actually carry out a ShutdownType, tried in order
// until one accepts, plus the plain os/exec runner the manager uses for
// Anyway shutdown_command and discard_command entries.
package shutdown

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/login1"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// Logind backs shutdown actions with systemd-logind over D-Bus
// (org.freedesktop.login1.Manager), mirroring xfsm_systemd_try_shutdown
// and xfsm_systemd_try_restart's Reboot/PowerOff calls, extended to
// Suspend/Hibernate since logind exposes both directly.
type Logind struct {
	conn *login1.Conn
}

// NewLogind connects to the system bus's logind manager. Returns an error
// if logind is unreachable (no systemd, or running in a container without
// the system bus mounted); callers should fall back to another backend.
func NewLogind() (*Logind, error) {
	conn, err := login1.New()
	if err != nil {
		return nil, fmt.Errorf("connect to logind: %w", err)
	}
	return &Logind{conn: conn}, nil
}

func (l *Logind) Name() string { return "logind" }

// Execute carries out action via logind, first checking the matching
// Can* property so a denied PolicyKit action surfaces as a clean error
// rather than a D-Bus call failure.
func (l *Logind) Execute(ctx context.Context, action domain.ShutdownType) error {
	switch action {
	case domain.ShutdownLogout:
		return fmt.Errorf("shutdown: logind backend cannot service Logout, it is session-local")
	case domain.ShutdownHalt:
		if can, err := l.conn.CanPowerOff(); err != nil || can != "yes" {
			return fmt.Errorf("shutdown: power-off not permitted (can=%q, err=%v)", can, err)
		}
		return l.conn.PowerOff(true)
	case domain.ShutdownReboot:
		if can, err := l.conn.CanReboot(); err != nil || can != "yes" {
			return fmt.Errorf("shutdown: reboot not permitted (can=%q, err=%v)", can, err)
		}
		return l.conn.Reboot(true)
	case domain.ShutdownSuspend:
		if can, err := l.conn.CanSuspend(); err != nil || can != "yes" {
			return fmt.Errorf("shutdown: suspend not permitted (can=%q, err=%v)", can, err)
		}
		return l.conn.Suspend(true)
	case domain.ShutdownHibernate:
		if can, err := l.conn.CanHibernate(); err != nil || can != "yes" {
			return fmt.Errorf("shutdown: hibernate not permitted (can=%q, err=%v)", can, err)
		}
		return l.conn.Hibernate(true)
	default:
		return fmt.Errorf("shutdown: unknown action %v", action)
	}
}

var _ arch.ShutdownBackend = (*Logind)(nil)
