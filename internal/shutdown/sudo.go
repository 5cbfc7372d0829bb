package shutdown

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// SudoHelper shells out to a small privileged helper binary for systems
// without logind (fallback below the dropped HAL backend).
// The helper is expected to accept one of "halt", "reboot", "suspend",
// "hibernate" as argv[1] and exit zero on success.
type SudoHelper struct {
	HelperPath string
}

func NewSudoHelper(helperPath string) *SudoHelper {
	return &SudoHelper{HelperPath: helperPath}
}

func (s *SudoHelper) Name() string { return "sudo-helper" }

func (s *SudoHelper) Execute(ctx context.Context, action domain.ShutdownType) error {
	arg, err := helperArg(action)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, s.HelperPath, arg)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("shutdown helper %s %s: %w (%s)", s.HelperPath, arg, err, out)
	}
	return nil
}

func helperArg(action domain.ShutdownType) (string, error) {
	switch action {
	case domain.ShutdownHalt:
		return "halt", nil
	case domain.ShutdownReboot:
		return "reboot", nil
	case domain.ShutdownSuspend:
		return "suspend", nil
	case domain.ShutdownHibernate:
		return "hibernate", nil
	default:
		return "", fmt.Errorf("shutdown: sudo-helper cannot service action %v", action)
	}
}

var _ arch.ShutdownBackend = (*SudoHelper)(nil)
