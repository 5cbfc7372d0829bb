package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xfce-go/xsmd/internal/domain"
)

var shutdownCmd = &cobra.Command{
	Use:       "shutdown <logout|halt|reboot|suspend|hibernate>",
	Short:     "Request a global shutdown",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"logout", "halt", "reboot", "suspend", "hibernate"},
	RunE:      runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	action, err := parseShutdownType(args[0])
	if err != nil {
		return err
	}

	c := newIPCClient()
	if err := c.post("/v1/shutdown", map[string]interface{}{"type": int(action)}); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("shutdown (%s) requested\n", action)
	return nil
}

func parseShutdownType(s string) (domain.ShutdownType, error) {
	switch s {
	case "logout":
		return domain.ShutdownLogout, nil
	case "halt":
		return domain.ShutdownHalt, nil
	case "reboot":
		return domain.ShutdownReboot, nil
	case "suspend":
		return domain.ShutdownSuspend, nil
	case "hibernate":
		return domain.ShutdownHibernate, nil
	default:
		return 0, fmt.Errorf("unknown shutdown type %q (want logout, halt, reboot, suspend, or hibernate)", s)
	}
}
