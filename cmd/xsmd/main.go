// Command xsmd is the XSMP session manager daemon and its CLI: `run`
// starts the manager, `history` reads the history store directly, and the
// remaining subcommands talk to an already-running instance over its
// Unix-socket IPC API.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)

	configPath string
	socketPath string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "xsmd",
	Short: "xsmd is an XSMP session manager",
	Long: `xsmd manages an X session's client lifecycle: registration, checkpoint
and shutdown save-yourself sequencing, session-file persistence, and
startup of a saved or failsafe session.

  xsmd run                         start the manager
  xsmd checkpoint                  save the running session
  xsmd shutdown logout|halt|reboot|suspend|hibernate
  xsmd status                      show manager state and registered clients
  xsmd history <client-id>         show a client's registration lineage`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: built-in + XSMD_* env overrides)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "IPC socket path (default: from config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(shutdownCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	errorColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}
