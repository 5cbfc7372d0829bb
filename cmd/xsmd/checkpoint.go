package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkpointSessionName string

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Save the running session",
	RunE:  runCheckpoint,
}

func init() {
	checkpointCmd.Flags().StringVar(&checkpointSessionName, "session", "", "alias to save the session under (default: current session name)")
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	c := newIPCClient()
	if err := c.post("/v1/checkpoint", map[string]string{"session_name": checkpointSessionName}); err != nil {
		return err
	}
	color.New(color.FgGreen).Println("checkpoint requested")
	return nil
}
