package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show manager state and registered clients",
	RunE:  runStatus,
}

type clientView struct {
	ClientID string `json:"client_id"`
	Program  string `json:"program"`
	Hostname string `json:"hostname"`
	State    string `json:"state"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := newIPCClient()

	var state struct {
		State string `json:"state"`
	}
	if err := c.get("/v1/state", &state); err != nil {
		return err
	}
	fmt.Printf("manager state: %s\n", color.New(color.FgCyan, color.Bold).Sprint(state.State))

	var clients []clientView
	if err := c.get("/v1/clients", &clients); err != nil {
		return err
	}

	if len(clients) == 0 {
		fmt.Println("no registered clients")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Client ID", "Program", "Hostname", "State"})
	for _, cl := range clients {
		table.Append([]string{cl.ClientID, cl.Program, cl.Hostname, cl.State})
	}
	table.Render()
	return nil
}
