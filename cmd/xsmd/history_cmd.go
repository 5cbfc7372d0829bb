package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xfce-go/xsmd/internal/history"
	"github.com/xfce-go/xsmd/pkg/logger"
)

var historyCmd = &cobra.Command{
	Use:   "history <client-id>",
	Short: "Show a client's registration lineage",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := logger.New("history", cfg.LogLevel)

	store, err := history.Open(filepath.Join(cfg.CheckpointDir, "history.kuzu"), log)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	rows, err := store.Lineage(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no registration history for this client id")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Session", "Registered At", "Restarted From"})
	for _, r := range rows {
		table.Append([]string{r.SessionName, r.RegisteredAt.Local().Format("2006-01-02 15:04:05"), r.RestartedFrom})
	}
	table.Render()
	return nil
}
