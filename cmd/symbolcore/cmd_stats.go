package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/tidesmith/symbolcore/internal/config"
)

// cmdStats prints the document count, the cache and search index
// paths, and the most recent cache snapshot id.
func cmdStats(cfg *config.Config, args []string) error {
	st, c, err := loadStoreFromCache(cfg)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer c.Close()

	snapshot, err := c.SnapshotID()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if snapshot == "" {
		snapshot = "(none)"
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Documents", fmt.Sprintf("%d", st.Stats())})
	table.Append([]string{"Cache path", cfg.CachePath})
	table.Append([]string{"Search path", cfg.SearchPath})
	table.Append([]string{"Snapshot", snapshot})
	table.Render()
	return nil
}
