package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/tidesmith/symbolcore/internal/config"
	"github.com/tidesmith/symbolcore/internal/searchtext"
)

// cmdSearch runs a free-text query over symbol names, signatures, and
// doc-comment descriptions via the Bleve-backed searchtext index,
// complementing the exact/prefix/fuzzy queries pkg/symbolindex answers.
func cmdSearch(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: symbolcore search <text>")
	}

	sx, err := searchtext.Open(cfg.SearchPath)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer sx.Close()

	results, err := sx.Search(args[0], 20)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Score", "Name", "URI"})
	for _, r := range results {
		table.Append([]string{fmt.Sprintf("%.3f", r.Score), r.FQN, r.URI})
	}
	table.Render()
	return nil
}
