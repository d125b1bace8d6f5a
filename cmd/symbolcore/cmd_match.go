package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/tidesmith/symbolcore/internal/config"
)

// cmdMatch runs a prefix or fuzzy index query (spec §4.4) and prints
// every match.
func cmdMatch(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fuzzy := fs.Bool("fuzzy", false, "use trigram/acronym fuzzy ranking instead of prefix matching")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: symbolcore match [-fuzzy] <text>")
	}

	st, c, err := loadStoreFromCache(cfg)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	defer c.Close()

	matches := st.Match(fs.Arg(0), nil, *fuzzy)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Type", "Scope"})
	for _, sym := range matches {
		table.Append([]string{sym.Kind.String(), sym.Name, sym.Type.String(), sym.Scope})
	}
	table.Render()
	fmt.Printf("%d match(es)\n", len(matches))
	return nil
}
