package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/tidesmith/symbolcore/internal/config"
)

// cmdFind runs an exact-name lookup (spec §4.5 SymbolStore.find) and
// prints the single match, if any.
func cmdFind(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: symbolcore find <name>")
	}

	st, c, err := loadStoreFromCache(cfg)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer c.Close()

	sym := st.Find(args[0], nil)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Type", "Scope"})
	if sym == nil {
		table.Render()
		fmt.Println("no exact match")
		return nil
	}
	table.Append([]string{sym.Kind.String(), sym.Name, sym.Type.String(), sym.Scope})
	table.Render()
	return nil
}
