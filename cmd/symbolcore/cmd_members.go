package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/tidesmith/symbolcore/internal/config"
)

// cmdMembers runs the inheritance-aware member lookup from spec §4.5
// over a class/interface/trait's fully qualified name, walking base
// classes and used traits (and base interfaces only when the named type
// is itself an interface; a class's implemented interfaces are not
// walked) with cycle protection and the visibility-narrowing rule built
// into symbolstore.Store.LookupTypeMembers.
func cmdMembers(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: symbolcore members <fully-qualified-type-name>")
	}

	st, c, err := loadStoreFromCache(cfg)
	if err != nil {
		return fmt.Errorf("members: %w", err)
	}
	defer c.Close()

	members := st.LookupTypeMembers(args[0], nil)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Type", "Modifiers", "Scope"})
	for _, m := range members {
		table.Append([]string{m.Kind.String(), m.Name, m.Type.String(), modifierString(m.Modifiers), m.Scope})
	}
	table.Render()
	fmt.Printf("%d member(s)\n", len(members))
	return nil
}
