package main

import (
	"strings"

	"github.com/tidesmith/symbolcore/pkg/symbol"
)

var modifierNames = []struct {
	flag symbol.Modifiers
	name string
}{
	{symbol.ModPublic, "public"},
	{symbol.ModProtected, "protected"},
	{symbol.ModPrivate, "private"},
	{symbol.ModFinal, "final"},
	{symbol.ModAbstract, "abstract"},
	{symbol.ModStatic, "static"},
	{symbol.ModReadOnly, "readonly"},
	{symbol.ModWriteOnly, "writeonly"},
	{symbol.ModMagic, "magic"},
	{symbol.ModAnonymous, "anonymous"},
	{symbol.ModUse, "use"},
}

// modifierString renders a Modifiers bitset as a comma-joined list of
// lowercase names, for table display.
func modifierString(m symbol.Modifiers) string {
	var names []string
	for _, mn := range modifierNames {
		if m.Has(mn.flag) {
			names = append(names, mn.name)
		}
	}
	return strings.Join(names, ",")
}
