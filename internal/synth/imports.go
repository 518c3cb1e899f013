package synth

import (
	"swagfill/internal/dialect"
	"swagfill/internal/javasrc"
)

// SweepLegacyImports removes imports of legacy annotation types that no
// remaining annotation in the unit references. It returns the number of
// imports removed.
func SweepLegacyImports(u *javasrc.Unit, p *dialect.Profile) int {
	referenced := make(map[string]bool)
	for _, a := range u.Annotations() {
		if !u.Deleted(a.Span) {
			referenced[a.SimpleName()] = true
		}
	}

	removed := 0
	for _, name := range p.LegacyNames() {
		if referenced[name] {
			continue
		}
		qualified := p.LegacyImport(name)
		for _, imp := range u.Imports {
			if imp.Static || imp.Wildcard || imp.Name != qualified || u.Deleted(imp.Span) {
				continue
			}
			u.RemoveImport(imp)
			removed++
		}
	}
	return removed
}
