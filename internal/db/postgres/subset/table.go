package subset

import (
	"maps"
	"slices"
)

type Table struct {
	Name       string
	PrimaryKey []string
	// ForeignKeys - edges grouped by the referenced table name in catalog order
	ForeignKeys map[string][]Edge
}

func newTable(name string, primaryKey []string) *Table {
	return &Table{
		Name:        name,
		PrimaryKey:  primaryKey,
		ForeignKeys: make(map[string][]Edge),
	}
}

// References - names of the referenced tables sorted by name.
func (t *Table) References() []string {
	return slices.Sorted(maps.Keys(t.ForeignKeys))
}

func (t *Table) HasForeignKeys() bool {
	return len(t.ForeignKeys) > 0
}

// mandatoryHop - join step to the target over the constraint of the first non-nullable edge. All the column
// pairs of that constraint are joined.
func (t *Table) mandatoryHop(target string) (Hop, bool) {
	edges := t.ForeignKeys[target]
	idx := slices.IndexFunc(edges, func(e Edge) bool {
		return !e.IsNullable
	})
	if idx == -1 {
		return Hop{}, false
	}
	hop := Hop{Parent: target}
	for _, e := range edges {
		if e.Constraint != edges[idx].Constraint {
			continue
		}
		hop.LocalColumns = append(hop.LocalColumns, e.LocalColumn)
		hop.TargetColumns = append(hop.TargetColumns, e.TargetColumn)
	}
	return hop, true
}
