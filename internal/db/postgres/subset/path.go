package subset

import (
	"fmt"
	"strings"
)

// Hop - one INNER JOIN step from the current table to its parent through a non-nullable foreign key. A
// composite constraint joins on all its column pairs.
type Hop struct {
	Parent        string
	LocalColumns  []string
	TargetColumns []string
}

func (h Hop) String() string {
	if len(h.LocalColumns) == 1 {
		return fmt.Sprintf("%s -> %s.%s", h.LocalColumns[0], h.Parent, h.TargetColumns[0])
	}
	return fmt.Sprintf(
		"(%s) -> %s.(%s)",
		strings.Join(h.LocalColumns, ", "), h.Parent, strings.Join(h.TargetColumns, ", "),
	)
}

// JoinPath - chain of hops from a table up to the root table. An empty non-nil path means the table is the
// root itself.
type JoinPath []Hop

func (p JoinPath) String() string {
	if p == nil {
		return "<none>"
	}
	if len(p) == 0 {
		return "<root>"
	}
	parts := make([]string, 0, len(p))
	for _, h := range p {
		parts = append(parts, h.String())
	}
	return strings.Join(parts, ", ")
}
