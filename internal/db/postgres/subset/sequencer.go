package subset

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

// Sequencer - walks the graph tables in dependency order and produces the subset query of each
// table for a root row.
type Sequencer struct {
	sourceSchema string
	root         *Table
	order        []string
	// paths - join path of every table to the root. nil when the table is copied in full
	paths map[string]JoinPath
}

func NewSequencer(g *Graph, sourceSchema, root string) (*Sequencer, error) {
	rootTable, ok := g.Table(root)
	if !ok {
		return nil, fmt.Errorf("table %s.%s: %w", sourceSchema, root, ErrTableNotFound)
	}
	order, err := TopologicalSort(g)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]JoinPath, len(order))
	for _, name := range order {
		path, _ := g.FindPath(name, rootTable.Name)
		log.Debug().
			Str("Table", name).
			Stringer("Path", path).
			Msg("join path")
		paths[name] = path
	}
	return &Sequencer{
		sourceSchema: sourceSchema,
		root:         rootTable,
		order:        order,
		paths:        paths,
	}, nil
}

func (s *Sequencer) Root() *Table {
	return s.root
}

func (s *Sequencer) Order() []string {
	return slices.Clone(s.order)
}

// Path returns the join path of the table to the root.
func (s *Sequencer) Path(table string) (JoinPath, bool) {
	path, ok := s.paths[table]
	return path, ok
}

// Walk calls fn for every table in order. The query of a table is built right before its call. It stops on
// the first error returned by fn.
func (s *Sequencer) Walk(rootID any, fn func(q TableQuery) error) error {
	for _, name := range s.order {
		if err := fn(newTableQuery(s.sourceSchema, s.root, name, s.paths[name], rootID)); err != nil {
			return err
		}
	}
	return nil
}
