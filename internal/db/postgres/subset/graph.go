package subset

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/introspect"
)

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrNoPrimaryKey    = errors.New("table has no primary key")
	ErrDependencyCycle = errors.New("dependency cycle between tables")
	errDuplicateTable  = errors.New("duplicate table")
)

// Graph - the oriented graph of the schema tables where edges are foreign keys. It is built once
// and is read only afterwards.
type Graph struct {
	tables      map[string]*Table
	names       []string
	constraints []Constraint
}

// NewGraph builds the graph from the catalog rows. Excluded tables are not added and foreign keys
// pointing to the tables that are not in the graph are dropped.
func NewGraph(tables []introspect.TableRow, fks []introspect.ForeignKeyRow, excluded []string) (*Graph, error) {
	g := &Graph{
		tables: make(map[string]*Table, len(tables)),
	}
	for _, t := range tables {
		if slices.Contains(excluded, t.Name) {
			log.Debug().
				Str("Table", t.Name).
				Msg("table is excluded")
			continue
		}
		if len(t.PrimaryKey) == 0 {
			return nil, fmt.Errorf("table %s: %w", t.Name, ErrNoPrimaryKey)
		}
		if _, ok := g.tables[t.Name]; ok {
			return nil, fmt.Errorf("table %s: %w", t.Name, errDuplicateTable)
		}
		g.tables[t.Name] = newTable(t.Name, slices.Clone(t.PrimaryKey))
	}
	g.names = slices.Sorted(maps.Keys(g.tables))

	constraintIdx := make(map[[2]string]int)
	for _, fk := range fks {
		owner, ok := g.tables[fk.TableName]
		if !ok {
			log.Debug().
				Str("Constraint", fk.ConstraintName).
				Str("Table", fk.TableName).
				Msg("unable to find table of foreign key: it might be excluded")
			continue
		}
		if _, ok = g.tables[fk.ForeignTableName]; !ok {
			log.Debug().
				Str("Constraint", fk.ConstraintName).
				Str("Table", fk.TableName).
				Str("ForeignTable", fk.ForeignTableName).
				Msg("unable to find foreign table: it might be excluded")
			continue
		}
		owner.ForeignKeys[fk.ForeignTableName] = append(owner.ForeignKeys[fk.ForeignTableName], Edge{
			Constraint:   fk.ConstraintName,
			LocalColumn:  fk.ColumnName,
			TargetColumn: fk.ForeignColumnName,
			IsNullable:   fk.IsNullable,
		})

		key := [2]string{fk.TableName, fk.ConstraintName}
		idx, ok := constraintIdx[key]
		if !ok {
			idx = len(g.constraints)
			constraintIdx[key] = idx
			g.constraints = append(g.constraints, Constraint{
				Name:   fk.ConstraintName,
				Table:  fk.TableName,
				Target: fk.ForeignTableName,
			})
		}
		c := &g.constraints[idx]
		c.Columns = append(c.Columns, fk.ColumnName)
		c.TargetColumns = append(c.TargetColumns, fk.ForeignColumnName)
	}
	return g, nil
}

func (g *Graph) Table(name string) (*Table, bool) {
	t, ok := g.tables[name]
	return t, ok
}

// Tables - all tables sorted by name.
func (g *Graph) Tables() []*Table {
	res := make([]*Table, 0, len(g.names))
	for _, name := range g.names {
		res = append(res, g.tables[name])
	}
	return res
}

// Constraints - foreign key constraints kept in the graph in catalog order.
func (g *Graph) Constraints() []Constraint {
	return slices.Clone(g.constraints)
}

func (g *Graph) Len() int {
	return len(g.names)
}
