package subset

import (
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
)

// TableQuery - the SELECT that produces the rows of the table belonging to one root row.
type TableQuery struct {
	Table string
	// Path - join chain to the root. It is nil when the table is not reachable and is copied in full
	Path  JoinPath
	Query string
	Args  []any
}

// Filtered reports whether the query is restricted to the root row.
func (q TableQuery) Filtered() bool {
	return q.Path != nil
}

// SQL renders the query with the arguments inlined. It is used only for plans and logs.
func (q TableQuery) SQL() (string, error) {
	res, err := sqlbuilder.PostgreSQL.Interpolate(q.Query, q.Args)
	if err != nil {
		return "", fmt.Errorf("interpolate query for table %s: %w", q.Table, err)
	}
	return res, nil
}

func newTableQuery(schema string, root *Table, table string, path JoinPath, rootID any) TableQuery {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	switch {
	case path == nil:
		sb.Select("*").
			From(sqlbuilder.Escape(fullTableName(schema, table)))
	case len(path) == 0:
		sb.Select("*").
			From(sqlbuilder.Escape(fullTableName(schema, table)))
		sb.Where(sb.Equal(fullColumnName(schema, root.Name, root.PrimaryKey[0]), rootID))
	default:
		sb.Select(sqlbuilder.Escape(fullTableName(schema, table) + ".*")).
			From(sqlbuilder.Escape(fullTableName(schema, table)))
		current := table
		for _, hop := range path {
			on := make([]string, 0, len(hop.LocalColumns))
			for i := range hop.LocalColumns {
				on = append(on, sqlbuilder.Escape(fmt.Sprintf(
					"%s = %s",
					fullColumnName(schema, current, hop.LocalColumns[i]),
					fullColumnName(schema, hop.Parent, hop.TargetColumns[i]),
				)))
			}
			sb.Join(sqlbuilder.Escape(fullTableName(schema, hop.Parent)), on...)
			current = hop.Parent
		}
		sb.Where(sb.Equal(fullColumnName(schema, root.Name, root.PrimaryKey[0]), rootID))
	}
	query, args := sb.Build()
	return TableQuery{
		Table: table,
		Path:  path,
		Query: query,
		Args:  args,
	}
}

func fullTableName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

func fullColumnName(schema, table, column string) string {
	return pgx.Identifier{schema, table, column}.Sanitize()
}
