package subset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/introspect"
)

func tableRow(name string, pk ...string) introspect.TableRow {
	if len(pk) == 0 {
		pk = []string{"id"}
	}
	return introspect.TableRow{Name: name, PrimaryKey: pk}
}

func fkRow(table, column, target string, nullable bool) introspect.ForeignKeyRow {
	return introspect.ForeignKeyRow{
		ConstraintName:    table + "_" + column + "_fkey",
		TableName:         table,
		ColumnName:        column,
		ForeignTableName:  target,
		ForeignColumnName: "id",
		IsNullable:        nullable,
	}
}

// shopGraph:
//
//	country <- order <- order_item -> product
//	                 <- invoice (nullable)
//	customer <- order (nullable)
func shopGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(
		[]introspect.TableRow{
			tableRow("country"),
			tableRow("customer"),
			tableRow("invoice"),
			tableRow("order"),
			tableRow("order_item"),
			tableRow("product"),
		},
		[]introspect.ForeignKeyRow{
			fkRow("invoice", "order_id", "order", true),
			fkRow("order", "country_id", "country", false),
			fkRow("order", "customer_id", "customer", true),
			fkRow("order_item", "order_id", "order", false),
			fkRow("order_item", "product_id", "product", false),
		},
		nil,
	)
	require.NoError(t, err)
	return g
}
