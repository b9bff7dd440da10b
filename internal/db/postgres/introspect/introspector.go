// Copyright 2025 Greenmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package introspect

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TableRow - base table with its primary key columns in the constraint definition order.
type TableRow struct {
	Name       string
	PrimaryKey []string
}

// ForeignKeyRow - one column pair of a foreign key constraint.
type ForeignKeyRow struct {
	ConstraintName    string
	TableName         string
	ColumnName        string
	ForeignTableName  string
	ForeignColumnName string
	// IsNullable - the local column accepts NULL, so the parent row is optional.
	IsNullable bool
}

// Introspector - reads the tables and foreign keys of one schema. It only reads the catalog and
// never changes anything.
type Introspector struct {
	conn   querier
	schema string
}

func NewIntrospector(conn querier, schema string) *Introspector {
	return &Introspector{
		conn:   conn,
		schema: schema,
	}
}

func (i *Introspector) Schema() string {
	return i.schema
}

func (i *Introspector) GetTables(ctx context.Context) ([]TableRow, error) {
	rows, err := i.conn.Query(ctx, tablesQuery, i.schema)
	if err != nil {
		return nil, fmt.Errorf("execute tables query: %w", err)
	}
	defer rows.Close()

	var res []TableRow
	for rows.Next() {
		var t TableRow
		if err = rows.Scan(&t.Name, &t.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scan tables query: %w", err)
		}
		res = append(res, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read tables query: %w", err)
	}
	log.Ctx(ctx).Debug().
		Str("Schema", i.schema).
		Int("Count", len(res)).
		Msg("introspected tables")
	return res, nil
}

func (i *Introspector) GetForeignKeys(ctx context.Context) ([]ForeignKeyRow, error) {
	rows, err := i.conn.Query(ctx, foreignKeysQuery, i.schema)
	if err != nil {
		return nil, fmt.Errorf("execute foreign keys query: %w", err)
	}
	defer rows.Close()

	var res []ForeignKeyRow
	for rows.Next() {
		var fk ForeignKeyRow
		if err = rows.Scan(
			&fk.ConstraintName, &fk.TableName, &fk.ColumnName,
			&fk.ForeignTableName, &fk.ForeignColumnName, &fk.IsNullable,
		); err != nil {
			return nil, fmt.Errorf("scan foreign keys query: %w", err)
		}
		res = append(res, fk)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read foreign keys query: %w", err)
	}
	log.Ctx(ctx).Debug().
		Str("Schema", i.schema).
		Int("Count", len(res)).
		Msg("introspected foreign keys")
	return res, nil
}
