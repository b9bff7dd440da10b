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

package replicate

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/subset"
)

type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SelectRootRows reads the rows of the root table ordered by the first primary key column. When ids are
// provided only the rows with the matching first primary key column value are returned.
//
// The rows are fully read before returning because the connection is reused for the replication.
func SelectRootRows(ctx context.Context, conn Querier, schema string, root *subset.Table, ids []any) ([]RootRow, error) {
	pk := pgx.Identifier{root.PrimaryKey[0]}.Sanitize()
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("*").
		From(sqlbuilder.Escape(pgx.Identifier{schema, root.Name}.Sanitize())).
		OrderBy(sqlbuilder.Escape(pk))
	if len(ids) > 0 {
		sb.Where(sb.In(pk, ids...))
	}
	query, args := sb.Build()
	log.Ctx(ctx).Debug().
		Str("Query", query).
		Any("Args", args).
		Msg("selecting root rows")

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select root rows: %w", err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect root rows: %w", err)
	}
	res := make([]RootRow, 0, len(maps))
	for _, m := range maps {
		res = append(res, m)
	}
	return res, nil
}
