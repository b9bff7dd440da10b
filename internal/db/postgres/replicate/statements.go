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
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/subset"
)

func dropSchemaStatement(schema string) string {
	return fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pgx.Identifier{schema}.Sanitize())
}

func createSchemaStatement(schema string) string {
	return fmt.Sprintf("CREATE SCHEMA %s", pgx.Identifier{schema}.Sanitize())
}

func createTableStatement(dest, source, table string) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (LIKE %s INCLUDING ALL)",
		pgx.Identifier{dest, table}.Sanitize(),
		pgx.Identifier{source, table}.Sanitize(),
	)
}

func insertStatement(dest, table, query string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", pgx.Identifier{dest, table}.Sanitize(), query)
}

// addConstraintStatement - CREATE TABLE ... LIKE does not copy foreign keys, so they are restored
// separately pointing to the tables of the destination schema.
func addConstraintStatement(dest string, c subset.Constraint) string {
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		pgx.Identifier{dest, c.Table}.Sanitize(),
		pgx.Identifier{c.Name}.Sanitize(),
		columnList(c.Columns),
		pgx.Identifier{dest, c.Target}.Sanitize(),
		columnList(c.TargetColumns),
	)
}

func columnList(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		quoted = append(quoted, pgx.Identifier{c}.Sanitize())
	}
	return strings.Join(quoted, ", ")
}
