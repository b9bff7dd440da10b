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

var (
	// tablesQuery - base tables of the schema that have a primary key. Tables without primary key are
	// filtered out by the inner join with the constraint.
	tablesQuery = `
		SELECT t.table_name::TEXT                                               AS table_name,
			   array_agg(kcu.column_name::TEXT ORDER BY kcu.ordinal_position)    AS pk_cols
		FROM information_schema.tables t
			JOIN information_schema.table_constraints tc
				ON tc.table_schema = t.table_schema
				AND tc.table_name = t.table_name
				AND tc.constraint_type = 'PRIMARY KEY'
			JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_name = tc.constraint_name
				AND kcu.constraint_schema = tc.constraint_schema
				AND kcu.table_name = tc.table_name
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema = $1
		GROUP BY t.table_name
		ORDER BY t.table_name
	`

	// foreignKeysQuery - foreign key columns of the schema. The local and referenced columns are paired by
	// position_in_unique_constraint, so composite constraints produce one row per column pair. References
	// that leave the schema are filtered out.
	foreignKeysQuery = `
		SELECT tc.constraint_name::TEXT  AS constraint_name,
			   tc.table_name::TEXT       AS table_name,
			   kcu.column_name::TEXT     AS column_name,
			   rkcu.table_name::TEXT     AS foreign_table_name,
			   rkcu.column_name::TEXT    AS foreign_column_name,
			   c.is_nullable = 'YES'     AS nullable
		FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_name = tc.constraint_name
				AND kcu.constraint_schema = tc.constraint_schema
				AND kcu.table_name = tc.table_name
			JOIN information_schema.referential_constraints rc
				ON rc.constraint_name = tc.constraint_name
				AND rc.constraint_schema = tc.constraint_schema
			JOIN information_schema.key_column_usage rkcu
				ON rkcu.constraint_name = rc.unique_constraint_name
				AND rkcu.constraint_schema = rc.unique_constraint_schema
				AND rkcu.ordinal_position = kcu.position_in_unique_constraint
			JOIN information_schema.columns c
				ON c.table_schema = tc.table_schema
				AND c.table_name = tc.table_name
				AND c.column_name = kcu.column_name
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1
		  AND rkcu.table_schema = $1
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position
	`
)
