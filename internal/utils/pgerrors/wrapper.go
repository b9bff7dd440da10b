// Copyright 2023 Greenmask
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

package pgerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Fields - attaches the diagnostic fields of the underlying *pgconn.PgError (if any) to the log event.
// The error itself is not changed.
func Fields(e *zerolog.Event, err error) *zerolog.Event {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return e
	}
	e = e.Str("Code", pgErr.Code).
		Str("Severity", pgErr.Severity)
	if pgErr.Detail != "" {
		e = e.Str("Detail", pgErr.Detail)
	}
	if pgErr.Hint != "" {
		e = e.Str("Hint", pgErr.Hint)
	}
	if pgErr.SchemaName != "" {
		e = e.Str("SchemaName", pgErr.SchemaName)
	}
	if pgErr.TableName != "" {
		e = e.Str("TableName", pgErr.TableName)
	}
	if pgErr.ConstraintName != "" {
		e = e.Str("ConstraintName", pgErr.ConstraintName)
	}
	return e
}
