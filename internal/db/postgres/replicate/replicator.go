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
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/subset"
)

var (
	errRootIDIsNull        = errors.New("root row primary key is NULL")
	errDestinationIsSource = errors.New("destination schema is the source schema")
)

type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type TableResult struct {
	Table string `json:"table" yaml:"table"`
	Rows  int64  `json:"rows" yaml:"rows"`
}

// Result - outcome of one root row replication.
type Result struct {
	Schema string        `json:"schema" yaml:"schema"`
	Tables []TableResult `json:"tables" yaml:"tables"`
}

// Plan - what would be executed for one root row.
type Plan struct {
	Schema string      `json:"schema" yaml:"schema"`
	RootID any         `json:"root_id" yaml:"root_id"`
	Tables []PlanTable `json:"tables" yaml:"tables"`
}

type PlanTable struct {
	Table string `json:"table" yaml:"table"`
	Path  string `json:"path" yaml:"path"`
	Query string `json:"query" yaml:"query"`
}

// Replicator - copies the subset of one root row into its own schema. The statements are executed one by one
// without a transaction, so a failed run leaves a partial schema that is dropped by the next run.
type Replicator struct {
	conn         Conn
	graph        *subset.Graph
	sequencer    *subset.Sequencer
	namer        *SchemaNamer
	sourceSchema string
	reporter     Reporter
}

func NewReplicator(
	conn Conn, graph *subset.Graph, sequencer *subset.Sequencer, namer *SchemaNamer, sourceSchema string,
	reporter Reporter,
) *Replicator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Replicator{
		conn:         conn,
		graph:        graph,
		sequencer:    sequencer,
		namer:        namer,
		sourceSchema: sourceSchema,
		reporter:     reporter,
	}
}

func (r *Replicator) Replicate(ctx context.Context, row RootRow) (*Result, error) {
	schema, rootID, err := r.resolve(row)
	if err != nil {
		return nil, err
	}
	ctx = log.Ctx(ctx).With().
		Str("Schema", schema).
		Any("RootID", rootID).
		Logger().
		WithContext(ctx)

	if _, err = r.exec(ctx, dropSchemaStatement(schema)); err != nil {
		return nil, fmt.Errorf("drop schema %s: %w", schema, err)
	}
	if _, err = r.exec(ctx, createSchemaStatement(schema)); err != nil {
		return nil, fmt.Errorf("create schema %s: %w", schema, err)
	}
	r.reporter.SchemaCreated(schema)

	res := &Result{Schema: schema}
	err = r.sequencer.Walk(rootID, func(q subset.TableQuery) error {
		if _, err := r.exec(ctx, createTableStatement(schema, r.sourceSchema, q.Table)); err != nil {
			return fmt.Errorf("create table %s.%s: %w", schema, q.Table, err)
		}
		tag, err := r.exec(ctx, insertStatement(schema, q.Table, q.Query), q.Args...)
		if err != nil {
			return fmt.Errorf("copy table %s.%s: %w", schema, q.Table, err)
		}
		res.Tables = append(res.Tables, TableResult{Table: q.Table, Rows: tag.RowsAffected()})
		r.reporter.TableCopied(q.Table, tag.RowsAffected())
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range r.graph.Constraints() {
		if _, err = r.exec(ctx, addConstraintStatement(schema, c)); err != nil {
			return nil, fmt.Errorf("restore constraint %s on %s.%s: %w", c.Name, schema, c.Table, err)
		}
	}
	log.Ctx(ctx).Info().
		Int("Tables", len(res.Tables)).
		Msg("schema exploded")
	return res, nil
}

// Plan builds the plan of the root row replication without executing anything.
func (r *Replicator) Plan(row RootRow) (*Plan, error) {
	schema, rootID, err := r.resolve(row)
	if err != nil {
		return nil, err
	}
	rootID = planValue(rootID)
	plan := &Plan{Schema: schema, RootID: rootID}
	err = r.sequencer.Walk(rootID, func(q subset.TableQuery) error {
		sql, err := q.SQL()
		if err != nil {
			return err
		}
		plan.Tables = append(plan.Tables, PlanTable{
			Table: q.Table,
			Path:  q.Path.String(),
			Query: sql,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *Replicator) resolve(row RootRow) (string, any, error) {
	pk := r.sequencer.Root().PrimaryKey[0]
	rootID, ok := row[pk]
	if !ok || rootID == nil {
		return "", nil, fmt.Errorf("column %s: %w", pk, errRootIDIsNull)
	}
	schema, err := r.namer.Name(row)
	if err != nil {
		return "", nil, fmt.Errorf("resolve destination schema name: %w", err)
	}
	if schema == r.sourceSchema {
		return "", nil, fmt.Errorf("schema %s: %w", schema, errDestinationIsSource)
	}
	return schema, rootID, nil
}

// planValue - uuid values are decoded as raw bytes and must be rendered as text in the plan.
func planValue(v any) any {
	if b, ok := v.([16]byte); ok {
		return uuid.UUID(b)
	}
	return v
}

func (r *Replicator) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	log.Ctx(ctx).Debug().
		Str("Query", sql).
		Any("Args", args).
		Msg("executing")
	return r.conn.Exec(ctx, sql, args...)
}
