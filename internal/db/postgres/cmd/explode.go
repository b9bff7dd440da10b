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

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/introspect"
	"github.com/greenmaskio/pgexplode/internal/db/postgres/replicate"
	"github.com/greenmaskio/pgexplode/internal/db/postgres/subset"
	pgUtils "github.com/greenmaskio/pgexplode/internal/db/postgres/utils"
	"github.com/greenmaskio/pgexplode/internal/domains"
)

const rootHasForeignKeysWarning = "Warning: Root table has FK links!"

type conn interface {
	replicate.Conn
	replicate.Querier
	pgUtils.TxBeginner
}

// Explode - explodes every selected root row into its own schema.
type Explode struct {
	config *domains.Config
	out    io.Writer
}

func NewExplode(cfg *domains.Config, out io.Writer) *Explode {
	return &Explode{
		config: cfg,
		out:    out,
	}
}

func (e *Explode) Run(ctx context.Context) error {
	startedAt := time.Now()
	ctx = log.Ctx(ctx).With().
		Str("RunId", uuid.NewString()).
		Logger().
		WithContext(ctx)

	dsn, err := e.config.Connection.GetPgDSN()
	if err != nil {
		return fmt.Errorf("cannot build connection string: %w", err)
	}

	conn, err := e.connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("cannot connect to server: %w", err)
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("unable to close connection")
		}
	}()

	schemas, err := e.explode(ctx, conn)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Int("Schemas", schemas).
		Dur("Elapsed", time.Since(startedAt)).
		Bool("DryRun", e.config.Explode.DryRun).
		Msg("explode completed")
	return nil
}

func (e *Explode) connect(ctx context.Context, dsn string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pgxdecimal.Register(conn.TypeMap())

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return conn, nil
}

// explode - runs the explode on the established connection and returns the number of processed root rows.
func (e *Explode) explode(ctx context.Context, conn conn) (int, error) {
	opts := e.config.Explode

	var (
		tables []introspect.TableRow
		fks    []introspect.ForeignKeyRow
	)
	err := pgUtils.WithSnapshot(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
		i := introspect.NewIntrospector(tx, opts.SourceSchema)
		var err error
		if tables, err = i.GetTables(ctx); err != nil {
			return fmt.Errorf("introspect tables: %w", err)
		}
		if fks, err = i.GetForeignKeys(ctx); err != nil {
			return fmt.Errorf("introspect foreign keys: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	graph, err := subset.NewGraph(tables, fks, opts.ExcludeTables)
	if err != nil {
		return 0, fmt.Errorf("build schema graph: %w", err)
	}
	sequencer, err := subset.NewSequencer(graph, opts.SourceSchema, opts.Table)
	if err != nil {
		return 0, fmt.Errorf("sequence tables: %w", err)
	}
	root := sequencer.Root()
	log.Ctx(ctx).Debug().
		Strs("Order", sequencer.Order()).
		Msg("tables order")

	if root.HasForeignKeys() {
		if _, err = fmt.Fprintln(e.out, rootHasForeignKeysWarning); err != nil {
			return 0, err
		}
	}

	filter, err := replicate.NewRowFilter(opts.When)
	if err != nil {
		return 0, err
	}
	namer, err := replicate.NewSchemaNamer(root.Name, root.PrimaryKey[0], opts.SchemaColumn, opts.SchemaTemplate)
	if err != nil {
		return 0, err
	}
	reporter := replicate.Reporter(replicate.NewConsoleReporter(e.out))
	if opts.DryRun {
		reporter = nil
	}
	replicator := replicate.NewReplicator(conn, graph, sequencer, namer, opts.SourceSchema, reporter)

	rows, err := replicate.SelectRootRows(ctx, conn, opts.SourceSchema, root, parseIDs(opts.IDs))
	if err != nil {
		return 0, err
	}

	var plans []*replicate.Plan
	var processed int
	for _, row := range rows {
		ok, err := filter.Match(row)
		if err != nil {
			return processed, err
		}
		if !ok {
			log.Ctx(ctx).Debug().
				Any("RootID", row[root.PrimaryKey[0]]).
				Msg("root row does not match when condition: skipping")
			continue
		}

		if opts.DryRun {
			plan, err := replicator.Plan(row)
			if err != nil {
				return processed, err
			}
			plans = append(plans, plan)
		} else if _, err = replicator.Replicate(ctx, row); err != nil {
			return processed, err
		}
		processed++
	}

	if opts.DryRun {
		if err = writePlans(e.out, opts.PlanFormat, plans); err != nil {
			return processed, fmt.Errorf("write plan: %w", err)
		}
	}
	return processed, nil
}

// parseIDs - ids are bound as text, the server casts them to the type of the primary key column.
func parseIDs(ids []string) []any {
	res := make([]any, 0, len(ids))
	for _, id := range ids {
		res = append(res, id)
	}
	return res
}
