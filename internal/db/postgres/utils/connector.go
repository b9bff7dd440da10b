package utils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// WithSnapshot runs fn in a read only REPEATABLE READ transaction, so all the queries of fn see the same
// state of the database. The transaction is rolled back when fn fails.
func WithSnapshot(ctx context.Context, conn TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("cannot start transaction: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		if txErr := tx.Rollback(ctx); txErr != nil {
			log.Ctx(ctx).Warn().
				Err(txErr).
				Msg("cannot rollback transaction")
		}
		return err
	}
	return tx.Commit(ctx)
}
