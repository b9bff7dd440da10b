package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"github.com/greenmaskio/pgexplode/internal/utils/testutils"
)

type connectorSuite struct {
	testutils.PgContainerSuite
}

func TestConnector(t *testing.T) {
	suite.Run(t, new(connectorSuite))
}

func (s *connectorSuite) TestWithSnapshot() {
	ctx := context.Background()
	conn, err := s.GetConnection(ctx)
	s.Require().NoError(err)
	defer conn.Close(ctx)

	s.Run("read", func() {
		var isolation, readOnly string
		err := WithSnapshot(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
			return tx.QueryRow(ctx, "SELECT current_setting('transaction_isolation'), current_setting('transaction_read_only')").
				Scan(&isolation, &readOnly)
		})
		s.Require().NoError(err)
		s.Equal("repeatable read", isolation)
		s.Equal("on", readOnly)
	})

	s.Run("write is rejected", func() {
		err := WithSnapshot(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "CREATE TABLE _test_table_read_only (id SERIAL PRIMARY KEY)")
			return err
		})
		var pgErr *pgconn.PgError
		s.Require().True(errors.As(err, &pgErr))
		// read_only_sql_transaction
		s.Equal("25006", pgErr.Code)
	})

	s.Run("error", func() {
		errExpected := errors.New("some error")
		err := WithSnapshot(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
			return errExpected
		})
		s.Require().ErrorIs(err, errExpected)

		// connection is usable after rollback
		var one int
		s.Require().NoError(conn.QueryRow(ctx, "SELECT 1").Scan(&one))
	})
}
