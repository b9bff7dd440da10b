package replicate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/introspect"
	"github.com/greenmaskio/pgexplode/internal/db/postgres/subset"
)

type connMock struct {
	mock.Mock
}

func (c *connMock) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	res := c.Called(sql, args)
	return res.Get(0).(pgconn.CommandTag), res.Error(1)
}

func (c *connMock) statements() []string {
	var res []string
	for _, call := range c.Calls {
		res = append(res, call.Arguments.String(0))
	}
	return res
}

func isInsert(sql string) bool {
	return strings.HasPrefix(sql, "INSERT")
}

func newTestReplicator(t *testing.T, conn Conn, out *bytes.Buffer) *Replicator {
	t.Helper()
	g, err := subset.NewGraph(
		[]introspect.TableRow{
			{Name: "country", PrimaryKey: []string{"id"}},
			{Name: "order", PrimaryKey: []string{"id"}},
			{Name: "order_item", PrimaryKey: []string{"id"}},
		},
		[]introspect.ForeignKeyRow{
			{
				ConstraintName: "order_country_id_fkey", TableName: "order", ColumnName: "country_id",
				ForeignTableName: "country", ForeignColumnName: "id",
			},
			{
				ConstraintName: "order_item_order_id_fkey", TableName: "order_item", ColumnName: "order_id",
				ForeignTableName: "order", ForeignColumnName: "id",
			},
		},
		nil,
	)
	require.NoError(t, err)
	seq, err := subset.NewSequencer(g, "public", "order")
	require.NoError(t, err)
	namer, err := NewSchemaNamer("order", "id", "", "{{ .Table }}_{{ .PK }}")
	require.NoError(t, err)
	return NewReplicator(conn, g, seq, namer, "public", NewConsoleReporter(out))
}

func TestReplicator_Replicate(t *testing.T) {
	conn := &connMock{}
	conn.On("Exec", mock.MatchedBy(isInsert), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 3"), nil)
	conn.On("Exec", mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag(""), nil)

	out := bytes.NewBuffer(nil)
	r := newTestReplicator(t, conn, out)

	res, err := r.Replicate(context.Background(), RootRow{"id": int64(42), "country_id": int64(1)})
	require.NoError(t, err)

	expected := []string{
		`DROP SCHEMA IF EXISTS "order_42" CASCADE`,
		`CREATE SCHEMA "order_42"`,
		`CREATE TABLE "order_42"."country" (LIKE "public"."country" INCLUDING ALL)`,
		`INSERT INTO "order_42"."country" (SELECT * FROM "public"."country")`,
		`CREATE TABLE "order_42"."order" (LIKE "public"."order" INCLUDING ALL)`,
		`INSERT INTO "order_42"."order" (SELECT * FROM "public"."order" WHERE "public"."order"."id" = $1)`,
		`CREATE TABLE "order_42"."order_item" (LIKE "public"."order_item" INCLUDING ALL)`,
		`INSERT INTO "order_42"."order_item" (SELECT "public"."order_item".* FROM "public"."order_item" ` +
			`JOIN "public"."order" ON "public"."order_item"."order_id" = "public"."order"."id" ` +
			`WHERE "public"."order"."id" = $1)`,
		`ALTER TABLE "order_42"."order" ADD CONSTRAINT "order_country_id_fkey" ` +
			`FOREIGN KEY ("country_id") REFERENCES "order_42"."country" ("id")`,
		`ALTER TABLE "order_42"."order_item" ADD CONSTRAINT "order_item_order_id_fkey" ` +
			`FOREIGN KEY ("order_id") REFERENCES "order_42"."order" ("id")`,
	}
	require.Equal(t, expected, conn.statements())
	assert.Equal(t, []any{int64(42)}, conn.Calls[5].Arguments.Get(1))

	assert.Equal(t, "order_42", res.Schema)
	assert.Equal(t, []TableResult{
		{Table: "country", Rows: 3},
		{Table: "order", Rows: 3},
		{Table: "order_item", Rows: 3},
	}, res.Tables)

	assert.Equal(t,
		"+ order_42\n  ~ country: 3\n  ~ order: 3\n  ~ order_item: 3\n",
		out.String(),
	)
}

func TestReplicator_Replicate_Error(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P07", Message: "relation already exists"}
	conn := &connMock{}
	conn.On("Exec", mock.MatchedBy(func(sql string) bool {
		return strings.HasPrefix(sql, `CREATE TABLE "order_42"."order" `)
	}), mock.Anything).
		Return(pgconn.NewCommandTag(""), pgErr)
	conn.On("Exec", mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	r := newTestReplicator(t, conn, bytes.NewBuffer(nil))
	_, err := r.Replicate(context.Background(), RootRow{"id": int64(42)})
	require.Error(t, err)

	var target *pgconn.PgError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "42P07", target.Code)
	// Nothing after the failed statement is executed
	assert.Len(t, conn.Calls, 5)
}

func TestReplicator_Replicate_NullRootID(t *testing.T) {
	conn := &connMock{}
	r := newTestReplicator(t, conn, bytes.NewBuffer(nil))
	_, err := r.Replicate(context.Background(), RootRow{"id": nil})
	require.ErrorIs(t, err, errRootIDIsNull)
	conn.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything)
}

func TestReplicator_Replicate_DestinationIsSource(t *testing.T) {
	conn := &connMock{}
	r := newTestReplicator(t, conn, bytes.NewBuffer(nil))
	namer, err := NewSchemaNamer("order", "id", "slug", "")
	require.NoError(t, err)
	r.namer = namer

	_, err = r.Replicate(context.Background(), RootRow{"id": int64(1), "slug": "public"})
	require.ErrorIs(t, err, errDestinationIsSource)
	conn.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything)

	_, err = r.Plan(RootRow{"id": int64(1), "slug": "public"})
	require.ErrorIs(t, err, errDestinationIsSource)
}

func TestReplicator_Plan(t *testing.T) {
	conn := &connMock{}
	r := newTestReplicator(t, conn, bytes.NewBuffer(nil))

	plan, err := r.Plan(RootRow{"id": int64(42)})
	require.NoError(t, err)
	conn.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything)

	assert.Equal(t, "order_42", plan.Schema)
	assert.Equal(t, int64(42), plan.RootID)
	require.Len(t, plan.Tables, 3)
	assert.Equal(t, PlanTable{
		Table: "country",
		Path:  "<none>",
		Query: `SELECT * FROM "public"."country"`,
	}, plan.Tables[0])
	assert.Equal(t, PlanTable{
		Table: "order",
		Path:  "<root>",
		Query: `SELECT * FROM "public"."order" WHERE "public"."order"."id" = 42`,
	}, plan.Tables[1])
	assert.Equal(t, "order_id -> order.id", plan.Tables[2].Path)
}
