package introspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greenmaskio/pgexplode/internal/utils/testutils"
)

var migrationUp = `
	CREATE SCHEMA shop;
	CREATE SCHEMA other;

	CREATE TABLE other.warehouse (
		id SERIAL PRIMARY KEY
	);

	CREATE TABLE shop.customer (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE shop."order" (
		id SERIAL PRIMARY KEY,
		customer_id INT NOT NULL REFERENCES shop.customer (id),
		referrer_id INT REFERENCES shop.customer (id),
		warehouse_id INT REFERENCES other.warehouse (id)
	);

	CREATE TABLE shop.shipment (
		order_id INT NOT NULL,
		seq INT NOT NULL,
		PRIMARY KEY (seq, order_id),
		CONSTRAINT shipment_order_fk FOREIGN KEY (order_id) REFERENCES shop."order" (id)
	);

	CREATE TABLE shop.parcel (
		id SERIAL PRIMARY KEY,
		shipment_order_id INT NOT NULL,
		shipment_seq INT NOT NULL,
		CONSTRAINT parcel_shipment_fk FOREIGN KEY (shipment_seq, shipment_order_id)
			REFERENCES shop.shipment (seq, order_id)
	);

	CREATE TABLE shop.audit_log (
		message TEXT
	);

	CREATE VIEW shop.customer_view AS SELECT * FROM shop.customer;
`

var migrationDown = `
	DROP SCHEMA shop CASCADE;
	DROP SCHEMA other CASCADE;
`

type introspectorSuite struct {
	testutils.PgContainerSuite
}

func (s *introspectorSuite) SetupSuite() {
	s.SetMigrationUp(migrationUp).
		SetMigrationDown(migrationDown)
	s.PgContainerSuite.SetupSuite()
}

func (s *introspectorSuite) TestGetTables() {
	ctx := context.Background()
	conn, err := s.GetConnection(ctx)
	s.Require().NoError(err)
	defer conn.Close(ctx)

	tables, err := NewIntrospector(conn, "shop").GetTables(ctx)
	s.Require().NoError(err)

	expected := []TableRow{
		{Name: "customer", PrimaryKey: []string{"id"}},
		{Name: "order", PrimaryKey: []string{"id"}},
		{Name: "parcel", PrimaryKey: []string{"id"}},
		{Name: "shipment", PrimaryKey: []string{"seq", "order_id"}},
	}
	s.Equal(expected, tables)
}

func (s *introspectorSuite) TestGetForeignKeys() {
	ctx := context.Background()
	conn, err := s.GetConnection(ctx)
	s.Require().NoError(err)
	defer conn.Close(ctx)

	fks, err := NewIntrospector(conn, "shop").GetForeignKeys(ctx)
	s.Require().NoError(err)

	expected := []ForeignKeyRow{
		{
			ConstraintName:    "order_customer_id_fkey",
			TableName:         "order",
			ColumnName:        "customer_id",
			ForeignTableName:  "customer",
			ForeignColumnName: "id",
			IsNullable:        false,
		},
		{
			ConstraintName:    "order_referrer_id_fkey",
			TableName:         "order",
			ColumnName:        "referrer_id",
			ForeignTableName:  "customer",
			ForeignColumnName: "id",
			IsNullable:        true,
		},
		{
			ConstraintName:    "parcel_shipment_fk",
			TableName:         "parcel",
			ColumnName:        "shipment_seq",
			ForeignTableName:  "shipment",
			ForeignColumnName: "seq",
			IsNullable:        false,
		},
		{
			ConstraintName:    "parcel_shipment_fk",
			TableName:         "parcel",
			ColumnName:        "shipment_order_id",
			ForeignTableName:  "shipment",
			ForeignColumnName: "order_id",
			IsNullable:        false,
		},
		{
			ConstraintName:    "shipment_order_fk",
			TableName:         "shipment",
			ColumnName:        "order_id",
			ForeignTableName:  "order",
			ForeignColumnName: "id",
			IsNullable:        false,
		},
	}
	s.Equal(expected, fks)
}

func TestIntrospector(t *testing.T) {
	suite.Run(t, new(introspectorSuite))
}
