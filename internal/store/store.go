package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone_number  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'new',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_phone_number_key UNIQUE (phone_number)
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id                  UUID PRIMARY KEY,
		store_name          TEXT NOT NULL,
		owner_id            UUID NOT NULL REFERENCES users(id),
		contact_number      TEXT NOT NULL,
		email               TEXT,
		address             JSONB NOT NULL,
		geolocation         JSONB NOT NULL DEFAULT '{"type":"Point","coordinates":[]}',
		gstin               TEXT,
		fssai_license       TEXT,
		document_uploads    JSONB NOT NULL DEFAULT '[]',
		onboarding_status   TEXT NOT NULL DEFAULT 'Pending',
		bank_details        JSONB NOT NULL DEFAULT '{}',
		operating_hours     JSONB NOT NULL DEFAULT '[]',
		is_accepting_orders BOOLEAN NOT NULL DEFAULT FALSE,
		onboarded_by        UUID NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT stores_contact_number_key UNIQUE (contact_number),
		CONSTRAINT stores_email_key UNIQUE (email),
		CONSTRAINT stores_gstin_key UNIQUE (gstin),
		CONSTRAINT stores_fssai_license_key UNIQUE (fssai_license)
	)`,
	`CREATE INDEX IF NOT EXISTS stores_owner_id_idx ON stores (owner_id)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		store_id    UUID NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url   TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		category    TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS products_store_id_idx ON products (store_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             UUID PRIMARY KEY,
		order_id       TEXT NOT NULL,
		store_id       UUID NOT NULL REFERENCES stores(id),
		customer       JSONB NOT NULL,
		items          JSONB NOT NULL,
		total_amount   NUMERIC(12,2) NOT NULL,
		payment_status JSONB NOT NULL,
		order_status   TEXT NOT NULL,
		order_progress JSONB NOT NULL DEFAULT '[]',
		comments       JSONB NOT NULL DEFAULT '[]',
		issues         JSONB NOT NULL DEFAULT '[]',
		refund_summary JSONB NOT NULL DEFAULT '{}',
		complaint_id   TEXT,
		accepted_at    TIMESTAMPTZ,
		prepared_at    TIMESTAMPTZ,
		picked_up_at   TIMESTAMPTZ,
		delivered_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT orders_order_id_key UNIQUE (order_id)
	)`,
	`CREATE INDEX IF NOT EXISTS orders_store_created_idx ON orders (store_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (order_status)`,
	`CREATE TABLE IF NOT EXISTS processed_events (
		event_id     TEXT PRIMARY KEY,
		event_type   TEXT NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// conditions accumulates WHERE clauses with positional arguments. Every %d
// in a clause is replaced by the position of its argument.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "%d", fmt.Sprint(len(c.args))))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.StringArray(out)
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// list runs a count and a page query sharing the same filter.
func (s *Store) list(ctx context.Context, dest interface{}, table string, c *conditions, orderBy string, limit, offset int) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM "+table+c.where(), c.args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s LIMIT %d OFFSET %d", table, c.where(), orderBy, limit, offset)
	if err := s.db.SelectContext(ctx, dest, query, c.args...); err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return total, nil
}
