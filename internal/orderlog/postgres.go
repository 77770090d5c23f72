package orderlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the order_log table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS order_log (
    id             TEXT PRIMARY KEY,
    order_id       TEXT NOT NULL DEFAULT '',
    customer_name  TEXT NOT NULL DEFAULT '',
    customer_phone TEXT NOT NULL DEFAULT '',
    order_type     TEXT NOT NULL DEFAULT '',
    success        BOOLEAN NOT NULL DEFAULT false,
    total          DOUBLE PRECISION NOT NULL DEFAULT 0,
    errors         JSONB NOT NULL DEFAULT '[]',
    warnings       JSONB NOT NULL DEFAULT '[]',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_order_log_phone ON order_log(customer_phone);
CREATE INDEX IF NOT EXISTS idx_order_log_created ON order_log(created_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] on the given connection or
// pool. Call [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("orderlog: migrate: %w", err)
	}
	return nil
}

// Record implements [Store.Record].
func (s *PostgresStore) Record(ctx context.Context, entry Entry) (Entry, error) {
	id, err := generateID()
	if err != nil {
		return Entry{}, fmt.Errorf("orderlog: generate id: %w", err)
	}
	entry.ID = id

	errorsJSON, err := json.Marshal(emptySlice(entry.Errors))
	if err != nil {
		return Entry{}, fmt.Errorf("orderlog: marshal errors: %w", err)
	}
	warningsJSON, err := json.Marshal(emptySlice(entry.Warnings))
	if err != nil {
		return Entry{}, fmt.Errorf("orderlog: marshal warnings: %w", err)
	}

	const query = `
		INSERT INTO order_log (
			id, order_id, customer_name, customer_phone, order_type,
			success, total, errors, warnings
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`

	err = s.db.QueryRow(ctx, query,
		entry.ID, entry.OrderID, entry.CustomerName, entry.CustomerPhone,
		entry.OrderType, entry.Success, entry.Total, errorsJSON, warningsJSON,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("orderlog: record: %w", err)
	}
	return entry, nil
}

// Get implements [Store.Get].
func (s *PostgresStore) Get(ctx context.Context, id string) (Entry, error) {
	const query = `
		SELECT id, order_id, customer_name, customer_phone, order_type,
		       success, total, errors, warnings, created_at
		FROM order_log WHERE id = $1`

	e, err := scanEntry(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("orderlog: get %q: %w", id, err)
	}
	return e, nil
}

// List implements [Store.List].
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `
		SELECT id, order_id, customer_name, customer_phone, order_type,
		       success, total, errors, warnings, created_at
		FROM order_log`
	var args []any
	if opts.Phone != "" {
		query += ` WHERE customer_phone = $1`
		args = append(args, opts.Phone)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orderlog: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("orderlog: list: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orderlog: list: %w", err)
	}
	return out, nil
}

// scanEntry reads one order_log row.
func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var errorsJSON, warningsJSON []byte
	err := row.Scan(
		&e.ID, &e.OrderID, &e.CustomerName, &e.CustomerPhone, &e.OrderType,
		&e.Success, &e.Total, &errorsJSON, &warningsJSON, &e.CreatedAt,
	)
	if err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal(errorsJSON, &e.Errors); err != nil {
		return Entry{}, fmt.Errorf("unmarshal errors: %w", err)
	}
	if err := json.Unmarshal(warningsJSON, &e.Warnings); err != nil {
		return Entry{}, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return e, nil
}

// emptySlice normalises a nil slice to an empty one so JSONB columns store
// [] rather than null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
