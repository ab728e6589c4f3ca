package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

const defaultListLimit = 50

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, customer_id, amount, status, date
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var status string

	if err := s.Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &status, &inv.Date); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)

	return &inv, nil
}

func dbError(op string, err error) error {
	dbErr := &invoice.DatabaseError{Op: op, Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		dbErr.Code = pgErr.Code
	}

	return dbErr
}

func (s *Store) InsertInvoice(ctx context.Context, customerID string, amount int64, status invoice.Status, date time.Time) error {
	query := `
		INSERT INTO invoices (customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, customerID, amount, string(status), date.Format(time.DateOnly)); err != nil {
		return dbError("creating invoice", err)
	}

	return nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id, customerID string, amount int64, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4
	`

	if _, err := s.db.ExecContext(ctx, query, customerID, amount, string(status), id); err != nil {
		return dbError("updating invoice", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return dbError("deleting invoice", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = $1
	`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, dbError("getting invoice", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE $1 = '' OR customer_id::text ILIKE '%' || $1 || '%' OR status ILIKE '%' || $1 || '%'
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, query, filter.Query, limit, max(filter.Offset, 0))
	if err != nil {
		return nil, dbError("listing invoices", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, dbError("scanning invoice", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterating invoice rows", err)
	}

	return invoices, nil
}
