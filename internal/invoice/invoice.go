package invoice

import (
	"context"
	"time"
)

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Invoice is a single billable record for a customer.
type Invoice struct {
	ID         string
	CustomerID string
	Amount     int64 // Amount in cents
	Status     Status
	Date       time.Time
}

//go:generate mockgen -source=invoice.go -destination=gateway_mock.go -package=invoice

// Gateway executes the single-statement writes behind the invoice actions.
// Implementations return *DatabaseError on any store failure.
type Gateway interface {
	InsertInvoice(ctx context.Context, customerID string, amount int64, status Status, date time.Time) error
	UpdateInvoice(ctx context.Context, id, customerID string, amount int64, status Status) error
	DeleteInvoice(ctx context.Context, id string) error
}

// Reader serves the listing and edit pages.
type Reader interface {
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
}

type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}
