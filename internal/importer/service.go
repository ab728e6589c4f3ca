package importer

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/encoding"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

type Creator interface {
	CreateInvoice(ctx context.Context, prev action.State, form url.Values) (action.Outcome, error)
}

// Rejection is a row the invoice form refused, with the messages it produced.
type Rejection struct {
	Line   int
	Errors invoice.FieldErrors
}

type Report struct {
	Charset  encoding.Charset
	Created  int
	Rejected []Rejection
}

type Service struct {
	invoices Creator
}

func NewService(invoices Creator) *Service {
	return &Service{invoices: invoices}
}

// Import creates one invoice per row through the regular create action.
// Rejected rows are reported and skipped; the first store failure stops the
// import and is returned with the report of what was already created.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Report, error) {
	rows, charset, err := Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{Charset: charset}

	for _, row := range rows {
		out, err := s.invoices.CreateInvoice(ctx, action.State{}, row.Form)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", row.Line, err)
		}

		if out.Kind == action.KindState {
			report.Rejected = append(report.Rejected, Rejection{Line: row.Line, Errors: out.State.Errors})
			continue
		}

		report.Created++
	}

	return report, nil
}
