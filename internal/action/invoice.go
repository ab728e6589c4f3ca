package action

import (
	"context"
	"net/url"
	"time"

	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
	"github.com/MrJamesThe3rd/dashboard/internal/metrics"
)

func (a *Actions) CreateInvoice(ctx context.Context, _ State, form url.Values) (Outcome, error) {
	const name = "create_invoice"

	fields, errs := invoice.CreateInvoice.SafeParse(form)
	if errs != nil {
		a.metrics.Action(name, metrics.ResultInvalid)
		return Rerender(State{Errors: errs, Message: invoice.CreateInvoice.FailureMessage()}), nil
	}

	date := a.now().UTC()
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if err := a.invoices.InsertInvoice(ctx, fields.CustomerID, fields.MinorUnits(), fields.Status, date); err != nil {
		a.log.ErrorContext(ctx, "failed to create invoice", "error", err)
		a.metrics.Action(name, metrics.ResultError)

		return Outcome{}, &FatalError{Message: "Database Error: Failed to Create Invoice.", Err: err}
	}

	a.revalidate(ctx, "dashboard/invoices")
	a.metrics.Action(name, metrics.ResultSuccess)

	return Redirect(InvoicesPath), nil
}

func (a *Actions) UpdateInvoice(ctx context.Context, id string, _ State, form url.Values) (Outcome, error) {
	const name = "update_invoice"

	fields, errs := invoice.UpdateInvoice.SafeParse(form)
	if errs != nil {
		a.metrics.Action(name, metrics.ResultInvalid)
		return Rerender(State{Errors: errs, Message: invoice.UpdateInvoice.FailureMessage()}), nil
	}

	if err := a.invoices.UpdateInvoice(ctx, id, fields.CustomerID, fields.MinorUnits(), fields.Status); err != nil {
		a.log.ErrorContext(ctx, "failed to update invoice", "id", id, "error", err)
		a.metrics.Action(name, metrics.ResultError)

		return Outcome{}, &FatalError{Message: "Database Error: Failed to Update Invoice.", Err: err}
	}

	a.revalidate(ctx, InvoicesPath)
	a.metrics.Action(name, metrics.ResultSuccess)

	return Redirect(InvoicesPath), nil
}

// DeleteInvoice removes the invoice and refreshes the listing in place.
// Store errors are returned as they are.
func (a *Actions) DeleteInvoice(ctx context.Context, id string) error {
	const name = "delete_invoice"

	if err := a.invoices.DeleteInvoice(ctx, id); err != nil {
		a.metrics.Action(name, metrics.ResultError)
		return err
	}

	a.revalidate(ctx, InvoicesPath)
	a.metrics.Action(name, metrics.ResultSuccess)

	return nil
}
