package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

type invoiceResponse struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id"`
	Amount     int64          `json:"amount"`
	Status     invoice.Status `json:"status"`
	Date       string         `json:"date"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     inv.Amount,
		Status:     inv.Status,
		Date:       inv.Date.Format(time.DateOnly),
	}
}

func toResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toResponse(inv)
	}

	return resp
}

// writeOutcome renders the result of a form action: a redirect, the form
// state with field errors, or the error boundary for fatal failures.
func writeOutcome(w http.ResponseWriter, r *http.Request, out action.Outcome, err error) {
	if err != nil {
		var fatal *action.FatalError
		if errors.As(err, &fatal) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fatal.Message})
			return
		}

		slog.Error("action failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	switch out.Kind {
	case action.KindRedirect:
		http.Redirect(w, r, out.Location, http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, out.State)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
