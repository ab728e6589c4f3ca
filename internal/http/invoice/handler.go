package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

const itemsPerPage = 6

// PageCache holds rendered listing bodies between revalidations.
type PageCache interface {
	Get(ctx context.Context, path string) ([]byte, bool, error)
	Set(ctx context.Context, path string, body []byte) error
}

type Handler struct {
	actions  *action.Actions
	invoices invoice.Reader
	pages    PageCache
}

func NewHandler(actions *action.Actions, invoices invoice.Reader, pages PageCache) *Handler {
	return &Handler{actions: actions, invoices: invoices, pages: pages}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	// Only the unfiltered first page is cached; it is the view mutations revalidate.
	cacheable := r.URL.RawQuery == ""

	if cacheable {
		body, ok, err := h.pages.Get(r.Context(), action.InvoicesPath)
		if err != nil {
			slog.Warn("failed to read cached listing", "error", err)
		}

		if ok {
			writeBody(w, http.StatusOK, body)
			return
		}
	}

	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	invoices, err := h.invoices.ListInvoices(r.Context(), invoice.ListFilter{
		Query:  q.Get("query"),
		Limit:  itemsPerPage,
		Offset: (page - 1) * itemsPerPage,
	})
	if err != nil {
		slog.Error("failed to list invoices", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database Error: Failed to Fetch Invoices."})

		return
	}

	body, err := json.Marshal(toResponseList(invoices))
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if cacheable {
		if err := h.pages.Set(r.Context(), action.InvoicesPath, body); err != nil {
			slog.Warn("failed to cache listing", "error", err)
		}
	}

	writeBody(w, http.StatusOK, body)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to get invoice", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database Error: Failed to Fetch Invoice."})

		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.actions.CreateInvoice(r.Context(), action.State{}, r.PostForm)
	writeOutcome(w, r, out, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.actions.UpdateInvoice(r.Context(), id, action.State{}, r.PostForm)
	writeOutcome(w, r, out, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.actions.DeleteInvoice(r.Context(), id); err != nil {
		slog.Error("failed to delete invoice", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database Error: Failed to Delete Invoice."})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the invoice id from the path. A malformed id names no
// invoice, so it is answered with 404.
func parseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return "", false
	}

	return id.String(), true
}
