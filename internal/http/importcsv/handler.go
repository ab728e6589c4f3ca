package importcsv

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/importer"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

const maxUploadBytes = 10 << 20

type Importer interface {
	Import(ctx context.Context, r io.Reader) (*importer.Report, error)
}

type Handler struct {
	importSvc Importer
}

func NewHandler(importSvc Importer) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importCSV)
}

type rejectionResponse struct {
	Line   int                 `json:"line"`
	Errors invoice.FieldErrors `json:"errors"`
}

type reportResponse struct {
	Charset  string              `json:"charset"`
	Created  int                 `json:"created"`
	Rejected []rejectionResponse `json:"rejected"`
	Error    string              `json:"error,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	report, err := h.importSvc.Import(r.Context(), file)
	if err != nil && report == nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := toReportResponse(report)
	status := http.StatusOK

	if err != nil {
		slog.ErrorContext(r.Context(), "invoice import stopped", "created", report.Created, "error", err)

		status = http.StatusInternalServerError
		resp.Error = err.Error()

		var fatal *action.FatalError
		if errors.As(err, &fatal) {
			resp.Error = fatal.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func toReportResponse(report *importer.Report) reportResponse {
	resp := reportResponse{
		Charset:  string(report.Charset),
		Created:  report.Created,
		Rejected: make([]rejectionResponse, 0, len(report.Rejected)),
	}

	for _, rej := range report.Rejected {
		resp.Rejected = append(resp.Rejected, rejectionResponse{Line: rej.Line, Errors: rej.Errors})
	}

	return resp
}
