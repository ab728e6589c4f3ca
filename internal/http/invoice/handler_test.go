package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/cache"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

const invoiceID = "cc27c14a-0acf-4f4a-a6c9-d45682c144b9"

// memPages is an in-memory page cache sharing the production key scheme.
type memPages struct {
	mu    sync.Mutex
	pages map[string][]byte
}

func newMemPages() *memPages {
	return &memPages{pages: map[string][]byte{}}
}

func (m *memPages) Get(_ context.Context, p string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	body, ok := m.pages[cache.Key(p)]

	return body, ok, nil
}

func (m *memPages) Set(_ context.Context, p string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pages[cache.Key(p)] = body

	return nil
}

func (m *memPages) Revalidate(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pages, cache.Key(p))

	return nil
}

func (m *memPages) cached(p string) bool {
	_, ok, _ := m.Get(context.Background(), p)
	return ok
}

type fixture struct {
	router  http.Handler
	gateway *invoice.MockGateway
	reader  *invoice.MockReader
	pages   *memPages
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		gateway: invoice.NewMockGateway(ctrl),
		reader:  invoice.NewMockReader(ctrl),
		pages:   newMemPages(),
	}

	actions := action.New(f.gateway, f.pages, nil,
		action.WithLogger(slog.New(slog.DiscardHandler)),
		action.WithClock(func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }),
	)

	router := chi.NewRouter()
	router.Route("/dashboard/invoices", NewHandler(actions, f.reader, f.pages).Routes)
	f.router = router

	return f
}

func (f fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request

	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func validForm() url.Values {
	return url.Values{"customerId": {"c1"}, "amount": {"10.50"}, "status": {"pending"}}
}

func sampleInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:         invoiceID,
		CustomerID: "3958dc9e-712f-4377-85e9-fec4b6a6442a",
		Amount:     15795,
		Status:     invoice.StatusPending,
		Date:       time.Date(2022, 12, 6, 0, 0, 0, 0, time.UTC),
	}
}

func TestList_ReadThroughCache(t *testing.T) {
	f := newFixture(t)

	f.reader.EXPECT().
		ListInvoices(gomock.Any(), invoice.ListFilter{Limit: itemsPerPage}).
		Return([]*invoice.Invoice{sampleInvoice()}, nil).
		Times(1)

	first := f.do(http.MethodGet, "/dashboard/invoices", nil)
	require.Equal(t, http.StatusOK, first.Code)

	var got []invoiceResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2022-12-06", got[0].Date)
	assert.Equal(t, int64(15795), got[0].Amount)

	second := f.do(http.MethodGet, "/dashboard/invoices", nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestList_FilteredIsNotCached(t *testing.T) {
	f := newFixture(t)

	f.reader.EXPECT().
		ListInvoices(gomock.Any(), invoice.ListFilter{Query: "paid", Limit: itemsPerPage, Offset: itemsPerPage}).
		Return(nil, nil)

	rec := f.do(http.MethodGet, "/dashboard/invoices?query=paid&page=2", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.False(t, f.pages.cached("/dashboard/invoices"))
}

func TestList_StoreFailure(t *testing.T) {
	f := newFixture(t)

	f.reader.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	rec := f.do(http.MethodGet, "/dashboard/invoices", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, f.pages.cached("/dashboard/invoices"))
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		setup      func(f fixture)
		wantStatus int
	}{
		{
			name: "Found",
			id:   invoiceID,
			setup: func(f fixture) {
				f.reader.EXPECT().GetInvoice(gomock.Any(), invoiceID).Return(sampleInvoice(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Missing",
			id:   invoiceID,
			setup: func(f fixture) {
				f.reader.EXPECT().GetInvoice(gomock.Any(), invoiceID).Return(nil, invoice.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "MalformedID",
			id:         "inv-1",
			wantStatus: http.StatusNotFound,
		},
		{
			name: "StoreFailure",
			id:   invoiceID,
			setup: func(f fixture) {
				f.reader.EXPECT().GetInvoice(gomock.Any(), invoiceID).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			rec := f.do(http.MethodGet, "/dashboard/invoices/"+tt.id, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCreate_RedirectsAndRevalidates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pages.Set(context.Background(), "/dashboard/invoices", []byte(`[]`)))

	f.gateway.EXPECT().
		InsertInvoice(gomock.Any(), "c1", int64(1050), invoice.StatusPending, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)).
		Return(nil)

	rec := f.do(http.MethodPost, "/dashboard/invoices", validForm())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/invoices", rec.Header().Get("Location"))
	assert.False(t, f.pages.cached("/dashboard/invoices"))
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture(t)

	form := validForm()
	form.Set("amount", "0")

	rec := f.do(http.MethodPost, "/dashboard/invoices", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{
		"errors": {"amount": ["Please enter an amount greater than $0."]},
		"message": "Missing Fields. Failed to Create Invoice."
	}`, rec.Body.String())
}

func TestCreate_StoreFailureRendersErrorBoundary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pages.Set(context.Background(), "/dashboard/invoices", []byte(`[]`)))

	f.gateway.EXPECT().InsertInvoice(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&invoice.DatabaseError{Op: "creating invoice", Err: errors.New("down")})

	rec := f.do(http.MethodPost, "/dashboard/invoices", validForm())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Database Error: Failed to Create Invoice."}`, rec.Body.String())
	assert.True(t, f.pages.cached("/dashboard/invoices"))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().UpdateInvoice(gomock.Any(), invoiceID, "c2", int64(2000), invoice.StatusPaid).Return(nil)

	rec := f.do(http.MethodPost, "/dashboard/invoices/"+invoiceID,
		url.Values{"customerId": {"c2"}, "amount": {"20"}, "status": {"paid"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/invoices", rec.Header().Get("Location"))
}

func TestUpdate_MalformedID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/dashboard/invoices/not-a-uuid", validForm())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	for _, tc := range []struct{ method, target string }{
		{http.MethodDelete, "/dashboard/invoices/" + invoiceID},
		{http.MethodPost, "/dashboard/invoices/" + invoiceID + "/delete"},
	} {
		t.Run(tc.method, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.pages.Set(context.Background(), "/dashboard/invoices", []byte(`[]`)))

			f.gateway.EXPECT().DeleteInvoice(gomock.Any(), invoiceID).Return(nil).Times(1)

			rec := f.do(tc.method, tc.target, nil)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.False(t, f.pages.cached("/dashboard/invoices"))
		})
	}
}

func TestDelete_StoreFailure(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().DeleteInvoice(gomock.Any(), invoiceID).Return(&invoice.DatabaseError{Op: "deleting invoice", Err: errors.New("down")})

	rec := f.do(http.MethodDelete, "/dashboard/invoices/"+invoiceID, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
