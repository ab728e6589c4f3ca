// Package action implements the form actions behind the invoice dashboard.
//
// Each action validates its input, performs one store operation and tells the
// caller what to render next through an Outcome. Store failures surface as
// *FatalError; validation failures are returned as State for per-field display.
package action

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/MrJamesThe3rd/dashboard/internal/identity"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
	"github.com/MrJamesThe3rd/dashboard/internal/metrics"
)

//go:generate mockgen -source=action.go -destination=action_mock.go -package=action

// Revalidator discards a previously rendered view so it is recomputed on next access.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

type SignInner interface {
	SignIn(ctx context.Context, providerID string, form url.Values) (*identity.Session, error)
}

type Actions struct {
	invoices invoice.Gateway
	pages    Revalidator
	auth     SignInner
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics.Recorder
}

type Option func(*Actions)

func WithClock(now func() time.Time) Option {
	return func(a *Actions) { a.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Actions) { a.log = log }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Actions) { a.metrics = m }
}

func New(invoices invoice.Gateway, pages Revalidator, auth SignInner, opts ...Option) *Actions {
	a := &Actions{
		invoices: invoices,
		pages:    pages,
		auth:     auth,
		now:      time.Now,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// revalidate runs after a committed mutation, so a failure is logged rather than returned.
func (a *Actions) revalidate(ctx context.Context, path string) {
	if err := a.pages.Revalidate(ctx, path); err != nil {
		a.log.WarnContext(ctx, "failed to revalidate view", "path", path, "error", err)
	}
}
