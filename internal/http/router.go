package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/MrJamesThe3rd/dashboard/internal/http/importcsv"
	"github.com/MrJamesThe3rd/dashboard/internal/http/invoice"
	"github.com/MrJamesThe3rd/dashboard/internal/http/login"
	"github.com/MrJamesThe3rd/dashboard/internal/identity"
)

type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Timeout            time.Duration
	IsDevelopment      bool
}

func New(
	opts Options,
	auth *identity.Auth,
	invoicesV1 *invoice.Handler,
	importV1 *importcsv.Handler,
	loginV1 *login.Handler,
	health http.Handler,
	metrics http.Handler,
) http.Handler {
	sec := secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         opts.IsDevelopment,
	})

	router := chi.NewRouter()

	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		httprate.LimitByIP(max(opts.RateLimitPerMinute, 1), time.Minute),
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		sec.Handler,
	)

	router.Get("/health", health.ServeHTTP)
	router.Handle("/metrics", metrics)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, identity.DashboardPath, http.StatusSeeOther)
	})

	loginV1.Routes(router)

	router.Route("/dashboard/invoices", func(r chi.Router) {
		r.Use(auth.Protect)

		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		invoicesV1.Routes(r)
		importV1.Routes(r)
	})

	return router
}
