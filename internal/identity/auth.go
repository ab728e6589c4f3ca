package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "dashboard_session"
	LoginPath         = "/login"
	DashboardPath     = "/dashboard/invoices"
)

// Claims is the payload of a session token. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Auth struct {
	providers    map[string]Provider
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

type Option func(*Auth)

func WithClock(now func() time.Time) Option {
	return func(a *Auth) { a.now = now }
}

func WithSecureCookie(secure bool) Option {
	return func(a *Auth) { a.secureCookie = secure }
}

func New(secret []byte, ttl time.Duration, providers []Provider, opts ...Option) *Auth {
	a := &Auth{
		providers: make(map[string]Provider, len(providers)),
		secret:    secret,
		ttl:       ttl,
		now:       time.Now,
	}

	for _, p := range providers {
		a.providers[p.ID()] = p
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// SignIn authorizes form with the named provider and issues a session token.
func (a *Auth) SignIn(ctx context.Context, providerID string, form url.Values) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	provider, ok := a.providers[providerID]
	if !ok {
		return nil, &Error{Type: InvalidProvider, Err: fmt.Errorf("unknown provider %q", providerID)}
	}

	user, err := provider.Authorize(ctx, form)
	if err != nil && !errors.Is(err, ErrInvalidCredentials) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, &Error{Type: CallbackRouteError, Err: err}
	}

	if user == nil {
		return nil, &Error{Type: CredentialsSignin}
	}

	expiresAt := a.now().Add(a.ttl)

	token, err := a.issue(user, expiresAt)
	if err != nil {
		return nil, &Error{Type: JWTSessionError, Err: err}
	}

	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (a *Auth) issue(user *User, expiresAt time.Time) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("signing secret is empty")
	}

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(a.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return signed, nil
}

// Verify parses a session token and returns its claims.
func (a *Auth) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, &Error{Type: JWTSessionError, Err: err}
	}

	if claims.Subject == "" {
		return nil, &Error{Type: JWTSessionError, Err: errors.New("session token has no subject")}
	}

	return claims, nil
}

func (a *Auth) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) sessionFrom(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return a.Verify(cookie.Value)
}

// Protect sends requests without a valid session to the login page and
// attaches the session claims to the context of the rest.
func (a *Auth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.sessionFrom(r)
		if err != nil {
			target := LoginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RedirectIfAuthenticated sends signed-in users away from the login page.
func (a *Auth) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.sessionFrom(r); err == nil {
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
