package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	id   string
	user *User
	err  error
}

func (p stubProvider) ID() string { return p.id }

func (p stubProvider) Authorize(context.Context, url.Values) (*User, error) {
	return p.user, p.err
}

var (
	testSecret = []byte("test-secret")
	testNow    = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	testUser   = &User{ID: "410544b2-4001-4271-9855-fec4b6a6442a", Name: "User", Email: "user@nextmail.com"}
)

func newTestAuth(p Provider, opts ...Option) *Auth {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(testSecret, time.Hour, []Provider{p}, opts...)
}

func TestAuth_SignIn(t *testing.T) {
	tests := []struct {
		name     string
		provider stubProvider
		id       string
		wantType ErrorType
	}{
		{
			name:     "UnknownProvider",
			provider: stubProvider{id: "credentials", user: testUser},
			id:       "github",
			wantType: InvalidProvider,
		},
		{
			name:     "RejectedCredentials",
			provider: stubProvider{id: "credentials", err: ErrInvalidCredentials},
			id:       "credentials",
			wantType: CredentialsSignin,
		},
		{
			name:     "NoUser",
			provider: stubProvider{id: "credentials"},
			id:       "credentials",
			wantType: CredentialsSignin,
		},
		{
			name:     "ProviderFailure",
			provider: stubProvider{id: "credentials", err: errors.New("database unreachable")},
			id:       "credentials",
			wantType: CallbackRouteError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := newTestAuth(tt.provider).SignIn(context.Background(), tt.id, url.Values{})

			assert.Nil(t, session)

			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantType, authErr.Type)
		})
	}
}

func TestAuth_SignIn_Success(t *testing.T) {
	a := newTestAuth(stubProvider{id: "credentials", user: testUser})

	session, err := a.SignIn(context.Background(), "credentials", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, testUser, session.User)
	assert.Equal(t, testNow.Add(time.Hour), session.ExpiresAt)

	claims, err := a.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)
	assert.Equal(t, testUser.Email, claims.Email)
}

func TestAuth_SignIn_ProviderFailureUnwraps(t *testing.T) {
	cause := errors.New("database unreachable")
	a := newTestAuth(stubProvider{id: "credentials", err: cause})

	_, err := a.SignIn(context.Background(), "credentials", url.Values{})

	assert.ErrorIs(t, err, cause)
}

func TestAuth_SignIn_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAuth(stubProvider{id: "credentials", user: testUser}).SignIn(ctx, "credentials", url.Values{})

	assert.ErrorIs(t, err, context.Canceled)

	var authErr *Error
	assert.False(t, errors.As(err, &authErr))
}

func TestAuth_SignIn_EmptySecret(t *testing.T) {
	a := New(nil, time.Hour, []Provider{stubProvider{id: "credentials", user: testUser}})

	_, err := a.SignIn(context.Background(), "credentials", url.Values{})

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, JWTSessionError, authErr.Type)
}

func TestAuth_Verify(t *testing.T) {
	a := newTestAuth(stubProvider{id: "credentials", user: testUser})

	session, err := a.SignIn(context.Background(), "credentials", url.Values{})
	require.NoError(t, err)

	t.Run("Expired", func(t *testing.T) {
		later := New(testSecret, time.Hour, nil, WithClock(func() time.Time { return testNow.Add(2 * time.Hour) }))

		_, err := later.Verify(session.Token)
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := New([]byte("another-secret"), time.Hour, nil, WithClock(func() time.Time { return testNow }))

		_, err := other.Verify(session.Token)
		assert.Error(t, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := a.Verify("not.a.token")
		assert.Error(t, err)
	})
}

func TestAuth_Cookies(t *testing.T) {
	a := newTestAuth(stubProvider{id: "credentials", user: testUser}, WithSecureCookie(true))

	rec := httptest.NewRecorder()
	a.SetCookie(rec, &Session{Token: "tok", ExpiresAt: testNow.Add(time.Hour)})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	a.ClearCookie(rec)

	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuth_Protect(t *testing.T) {
	a := newTestAuth(stubProvider{id: "credentials", user: testUser})

	session, err := a.SignIn(context.Background(), "credentials", url.Values{})
	require.NoError(t, err)

	var seen *Claims

	handler := a.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("NoSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?callbackUrl=%2Fdashboard%2Finvoices", rec.Header().Get("Location"))
	})

	t.Run("ValidSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})

		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, testUser.ID, seen.Subject)
	})
}

func TestAuth_RedirectIfAuthenticated(t *testing.T) {
	a := newTestAuth(stubProvider{id: "credentials", user: testUser})

	session, err := a.SignIn(context.Background(), "credentials", url.Values{})
	require.NoError(t, err)

	handler := a.RedirectIfAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
}

func TestUserFromContext_Empty(t *testing.T) {
	_, err := UserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOK   bool
	}{
		{name: "Direct", err: &Error{Type: CredentialsSignin}, wantType: CredentialsSignin, wantOK: true},
		{name: "Wrapped", err: fmt.Errorf("signing in: %w", &Error{Type: CallbackRouteError}), wantType: CallbackRouteError, wantOK: true},
		{name: "Joined", err: errors.Join(errors.New("other"), &Error{Type: JWTSessionError}), wantType: JWTSessionError, wantOK: true},
		{name: "Foreign", err: context.Canceled},
		{name: "Nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeOf(tt.err)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, got)
		})
	}
}
