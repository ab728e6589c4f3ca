package action

import (
	"context"
	"net/url"

	"github.com/MrJamesThe3rd/dashboard/internal/identity"
	"github.com/MrJamesThe3rd/dashboard/internal/metrics"
)

// LoginResult carries either a user-facing failure message or the new session.
type LoginResult struct {
	Message string
	Session *identity.Session
}

// Authenticate signs in with the credentials provider. Known identity
// failures become a message; any other error is returned unchanged.
func (a *Actions) Authenticate(ctx context.Context, _ string, form url.Values) (LoginResult, error) {
	const name = "authenticate"

	session, err := a.auth.SignIn(ctx, identity.CredentialsProviderID, form)
	if err == nil {
		a.metrics.Action(name, metrics.ResultSuccess)
		return LoginResult{Session: session}, nil
	}

	kind, ok := identity.TypeOf(err)
	if !ok {
		a.metrics.Action(name, metrics.ResultError)
		return LoginResult{}, err
	}

	a.metrics.Action(name, metrics.ResultRejected)

	switch kind {
	case identity.CredentialsSignin:
		return LoginResult{Message: "Invalid credentials."}, nil
	default:
		return LoginResult{Message: "Something went wrong."}, nil
	}
}
