// Package identity authenticates dashboard users and manages their sessions.
//
// Sign-in goes through a named Provider. Failures the package understands are
// reported as *Error with a Type discriminator; anything else (for example a
// cancelled request context) is returned unchanged.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrorType categorizes a sign-in failure.
type ErrorType string

const (
	// CredentialsSignin means the submitted credentials were rejected.
	CredentialsSignin ErrorType = "CredentialsSignin"
	// CallbackRouteError means the provider failed while checking credentials.
	CallbackRouteError ErrorType = "CallbackRouteError"
	InvalidProvider    ErrorType = "InvalidProvider"
	JWTSessionError    ErrorType = "JWTSessionError"
)

type Error struct {
	Type ErrorType
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}

	return string(e.Type)
}

func (e *Error) Unwrap() error { return e.Err }

// TypeOf reports the category of a sign-in failure. The second result is
// false when err is not an identity failure.
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}

	return e.Type, true
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no authenticated session")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

// Session is the result of a successful sign-in.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Provider verifies a submitted form and returns the matching user.
// Rejected credentials are reported as ErrInvalidCredentials.
type Provider interface {
	ID() string
	Authorize(ctx context.Context, form url.Values) (*User, error)
}
