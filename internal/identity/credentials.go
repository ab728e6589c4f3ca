package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const CredentialsProviderID = "credentials"

//go:generate mockgen -source=credentials.go -destination=user_store_mock.go -package=identity
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type credentialsForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Credentials authorizes an email and password against stored bcrypt hashes.
type Credentials struct {
	users    UserStore
	validate *validator.Validate
}

func NewCredentials(users UserStore) *Credentials {
	return &Credentials{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (c *Credentials) ID() string { return CredentialsProviderID }

func (c *Credentials) Authorize(ctx context.Context, form url.Values) (*User, error) {
	creds := credentialsForm{
		Email:    form.Get("email"),
		Password: form.Get("password"),
	}

	if err := c.validate.Struct(creds); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := c.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
