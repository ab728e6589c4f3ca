package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/dashboard/internal/identity"
)

type fakeUsers struct {
	created []*identity.User
	err     error
}

func (f *fakeUsers) CreateUser(_ context.Context, name, email, hash string) (*identity.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	u := &identity.User{ID: "410544b2-4001-4271-9855-fec4b6a6442a", Name: name, Email: email, PasswordHash: hash}
	f.created = append(f.created, u)

	return u, nil
}

func opener(users *fakeUsers) backend {
	return backend{
		users: func(context.Context) (userCreator, func(), error) {
			return users, func() {}, nil
		},
	}
}

func run(t *testing.T, b backend, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand(b)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return buf.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, backend{}, "hash-password", "--cost", "4", "123456")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("123456")))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := run(t, backend{}, "hash-password", "12345")
	assert.ErrorContains(t, err, "at least 6 characters")
}

func TestCreateUser(t *testing.T) {
	users := &fakeUsers{}

	out, err := run(t, opener(users), "create-user",
		"--name", "User", "--email", "user@nextmail.com", "--password", "123456", "--cost", "4")
	require.NoError(t, err)

	require.Len(t, users.created, 1)
	assert.Equal(t, "user@nextmail.com", users.created[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created[0].PasswordHash), []byte("123456")))
	assert.Contains(t, out, "created user user@nextmail.com")
}

func TestCreateUser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "MissingName", args: []string{"--email", "user@nextmail.com", "--password", "123456"}},
		{name: "BadEmail", args: []string{"--name", "User", "--email", "user", "--password", "123456"}},
		{name: "ShortPassword", args: []string{"--name", "User", "--email", "user@nextmail.com", "--password", "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{}

			_, err := run(t, opener(users), append([]string{"create-user"}, tt.args...)...)

			assert.Error(t, err)
			assert.Empty(t, users.created)
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	users := &fakeUsers{err: identity.ErrUserExists}

	_, err := run(t, opener(users), "create-user",
		"--name", "User", "--email", "user@nextmail.com", "--password", "123456", "--cost", "4")

	assert.ErrorIs(t, err, identity.ErrUserExists)
}
