package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashPassword(args[0], cost)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)

			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	return cmd
}

type newUser struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func newCreateUserCommand(b backend) *cobra.Command {
	var (
		u    newUser
		cost int
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard user that can sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validator.New(validator.WithRequiredStructEnabled()).Struct(u); err != nil {
				return fmt.Errorf("invalid user: %w", err)
			}

			hash, err := hashPassword(u.Password, cost)
			if err != nil {
				return err
			}

			users, release, err := b.users(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			created, err := users.CreateUser(cmd.Context(), u.Name, u.Email, hash)
			if err != nil {
				return fmt.Errorf("creating user %s: %w", u.Email, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", created.Email, created.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&u.Name, "name", "", "display name")
	cmd.Flags().StringVar(&u.Email, "email", "", "sign-in email")
	cmd.Flags().StringVar(&u.Password, "password", "", fmt.Sprintf("password, at least %d characters", minPasswordLength))
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	return cmd
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}
