package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/cache"
	"github.com/MrJamesThe3rd/dashboard/internal/config"
	"github.com/MrJamesThe3rd/dashboard/internal/database"
	"github.com/MrJamesThe3rd/dashboard/internal/identity"
	userStore "github.com/MrJamesThe3rd/dashboard/internal/identity/store"
	invoiceStore "github.com/MrJamesThe3rd/dashboard/internal/invoice/store"
)

type userCreator interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*identity.User, error)
}

type invoiceCreator interface {
	CreateInvoice(ctx context.Context, prev action.State, form url.Values) (action.Outcome, error)
}

// backend opens the stores a command needs. Each open func returns a func
// releasing what it acquired.
type backend struct {
	users    func(ctx context.Context) (userCreator, func(), error)
	invoices func(ctx context.Context) (invoiceCreator, func(), error)
}

func defaultBackend() backend {
	return backend{
		users: func(ctx context.Context) (userCreator, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}

			db, err := database.New(ctx, cfg.ConnectionString(),
				database.WithPool(cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime))
			if err != nil {
				return nil, nil, fmt.Errorf("connecting to database: %w", err)
			}

			return userStore.New(db), func() { db.Close() }, nil
		},
		invoices: func(ctx context.Context) (invoiceCreator, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}

			db, err := database.New(ctx, cfg.ConnectionString(),
				database.WithPool(cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime))
			if err != nil {
				return nil, nil, fmt.Errorf("connecting to database: %w", err)
			}

			rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
			if err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("connecting to redis: %w", err)
			}

			actions := action.New(
				invoiceStore.New(db),
				cache.NewPageCache(rdb, cfg.Redis.PageTTL),
				nil,
				action.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
			)

			release := func() {
				rdb.Close()
				db.Close()
			}

			return actions, release, nil
		},
	}
}

func NewRootCommand(b backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dashctl",
		Short:        "Operator tasks for the invoice dashboard",
		SilenceUsage: true,
	}

	cmd.AddCommand(newHashPasswordCommand())
	cmd.AddCommand(newCreateUserCommand(b))
	cmd.AddCommand(newImportInvoicesCommand(b))

	return cmd
}
