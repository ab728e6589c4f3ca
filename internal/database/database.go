package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

type Option func(*pool)

// WithPool sizes the connection pool. Non-positive values keep the defaults.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(p *pool) {
		if maxOpen > 0 {
			p.maxOpen = maxOpen
		}

		if maxIdle > 0 {
			p.maxIdle = maxIdle
		}

		if maxLifetime > 0 {
			p.maxLifetime = maxLifetime
		}
	}
}

// New opens a pgx-backed pool and verifies it with a ping bounded by ctx.
func New(ctx context.Context, connStr string, opts ...Option) (*sql.DB, error) {
	db, err := open(connStr, opts...)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func open(connStr string, opts ...Option) (*sql.DB, error) {
	p := pool{maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute}
	for _, opt := range opts {
		opt(&p)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(min(p.maxIdle, p.maxOpen))
	db.SetConnMaxLifetime(p.maxLifetime)

	return db, nil
}
