// Package database centralises sqlx connection helpers for PostgreSQL.  The
// driver is pgx's database/sql adapter, which understands both DSN shapes
// config.Database renders: network host:port and Cloud SQL style socket
// directories passed as ?host=/path.
//
// Public entry points:
//
//	Open(ctx, cfg)                          – conservative pool sizes.
//	OpenWithOptions(ctx, cfg, maxOpen, maxIdle) – fine-grained control.
//	Wrap(ctx, db)                           – adopt an existing *sql.DB.
//
// All helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AdeptTravel/adept-settings/internal/config"
)

// DriverName is the database/sql driver registered by pgx/stdlib.
const DriverName = "pgx"

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, cfg, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(ctx context.Context, cfg config.Database, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", cfg.Host, cfg.Name, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s/%s: %w", cfg.Host, cfg.Name, err)
	}
	zap.S().Infow("database online",
		"host", cfg.Host,
		"db", cfg.Name,
		"socket", cfg.UsesSocket(),
	)
	return db, nil
}

// Wrap adopts an already-open handle (tests use go-sqlmock here) and pings
// it like Open does.
func Wrap(ctx context.Context, db *sql.DB) (*sqlx.DB, error) {
	x := sqlx.NewDb(db, DriverName)
	if err := ping(ctx, x); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return x, nil
}

func ping(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// ServerVersion reports `SHOW server_version`, used as a startup sanity
// check.
func ServerVersion(ctx context.Context, db *sqlx.DB) (string, error) {
	var v string
	if err := db.GetContext(ctx, &v, `SHOW server_version`); err != nil {
		return "", err
	}
	return v, nil
}
