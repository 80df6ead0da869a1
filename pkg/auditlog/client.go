// Copyright 2025 Certen Protocol
//
// Package auditlog is an optional Postgres secondary index of finalized
// blocks and their transition results. It exists purely for operators
// and light-client-style tooling to query committed history by SQL
// instead of replaying the ABCI Query service; nothing in pkg/abci or
// pkg/statetransition ever reads from it, and FinalizeBlock must
// succeed identically whether or not a Client is wired in.
package auditlog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/dashpay/platform-sub004/pkg/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Client is a connection-pooled handle to the audit log database.
type Client struct {
	db     *sql.DB
	logger *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient opens a connection pool against cfg.DatabaseURL and
// verifies connectivity. Returns (nil, nil) when DatabaseURL is empty,
// so a node without a configured Postgres sink runs with the audit log
// disabled rather than failing to start.
func NewClient(ctx context.Context, cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil || cfg.DatabaseURL == "" {
		return nil, nil
	}

	client := &Client{logger: log.New(log.Writer(), "[auditlog] ", log.LstdFlags)}
	for _, opt := range opts {
		opt(client)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("auditlog: open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxConns)
	db.SetConnMaxIdleTime(cfg.DatabaseMaxIdleTime)
	db.SetConnMaxLifetime(cfg.DatabaseMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: ping database: %w", err)
	}

	client.db = db
	client.logger.Printf("connected to audit log database (max_conns=%d)", cfg.DatabaseMaxConns)
	return client, nil
}

// DB returns the underlying *sql.DB for callers that need direct access.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the connection pool.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("auditlog: no database configured")
	}
	return c.db.PingContext(ctx)
}

// Migration is one embedded schema migration file.
type Migration struct {
	Version string
	SQL     string
}

// MigrateUp applies every embedded migration not yet recorded in the
// schema_migrations table, in filename order.
func (c *Client) MigrateUp(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.logger.Println("running audit log migrations")

	migrations, err := c.readMigrations()
	if err != nil {
		return fmt.Errorf("auditlog: read migrations: %w", err)
	}

	applied, err := c.appliedMigrations(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("auditlog: read applied migrations: %w", err)
		}
		applied = make(map[string]bool)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := c.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("auditlog: apply migration %s: %w", m.Version, err)
		}
		c.logger.Printf("applied migration %s", m.Version)
	}
	return nil
}

func (c *Client) readMigrations() ([]Migration, error) {
	var migrations []Migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return err
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(d.Name(), ".sql"),
			SQL:     string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func (c *Client) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (c *Client) applyMigration(ctx context.Context, m Migration) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)", m.Version, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}
