// Package docstore is the record-store side of the predicate builder. It
// owns the Postgres connection, resolves collection names to their
// document columns, and hands out the immutable query handles that
// lib/jsonbq restricts.
package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the Postgres connection settings. Field sources follow
// the conventional libpq environment variables.
type Config struct {
	Host     string `env:"PGHOST"`
	User     string `env:"PGUSER"`
	Database string `env:"PGDATABASE"`
	Password string `env:"PGPASSWORD"`

	DisableAutoMigrate bool `env:"DOCSTORE_DISABLE_AUTO_MIGRATE"`
}

func (c Config) connectionString() string {
	return fmt.Sprintf("user=%s dbname=%s host=%s password=%s sslmode=disable", c.User, c.Database, c.Host, c.Password)
}

// ConfigFromEnv reads Config from the process environment.
func ConfigFromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading docstore config: %w", err)
	}
	return cfg, nil
}

// Store owns the database connection and the collection registry.
type Store struct {
	db       *sql.DB
	registry Registry
}

// Open connects to Postgres, applies embedded migrations unless
// disabled, and returns a Store serving the given registry.
func Open(ctx context.Context, cfg Config, registry Registry) (*Store, error) {
	if err := registry.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.connectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, registry: registry}

	if !cfg.DisableAutoMigrate {
		if err := s.runMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Collection resolves a registered collection by name.
func (s *Store) Collection(name string) (Collection, bool) {
	return s.registry.lookup(name)
}

// Clear deletes every row of a collection. Intended for test fixtures.
func (s *Store) Clear(ctx context.Context, collection string) error {
	c, ok := s.registry.lookup(collection)
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(c.Table)); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	return nil
}
