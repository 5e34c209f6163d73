// Package storage opens the place repository selected by storage.driver.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/postgres"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/sqlite"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
)

// Store is an open backend plus its place repository.
type Store struct {
	Driver string
	Places ports.PlaceRepository

	pg *postgres.DB
	lt *sqlite.DB
}

// Open connects to the configured backend. It does not run migrations.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &Store{Driver: "postgres", Places: postgres.NewPlaceRepo(db), pg: db}, nil
	case "sqlite":
		sqlite.SetSlowQueryThreshold(time.Duration(cfg.Storage.SlowQueryMS) * time.Millisecond)
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return &Store{Driver: "sqlite", Places: sqlite.NewPlaceRepo(db), lt: db}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Migrate applies pending schema migrations and returns their names.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	if s.pg != nil {
		return s.pg.Migrate(ctx)
	}
	return s.lt.Migrate(ctx)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.pg != nil {
		return s.pg.Ping(ctx)
	}
	return s.lt.Ping(ctx)
}

// ReportStats publishes pool gauges until ctx is done. Only postgres has a pool.
func (s *Store) ReportStats(ctx context.Context, interval time.Duration) {
	if s.pg == nil {
		return
	}
	s.pg.ReportPoolStats(ctx, interval)
}

func (s *Store) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
	if s.lt != nil {
		s.lt.Close()
	}
	slog.Debug("storage closed", "driver", s.Driver)
}
