// Package postgres reads recent records from a PostgreSQL mirror of the collection:
// one table per collection with columns id, the order column and a JSONB data body.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/runner"
)

// Source implements runner.Source for PostgreSQL.
type Source struct {
	cfg    config.SQLConfig
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func New(cfg config.SQLConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{cfg: cfg, logger: logger}
}

func (s *Source) Names() runner.Names {
	return runner.Names{App: "PostgreSQL", Client: "PostgreSQL"}
}

// Init creates the pool. pgxpool connects lazily, so this only validates the config.
func (s *Source) Init(ctx context.Context) error {
	if s.pool != nil {
		return nil
	}
	s.logger.Debug("creating PostgreSQL pool",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("database", s.cfg.Database))
	pool, err := CreatePool(ctx, s.cfg)
	if err != nil {
		return err
	}
	s.pool = pool
	return nil
}

// Connect checks the server is reachable.
func (s *Source) Connect(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not initialised")
	}
	return s.pool.Ping(ctx)
}

func (s *Source) Recent(ctx context.Context, q model.Query) ([]model.Record, error) {
	if s.pool == nil {
		return nil, errors.New("postgres pool not initialised")
	}
	return QueryRecent(ctx, s.pool, q)
}

// Close closes the pool.
func (s *Source) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}
