// Package clickhouse reads recent records from a ClickHouse mirror table
// (id String, a DateTime64 order column, data String holding the JSON body).
package clickhouse

import (
	"context"
	"errors"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/runner"
)

// Source implements runner.Source for ClickHouse.
type Source struct {
	cfg    config.SQLConfig
	logger *zap.Logger
	conn   driver.Conn
}

func New(cfg config.SQLConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{cfg: cfg, logger: logger}
}

func (s *Source) Names() runner.Names {
	return runner.Names{App: "ClickHouse", Client: "ClickHouse"}
}

// Init opens the connection handle; clickhouse.Open does not dial.
func (s *Source) Init(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	s.logger.Debug("opening ClickHouse connection",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("database", s.cfg.Database))
	conn, err := clickhouse.Open(Options(s.cfg))
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Connect pings the server.
func (s *Source) Connect(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("clickhouse connection not initialised")
	}
	return s.conn.Ping(ctx)
}

func (s *Source) Recent(ctx context.Context, q model.Query) ([]model.Record, error) {
	if s.conn == nil {
		return nil, errors.New("clickhouse connection not initialised")
	}
	return QueryRecent(ctx, s.conn, s.cfg.Database, q)
}

// Close closes the connection.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
