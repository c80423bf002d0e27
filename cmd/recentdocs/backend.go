package main

import (
	"go.uber.org/zap"

	"github.com/recentdocs/internal/clickhouse"
	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/firestoredb"
	"github.com/recentdocs/internal/postgres"
	"github.com/recentdocs/internal/runner"
	"github.com/recentdocs/internal/sqlite"
)

// newSource picks the backend named by cfg.Backend. cfg must be validated.
func newSource(cfg *config.Config, logger *zap.Logger) runner.Source {
	switch cfg.Backend {
	case config.BackendPostgres:
		return postgres.New(cfg.Postgres, logger)
	case config.BackendClickHouse:
		return clickhouse.New(cfg.ClickHouse, logger)
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLite.Path, logger)
	default:
		return firestoredb.New(cfg.Firestore.CredentialsFile, cfg.Firestore.ProjectID, logger)
	}
}
