// Package sqlite reads recent records from a local SQLite snapshot of the
// collection, using the pure-Go modernc.org/sqlite driver.
//
// The snapshot holds one table per collection:
//
//	CREATE TABLE <collection> (id TEXT PRIMARY KEY, <order column> TEXT NOT NULL, data TEXT)
//
// The order column is written with TimeLayout in UTC so text order is time order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/runner"
)

// TimeLayout is the fixed-width timestamp format of the order column.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Source implements runner.Source for a snapshot file.
type Source struct {
	path   string
	logger *zap.Logger
	db     *sql.DB
}

func New(path string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{path: path, logger: logger}
}

func (s *Source) Names() runner.Names {
	return runner.Names{App: "SQLite", Client: "SQLite"}
}

// Init opens the snapshot read-only. A missing file is an error rather than a new empty database.
func (s *Source) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", s.path+"?_pragma=query_only(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.logger.Debug("opened sqlite snapshot", zap.String("path", s.path))
	return nil
}

func (s *Source) Connect(ctx context.Context) error {
	if s.db == nil {
		return errors.New("sqlite database not initialised")
	}
	return s.db.PingContext(ctx)
}

// Recent selects the newest q.Limit rows of the collection table.
func (s *Source) Recent(ctx context.Context, q model.Query) ([]model.Record, error) {
	if s.db == nil {
		return nil, errors.New("sqlite database not initialised")
	}
	rows, err := s.db.QueryContext(ctx, RecentSQL(q.Collection, q.OrderBy), q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			id, orderText string
			data          sql.NullString
		)
		if err := rows.Scan(&id, &orderText, &data); err != nil {
			return nil, err
		}
		rec, err := model.FromRow(id, q.OrderBy, parseTime(orderText), []byte(data.String))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// RecentSQL returns the listing query; the limit is the single ? parameter.
func RecentSQL(table, orderBy string) string {
	col := quoteIdent(orderBy)
	return "SELECT id, " + col + ", data FROM " + quoteIdent(table) + " ORDER BY " + col + " DESC LIMIT ?"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// parseTime returns a time.Time when s is RFC 3339, otherwise s unchanged.
func parseTime(s string) interface{} {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return s
}
