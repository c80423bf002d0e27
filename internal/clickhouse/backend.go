package clickhouse

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/model"
)

// Options builds the native-protocol options for cfg.
func Options(cfg config.SQLConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{cfg.Host + ":" + fmtPort(cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout:  10 * time.Second,
		MaxOpenConns: 1,
	}
}

func fmtPort(p int) string {
	if p <= 0 {
		return "9000"
	}
	return strconv.Itoa(p)
}

// quoteIdent quotes a ClickHouse identifier with backticks.
func quoteIdent(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

// RecentSQL returns the listing query for database.table, newest first. The limit is $1.
func RecentSQL(database, table, orderBy string) string {
	col := quoteIdent(orderBy)
	return "SELECT id, " + col + ", data FROM " + quoteIdent(database) + "." + quoteIdent(table) +
		" ORDER BY " + col + " DESC LIMIT $1"
}

// QueryRecent runs the listing query on conn. The order column must be a DateTime/DateTime64.
func QueryRecent(ctx context.Context, conn driver.Conn, database string, q model.Query) ([]model.Record, error) {
	rows, err := conn.Query(ctx, RecentSQL(database, q.Collection, q.OrderBy), q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			id       string
			orderVal time.Time
			data     string
		)
		if err := rows.Scan(&id, &orderVal, &data); err != nil {
			return nil, err
		}
		rec, err := model.FromRow(id, q.OrderBy, orderVal, []byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
