package postgres

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/model"
)

// ConnString builds the pgx connection URL for cfg.
func ConnString(cfg config.SQLConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + fmtPort(cfg.Port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

// CreatePool creates a pgx connection pool. One connection is enough for a single query.
func CreatePool(ctx context.Context, cfg config.SQLConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = 1
	pcfg.MinConns = 0
	return pgxpool.NewWithConfig(ctx, pcfg)
}

func fmtPort(p int) string {
	if p <= 0 {
		return "5432"
	}
	return strconv.Itoa(p)
}

// RecentSQL returns the listing query for table ordered by orderBy, newest first. The limit is $1.
func RecentSQL(table, orderBy string) string {
	col := pgx.Identifier{orderBy}.Sanitize()
	return "SELECT id, " + col + ", data FROM " + pgx.Identifier{table}.Sanitize() +
		" ORDER BY " + col + " DESC LIMIT $1"
}

// QueryRecent runs the listing query on pool.
func QueryRecent(ctx context.Context, pool *pgxpool.Pool, q model.Query) ([]model.Record, error) {
	rows, err := pool.Query(ctx, RecentSQL(q.Collection, q.OrderBy), q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			id       string
			orderVal interface{}
			data     []byte
		)
		if err := rows.Scan(&id, &orderVal, &data); err != nil {
			return nil, err
		}
		rec, err := model.FromRow(id, q.OrderBy, orderVal, data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
