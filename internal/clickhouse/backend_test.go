package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/model"
)

func TestOptions(t *testing.T) {
	opts := Options(config.SQLConfig{Host: "ch", Database: "tedx", User: "reader", Password: "pw"})
	assert.Equal(t, []string{"ch:9000"}, opts.Addr)
	assert.Equal(t, "tedx", opts.Auth.Database)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, 10*time.Second, opts.DialTimeout)
}

func TestRecentSQL(t *testing.T) {
	assert.Equal(t,
		"SELECT id, `created_at`, data FROM `default`.`workshop_registrations` ORDER BY `created_at` DESC LIMIT $1",
		RecentSQL("default", "workshop_registrations", "created_at"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`a\\`b`", quoteIdent("a`b"))
	assert.Equal(t, "`a\\\\b`", quoteIdent(`a\b`))
}

func TestSource_NotInitialised(t *testing.T) {
	s := New(config.Default().ClickHouse, nil)
	assert.Equal(t, "ClickHouse", s.Names().Client)

	require.Error(t, s.Connect(context.Background()))
	_, err := s.Recent(context.Background(), model.Query{Collection: "c", OrderBy: "created_at", Limit: 1})
	require.Error(t, err)
	assert.NoError(t, s.Close())
}
