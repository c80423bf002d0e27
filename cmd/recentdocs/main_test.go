package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/sqlite"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RECENTDOCS_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS", "RECENTDOCS_COLLECTION", "POSTGRES_HOST", "CLICKHOUSE_HOST"} {
		t.Setenv(k, "")
	}
}

func snapshot(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE workshop_registrations (id TEXT PRIMARY KEY, created_at TEXT NOT NULL, data TEXT)`)
	require.NoError(t, err)
	base := time.Date(2025, 4, 20, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err = db.Exec(`INSERT INTO workshop_registrations VALUES (?, ?, ?)`,
			fmt.Sprintf("reg-%02d", i),
			base.Add(time.Duration(i)*time.Minute).Format(sqlite.TimeLayout),
			fmt.Sprintf(`{"name":"attendee %d","email_sent":true}`, i))
		require.NoError(t, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
	code := execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestCLI_SQLiteSnapshot(t *testing.T) {
	clearEnv(t)
	out, _, code := runCLI(t, "--backend", "sqlite", "--config", writeConfig(t, "sqlite:\n  path: "+snapshot(t, 25)+"\n"))

	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "Listing recent documents in workshop_registrations\n"))
	assert.Equal(t, 20, strings.Count(out, "\n---\n"))
	assert.Contains(t, out, "id: reg-24\ncreated_at: 2025-04-20T08:24:00Z\nemail_sent: true\nemail_error: <nil>\n")
	assert.NotContains(t, out, "id: reg-04\n")
}

func TestCLI_LimitFlag(t *testing.T) {
	clearEnv(t)
	cfg := writeConfig(t, "backend: sqlite\nsqlite:\n  path: "+snapshot(t, 5)+"\n")
	out, _, code := runCLI(t, "--config", cfg, "-n", "2")

	require.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(out, "---\n"))
}

func TestCLI_MissingCredentialIsFatal(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "sa.json")
	out, _, code := runCLI(t, "--credentials", missing)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(out, "Firebase init failed: "), out)
	assert.NotContains(t, out, "Listing recent documents")
}

func TestCLI_QueryErrorExitPolicy(t *testing.T) {
	clearEnv(t)
	cfg := writeConfig(t, "backend: sqlite\nsqlite:\n  path: "+snapshot(t, 1)+"\n")

	out, _, code := runCLI(t, "--config", cfg, "--collection", "payments")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Error listing docs: ")

	out, _, code = runCLI(t, "--config", cfg, "--collection", "payments", "--fail-on-query-error")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error listing docs: ")
}

func TestCLI_InvalidConfig(t *testing.T) {
	clearEnv(t)
	out, errOut, code := runCLI(t, "--backend", "mongo")
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `unknown backend "mongo"`)

	_, _, code = runCLI(t, "--limit", "0")
	assert.Equal(t, exitUsage, code)

	_, _, code = runCLI(t, "unexpected-arg")
	assert.Equal(t, exitUsage, code)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "collection: payments\nlimit: 7\norder_by: createdAt\n")

	cmd := newRootCmd(&bytes.Buffer{}, new(int))
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--limit", "3"}))
	f := flagsFrom(t, cmd)

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "payments", cfg.Collection, "file value kept when flag unset")
	assert.Equal(t, "createdAt", cfg.OrderBy)
	assert.Equal(t, 3, cfg.Limit, "flag wins")
	assert.Equal(t, config.BackendFirestore, cfg.Backend)
}

func TestNewSource_PicksBackend(t *testing.T) {
	cfg := config.Default()
	for backend, app := range map[string]string{
		config.BackendFirestore:  "Firebase",
		config.BackendPostgres:   "PostgreSQL",
		config.BackendClickHouse: "ClickHouse",
		config.BackendSQLite:     "SQLite",
	} {
		cfg.Backend = backend
		assert.Equal(t, app, newSource(cfg, nil).Names().App, backend)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recentdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// flagsFrom reads parsed values back out of cmd, mirroring what RunE sees.
func flagsFrom(t *testing.T, cmd *cobra.Command) flags {
	t.Helper()
	fl := cmd.Flags()
	var f flags
	var err error
	f.configPath, err = fl.GetString("config")
	require.NoError(t, err)
	f.limit, err = fl.GetInt("limit")
	require.NoError(t, err)
	return f
}
