package config

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "abc")
	t.Setenv("STATS_BACKEND", "")
	t.Setenv("PRESENCE_INTERVAL", "")
	t.Setenv("OWNER_IDS", " 1, 2 ,,")
	t.Setenv("PRESENCE_STATUSES", "one|two ")
	t.Setenv("STATUS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StatsBackendSQLite, cfg.StatsBackend)
	assert.Equal(t, time.Minute, cfg.PresenceInterval)
	assert.Equal(t, []string{"1", "2"}, cfg.OwnerIDs)
	assert.Equal(t, []string{"one", "two"}, cfg.PresenceStatuses)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.StatusAddr)
}

func TestLoadPostgresNeedsCredentials(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "abc")
	t.Setenv("STATS_BACKEND", "postgres")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "abc")
	t.Setenv("STATS_BACKEND", "sqlite")
	t.Setenv("PRESENCE_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, Database: "stats", User: "u", Password: "p"}
	assert.Equal(t, "postgres://u:p@db:5433/stats?sslmode=disable", p.DSN())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, Database: "stats", User: "bot:admin", Password: "p@ss/w#rd"}

	parsed, err := pgx.ParseConfig(p.DSN())
	require.NoError(t, err)
	assert.Equal(t, "db", parsed.Host)
	assert.Equal(t, uint16(5432), parsed.Port)
	assert.Equal(t, "stats", parsed.Database)
	assert.Equal(t, "bot:admin", parsed.User)
	assert.Equal(t, "p@ss/w#rd", parsed.Password)
}
