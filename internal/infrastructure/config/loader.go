package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StatsBackendSQLite   = "sqlite"
	StatsBackendPostgres = "postgres"
	StatsBackendRedis    = "redis"
)

// DefaultStatusAddr keeps the status server on loopback unless STATUS_ADDR says otherwise.
const DefaultStatusAddr = "127.0.0.1:8080"

var ErrMissingToken = errors.New("config: DISCORD_TOKEN is not set")

type Config struct {
	DiscordToken string
	DiscordAppID string

	ExtensionsDir string

	StatsBackend string
	DatabasePath string
	Postgres     PostgresConfig
	Redis        RedisConfig

	OwnerIDs       []string
	BlacklistedIDs []string

	PresenceStatuses []string
	PresenceInterval time.Duration

	StatusAddr           string
	StatusAllowedOrigins []string

	LogLevel string
	LogFile  string
}

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the process environment (and a .env file when present).
// A missing token or missing persistence parameters are returned as errors;
// callers treat them as fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:         strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		DiscordAppID:         strings.TrimSpace(os.Getenv("DISCORD_APP_ID")),
		ExtensionsDir:        envDefault("EXTENSIONS_DIR", "extensions"),
		StatsBackend:         strings.ToLower(envDefault("STATS_BACKEND", StatsBackendSQLite)),
		DatabasePath:         envDefault("DATABASE_PATH", "data/prbot.db"),
		OwnerIDs:             splitList(os.Getenv("OWNER_IDS"), ","),
		BlacklistedIDs:       splitList(os.Getenv("BLACKLISTED_IDS"), ","),
		PresenceStatuses:     splitList(os.Getenv("PRESENCE_STATUSES"), "|"),
		StatusAddr:           envDefault("STATUS_ADDR", DefaultStatusAddr),
		StatusAllowedOrigins: splitList(os.Getenv("STATUS_ALLOWED_ORIGINS"), ","),
		LogLevel:             envDefault("LOG_LEVEL", "info"),
		LogFile:              envDefault("LOG_FILE", "discord.log"),
		Postgres: PostgresConfig{
			Host:     envDefault("POSTGRES_HOST", "localhost"),
			Database: envDefault("POSTGRES_DB", "prbot"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.Postgres.Port, err = envInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.PresenceInterval = time.Minute
	if raw := strings.TrimSpace(os.Getenv("PRESENCE_INTERVAL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config: PRESENCE_INTERVAL invalid (%q)", raw)
		}
		cfg.PresenceInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	switch c.StatsBackend {
	case StatsBackendSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("config: DATABASE_PATH is empty")
		}
	case StatsBackendPostgres:
		if c.Postgres.User == "" || c.Postgres.Password == "" {
			return fmt.Errorf("config: POSTGRES_USER and POSTGRES_PASSWORD are required for the postgres backend")
		}
	case StatsBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown STATS_BACKEND %q", c.StatsBackend)
	}
	return nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s invalid (%q)", key, v)
	}
	return n, nil
}

func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
