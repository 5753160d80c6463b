package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config represents runtime configuration for the service. Everything
// comes from the environment (optionally seeded from a .env file by
// main); there is no config file.
type Config struct {
	ServerAddress string
	Driver        string // postgres, mysql or sqlite3
	DSN           string // used directly by mysql/sqlite3
	Postgres      PostgresConfig
	Provider      ProviderConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	DBName   string
	User     string
	Password string
	SSLMode  string
}

type ProviderConfig struct {
	Name    string // openai, gemini or claude
	Model   string
	APIKey  string
	BaseURL string
}

// Load reads configuration from the environment with defaults.
func Load() Config {
	return Config{
		ServerAddress: envStr("TABLETALK_ADDR", ":8090"),
		Driver:        envStr("TABLETALK_DB", "postgres"),
		DSN:           envStr("TABLETALK_DSN", ""),
		Postgres: PostgresConfig{
			Host:     envStr("POSTGRES_HOST", "localhost"),
			Port:     envInt("POSTGRES_PORT", 5432),
			DBName:   envStr("POSTGRES_DB", "tabletalk"),
			User:     envStr("POSTGRES_USER", "postgres"),
			Password: envStr("POSTGRES_PASSWORD", ""),
			SSLMode:  envStr("POSTGRES_SSLMODE", "disable"),
		},
		Provider: ProviderConfig{
			Name:    envStr("MODEL_PROVIDER", "gemini"),
			Model:   envStr("MODEL_NAME", "gemini-2.0-flash"),
			APIKey:  envStr("MODEL_API_KEY", ""),
			BaseURL: envStr("MODEL_BASE_URL", ""),
		},
	}
}

// DSN renders a pgx-compatible connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   p.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", p.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
