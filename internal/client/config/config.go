package config

import (
	"os"
	"time"
)

// Credential store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds runtime settings for the mcpanel client.
//
// Fields:
//   - APIBaseURL: origin + prefix of the REST API (e.g. http://host:8080/api/v1).
//   - WSBaseURL: URL of the real-time broadcast channel.
//   - TokenTTL: durability window of a stored credential.
//   - BackupRefreshDelay: delay before a background backup/restore triggers a refresh.
//   - WSReconnectDelay: pause between broadcast reconnect attempts.
//   - RequestTimeout: http.Client timeout; zero keeps the transport default.
//   - CredentialDriver: memory, sqlite or redis.
//   - DatabasePath: SQLite file for the sqlite driver.
//   - RedisAddr, RedisPassword, RedisDB: redis driver connection.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL         string
	WSBaseURL          string
	TokenTTL           time.Duration
	BackupRefreshDelay time.Duration
	WSReconnectDelay   time.Duration
	RequestTimeout     time.Duration
	CredentialDriver   string
	DatabasePath       string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api/v1"
	c.WSBaseURL = "ws://localhost:8080/api/v1/ws"
	c.TokenTTL = 7 * 24 * time.Hour
	c.BackupRefreshDelay = 5 * time.Second
	c.WSReconnectDelay = 3 * time.Second
	c.RequestTimeout = 0
	c.CredentialDriver = DriverSQLite
	c.DatabasePath = "mcpanel.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and an optional .env file), a JSON file and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
