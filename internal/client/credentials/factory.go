package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/client/migrations"
)

// Driver identifiers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

const defaultTTL = 7 * 24 * time.Hour

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type Config struct {
	Driver string
	TTL    time.Duration
	// DatabasePath is opened by the sqlite driver when Dependencies.DB is nil.
	DatabasePath string
	Redis        RedisConfig
}

// Dependencies carries handles owned by the caller.
type Dependencies struct {
	DB *sql.DB
}

// New creates a credential store for cfg.Driver (memory when empty).
func New(ctx context.Context, cfg Config, deps Dependencies) (Store, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}

	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(cfg.TTL), nil
	case DriverSQLite:
		if deps.DB != nil {
			return NewSQLite(deps.DB, cfg.TTL, false), nil
		}
		if cfg.DatabasePath == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		db, err := migrations.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open credential database: %w", err)
		}
		return NewSQLite(db, cfg.TTL, true), nil
	case DriverRedis:
		return NewRedis(ctx, cfg.Redis, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported credential driver: %s", cfg.Driver)
	}
}
