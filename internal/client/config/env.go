package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// dotEnvFiles lists the files parseEnv tries to load. Missing files are
// ignored; variables already present in the environment are never replaced.
var dotEnvFiles = []string{".env"}

// parseEnv overlays Config with MCPANEL_* environment variables.
func parseEnv(cfg *Config) {
	for _, f := range dotEnvFiles {
		_ = godotenv.Load(f)
	}

	setString(&cfg.APIBaseURL, "MCPANEL_API_BASE")
	setString(&cfg.WSBaseURL, "MCPANEL_WS_BASE")
	setString(&cfg.CredentialDriver, "MCPANEL_CREDENTIAL_DRIVER")
	setString(&cfg.DatabasePath, "MCPANEL_DB_PATH")
	setString(&cfg.RedisAddr, "MCPANEL_REDIS_ADDR")
	setString(&cfg.RedisPassword, "MCPANEL_REDIS_PASSWORD")
	setString(&cfg.LogLevel, "MCPANEL_LOG_LEVEL")

	if v := os.Getenv("MCPANEL_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
