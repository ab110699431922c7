package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mcpanel/internal/flagx"
	"github.com/dmitrijs2005/mcpanel/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Pointer and zero values mean "not set" so a partial file only overrides
// what it mentions.
type JsonConfig struct {
	APIBaseURL         string         `json:"api_base_url"`
	WSBaseURL          string         `json:"ws_base_url"`
	TokenTTL           timex.Duration `json:"token_ttl"`
	BackupRefreshDelay timex.Duration `json:"backup_refresh_delay"`
	WSReconnectDelay   timex.Duration `json:"ws_reconnect_delay"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	CredentialDriver   string         `json:"credential_driver"`
	DatabasePath       string         `json:"database_path"`
	RedisAddr          string         `json:"redis_addr"`
	RedisPassword      string         `json:"redis_password"`
	RedisDB            *int           `json:"redis_db"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config/--config in args. Without such a flag nothing happens.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.APIBaseURL, jc.APIBaseURL)
	overlayString(&cfg.WSBaseURL, jc.WSBaseURL)
	overlayString(&cfg.CredentialDriver, jc.CredentialDriver)
	overlayString(&cfg.DatabasePath, jc.DatabasePath)
	overlayString(&cfg.RedisAddr, jc.RedisAddr)
	overlayString(&cfg.RedisPassword, jc.RedisPassword)
	overlayString(&cfg.LogLevel, jc.LogLevel)

	if jc.TokenTTL.Duration > 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	if jc.BackupRefreshDelay.Duration > 0 {
		cfg.BackupRefreshDelay = jc.BackupRefreshDelay.Duration
	}
	if jc.WSReconnectDelay.Duration > 0 {
		cfg.WSReconnectDelay = jc.WSReconnectDelay.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
