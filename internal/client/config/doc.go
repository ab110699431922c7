// Package config loads runtime configuration for the mcpanel client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via -c, -config or --config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # Environment
//
//	MCPANEL_API_BASE            REST API base URL
//	MCPANEL_WS_BASE             broadcast websocket URL
//	MCPANEL_CREDENTIAL_DRIVER   memory | sqlite | redis
//	MCPANEL_DB_PATH             SQLite file
//	MCPANEL_REDIS_ADDR          redis host:port
//	MCPANEL_LOG_LEVEL           debug | info | warn | error
//
// # Supported flags
//
//	-a string   REST API base URL
//	-w string   broadcast websocket URL
//	-d string   credential driver
//	-f string   SQLite database file
//
// # JSON schema
//
// Durations accept Go duration strings or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://panel.example.com/api/v1",
//	  "ws_base_url": "wss://panel.example.com/api/v1/ws",
//	  "token_ttl": "168h",
//	  "backup_refresh_delay": "5s",
//	  "credential_driver": "redis",
//	  "redis_addr": "127.0.0.1:6379"
//	}
package config
