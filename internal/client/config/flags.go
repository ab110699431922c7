package config

import (
	"flag"

	"github.com/dmitrijs2005/mcpanel/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API base URL
//	-w string   broadcast websocket URL
//	-d string   credential driver (memory, sqlite, redis)
//	-f string   SQLite database file
//
// Only these flags are looked at (flagx.FilterArgs), so the config file flag
// and anything else on the command line do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-w", "-d", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "REST API base URL")
	fs.StringVar(&cfg.WSBaseURL, "w", cfg.WSBaseURL, "broadcast websocket URL")
	fs.StringVar(&cfg.CredentialDriver, "d", cfg.CredentialDriver, "credential driver: memory, sqlite or redis")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "SQLite database file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
