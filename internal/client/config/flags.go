package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/studydeck/internal/flagx"
)

// Flags are the config flag names. The CLI registers them too so that they
// show up in help output.
var Flags = []string{"c", "config", "db", "api", "log-level"}

func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("c", "", "path to config file (short)")
	fs.String("config", "", "path to config file")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, Flags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
