package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command mode depends on are present
// and within range. Modes: "ingest" (AI extraction), "store" (database only),
// "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	storeChecks := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required for the sqlite driver")
			}
		default:
			problems = append(problems, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
	}

	ingestChecks := func() {
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if c.Pipeline.BatchSize < 1 || c.Pipeline.BatchSize > 20 {
			problems = append(problems, "pipeline.batch_size must be between 1 and 20")
		}
		if c.Anthropic.MaxRetries < 0 {
			problems = append(problems, "anthropic.max_retries must be >= 0")
		}
		if c.Pipeline.RunTimeout <= 0 {
			problems = append(problems, "pipeline.run_timeout must be > 0")
		}
	}

	switch mode {
	case "store":
		storeChecks()
	case "ingest":
		storeChecks()
		ingestChecks()
	case "serve":
		storeChecks()
		ingestChecks()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}
