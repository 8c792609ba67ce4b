// Package config handles configuration for roster: defaults, a JSON overlay
// and command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

// Sequence storage backends.
const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite".
//   - DatabaseDSN: connection string for the driver.
//   - SequenceBackend: where sequence counters live (database, redis, file, memory).
//   - RedisAddr / RedisPassword / RedisDB / RedisKeyPrefix: Redis counter settings.
//   - SequenceFile: YAML counter file for the file backend.
//   - StoreTimeout: deadline for a single counter reservation; zero disables it.
//   - LogLevel / LogFormat: slog level and handler (json or text).
//   - Sequences: identifier sequences; UserSequence names the one used for users.
type Config struct {
	DatabaseDriver  string
	DatabaseDSN     string
	SequenceBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string
	SequenceFile    string
	StoreTimeout    time.Duration
	LogLevel        string
	LogFormat       string
	Sequences       []identifier.SequenceDefinition
	UserSequence    string
}

// DefaultUserSequence issues LD_00001, LD_00002, ...
var DefaultUserSequence = identifier.SequenceDefinition{
	Name:        "user",
	Prefix:      "LD_",
	IncrementBy: 1,
	Width:       5,
}

// LoadDefaults populates Config with development defaults: a local SQLite
// database that also stores the counters.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "roster.db"
	c.SequenceBackend = BackendDatabase
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisKeyPrefix = "roster:seq:"
	c.SequenceFile = "roster-sequences.yaml"
	c.StoreTimeout = 0 // no deadline unless the caller asks for one
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.Sequences = []identifier.SequenceDefinition{DefaultUserSequence}
	c.UserSequence = DefaultUserSequence.Name
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. args are
// the process arguments without the program name; flags not handled here
// are ignored.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency. Errors wrap common.ErrorValidation
// or, for sequence problems, common.ErrInvalidSequence.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("%w: unsupported database driver %q", common.ErrorValidation, c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database DSN is required", common.ErrorValidation)
	}

	switch c.SequenceBackend {
	case BackendDatabase, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis backend needs an address", common.ErrorValidation)
		}
	case BackendFile:
		if c.SequenceFile == "" {
			return fmt.Errorf("%w: file backend needs a sequence file", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: unknown sequence backend %q", common.ErrorValidation, c.SequenceBackend)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", common.ErrorValidation, c.LogFormat)
	}
	if c.StoreTimeout < 0 {
		return fmt.Errorf("%w: store timeout must not be negative", common.ErrorValidation)
	}

	registry, err := c.Registry()
	if err != nil {
		return err
	}
	if _, err := registry.Lookup(c.UserSequence); err != nil {
		return err
	}
	return nil
}

// Registry returns the configured sequences.
func (c *Config) Registry() (*identifier.Registry, error) {
	return identifier.NewRegistry(c.Sequences...)
}
