package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lettucedream/roster/internal/flagx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Fields left out of the file keep their current value.
type JsonConfig struct {
	DatabaseDriver  string                          `json:"database_driver"`
	DatabaseDSN     string                          `json:"database_dsn"`
	SequenceBackend string                          `json:"sequence_backend"`
	RedisAddr       string                          `json:"redis_addr"`
	RedisPassword   string                          `json:"redis_password"`
	RedisDB         *int                            `json:"redis_db"`
	RedisKeyPrefix  string                          `json:"redis_key_prefix"`
	SequenceFile    string                          `json:"sequence_file"`
	StoreTimeout    *timex.Duration                 `json:"store_timeout"`
	LogLevel        string                          `json:"log_level"`
	LogFormat       string                          `json:"log_format"`
	Sequences       []identifier.SequenceDefinition `json:"sequences"`
	UserSequence    string                          `json:"user_sequence"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag in args. Without either flag nothing is loaded.
//
// A "sequences" list in the file replaces the default sequences as a whole.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SequenceBackend, c.SequenceBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.RedisKeyPrefix, c.RedisKeyPrefix)
	setString(&config.SequenceFile, c.SequenceFile)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.UserSequence, c.UserSequence)

	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.StoreTimeout != nil {
		config.StoreTimeout = c.StoreTimeout.Duration
	}
	if c.Sequences != nil {
		config.Sequences = c.Sequences
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
