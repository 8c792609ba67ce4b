package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, BackendDatabase, c.SequenceBackend)
	assert.Zero(t, c.StoreTimeout, "no deadline unless configured")
	assert.Equal(t, []identifier.SequenceDefinition{{Name: "user", Prefix: "LD_", IncrementBy: 1, Width: 5}}, c.Sequences)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn":     "from-json.db",
		"sequence_backend": "redis",
		"redis_addr":       "json:6379",
	})

	cfg, err := LoadConfig([]string{"user", "get", "LD_00001", "-c", path, "-redis", "flag:6379"})
	require.NoError(t, err)

	assert.Equal(t, "from-json.db", cfg.DatabaseDSN, "json overrides defaults")
	assert.Equal(t, "flag:6379", cfg.RedisAddr, "flags override json")
	assert.Equal(t, BackendRedis, cfg.SequenceBackend)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver, "untouched default")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	_, err = LoadConfig([]string{"-backend", "etcd"})
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = LoadConfig([]string{"-timeout", "soon"})
	require.Error(t, err)

	_, err = LoadConfig([]string{"-user-seq", "staff"})
	require.ErrorIs(t, err, common.ErrSequenceNotConfigured)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"driver", func(c *Config) { c.DatabaseDriver = "mysql" }, common.ErrorValidation},
		{"dsn", func(c *Config) { c.DatabaseDSN = "" }, common.ErrorValidation},
		{"redis addr", func(c *Config) { c.SequenceBackend = BackendRedis; c.RedisAddr = "" }, common.ErrorValidation},
		{"file path", func(c *Config) { c.SequenceBackend = BackendFile; c.SequenceFile = "" }, common.ErrorValidation},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, common.ErrorValidation},
		{"timeout", func(c *Config) { c.StoreTimeout = -time.Second }, common.ErrorValidation},
		{"bad sequence", func(c *Config) { c.Sequences[0].Width = 0 }, common.ErrInvalidSequence},
		{"duplicate sequence", func(c *Config) { c.Sequences = append(c.Sequences, c.Sequences[0]) }, common.ErrInvalidSequence},
		{"missing user sequence", func(c *Config) { c.UserSequence = "member" }, common.ErrSequenceNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			tt.mutate(c)
			require.ErrorIs(t, c.Validate(), tt.target)
		})
	}
}

func TestFlags(t *testing.T) {
	f := Flags()
	assert.Contains(t, f, "-c")
	assert.Contains(t, f, "-d")
	assert.Contains(t, f, "--backend")
	assert.NotContains(t, f, "-first")
}
