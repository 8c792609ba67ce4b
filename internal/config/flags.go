package config

import (
	"flag"
	"io"

	"github.com/lettucedream/roster/internal/flagx"
)

// flagNames lists the flags parseFlags handles, without dashes.
var flagNames = []string{
	"d", "driver", "backend", "redis", "redis-password", "redis-db",
	"seq-file", "timeout", "log-level", "log-format", "user-seq",
}

// Flags returns every spelling of the configuration flags, including -c and
// -config, so callers can strip them before handing the rest of the
// arguments to another parser.
func Flags() []string {
	out := []string{"-c", "-config", "--config"}
	for _, n := range flagNames {
		out = append(out, "-"+n, "--"+n)
	}
	return out
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string               database DSN
//	-driver string          database driver (pgx or sqlite)
//	-backend string         sequence backend (database, redis, file, memory)
//	-redis string           Redis address
//	-redis-password string  Redis password
//	-redis-db int           Redis database number
//	-seq-file string        YAML counter file for the file backend
//	-timeout duration       deadline for one counter reservation (e.g. "2s")
//	-log-level string       debug, info, warn or error
//	-log-format string      json or text
//	-user-seq string        name of the sequence used for user ids
//
// args are first filtered with flagx.FilterArgs so flags belonging to
// subcommands do not collide with these.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, Flags()[3:])

	fs := flag.NewFlagSet("roster", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.SequenceBackend, "backend", config.SequenceBackend, "sequence backend")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database")
	fs.StringVar(&config.SequenceFile, "seq-file", config.SequenceFile, "sequence counter file")
	fs.DurationVar(&config.StoreTimeout, "timeout", config.StoreTimeout, "sequence store timeout")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.UserSequence, "user-seq", config.UserSequence, "user sequence name")

	return fs.Parse(args)
}
