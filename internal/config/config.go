package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// DBPath is the SQLite database file, created if missing.
	DBPath string `env:"TOUCHLINE_DB_PATH" envDefault:"touchline.db"`

	DiscordToken string `env:"TOUCHLINE_DISCORD_TOKEN"`

	// Who is allowed to use `!dev` commands.
	DiscordAdminUserIDs []string `env:"TOUCHLINE_DISCORD_ADMIN_USER_IDS" envSeparator:","`

	// Who is not allowed to do anything.
	DiscordBannedUserIDs []string `env:"TOUCHLINE_DISCORD_BANNED_USER_IDS" envSeparator:","`

	// DiscordAnnounceChannelID receives the played match results, nothing is
	// announced if empty.
	DiscordAnnounceChannelID string `env:"TOUCHLINE_DISCORD_ANNOUNCE_CHANNEL_ID"`

	HTTPAddress string `env:"TOUCHLINE_HTTP_ADDRESS" envDefault:"127.0.0.1:3001"`

	// SweepInterval is the delay between two plays of the due matches.
	SweepInterval time.Duration `env:"TOUCHLINE_SWEEP_INTERVAL" envDefault:"30s"`

	// MatchTimeout bounds the transaction playing a single match.
	MatchTimeout time.Duration `env:"TOUCHLINE_MATCH_TIMEOUT" envDefault:"5s"`

	// BusyTimeout is how long SQLite waits on a locked database, it cannot
	// exceed MatchTimeout as SQLite ignores cancellation while waiting.
	BusyTimeout time.Duration `env:"TOUCHLINE_BUSY_TIMEOUT" envDefault:"5s"`

	// Friendlies kick off every KickoffPeriod, shifted by KickoffOffset,
	// unless KickoffTimes ("15:04 Location") are given.
	KickoffPeriod time.Duration `env:"TOUCHLINE_KICKOFF_PERIOD" envDefault:"15m"`
	KickoffOffset time.Duration `env:"TOUCHLINE_KICKOFF_OFFSET" envDefault:"0s"`
	KickoffTimes  []string      `env:"TOUCHLINE_KICKOFF_TIMES" envSeparator:","`

	// Per user command rate limit, in commands per second.
	CommandRate  float64 `env:"TOUCHLINE_COMMAND_RATE" envDefault:"0.5"`
	CommandBurst int     `env:"TOUCHLINE_COMMAND_BURST" envDefault:"5"`

	LogLevel  string `env:"TOUCHLINE_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"TOUCHLINE_LOG_PRETTY"`
}

// Load reads the optional .env files then the environment.
// Variables already set in the environment take precedence over .env.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to load .env: %w", err)
		}
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return errors.New("TOUCHLINE_DB_PATH cannot be empty")
	}

	for _, v := range []struct {
		name string
		d    time.Duration
	}{
		{"TOUCHLINE_SWEEP_INTERVAL", c.SweepInterval},
		{"TOUCHLINE_MATCH_TIMEOUT", c.MatchTimeout},
	} {
		if v.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", v.name, v.d)
		}
	}

	if c.BusyTimeout < 0 || c.BusyTimeout > c.MatchTimeout {
		return fmt.Errorf(
			"TOUCHLINE_BUSY_TIMEOUT must be between 0 and TOUCHLINE_MATCH_TIMEOUT (%s), got %s",
			c.MatchTimeout, c.BusyTimeout,
		)
	}

	if len(c.KickoffTimes) == 0 && c.KickoffPeriod < time.Second {
		return fmt.Errorf("TOUCHLINE_KICKOFF_PERIOD must be at least 1s, got %s", c.KickoffPeriod)
	}

	if c.CommandRate <= 0 || c.CommandBurst < 1 {
		return errors.New("command rate and burst must be positive")
	}

	return nil
}

// DSN returns the go-sqlite3 data source name.
// Immediate transactions take the write lock on BEGIN, concurrent writers
// then wait up to SQLiteBusyTimeout instead of failing on lock upgrade.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"%s?_busy_timeout=%d&_txlock=immediate&_foreign_keys=1&_journal_mode=WAL",
		c.DBPath, c.SQLiteBusyTimeout().Milliseconds(),
	)
}

// SQLiteBusyTimeout is BusyTimeout capped to MatchTimeout, when set, so that
// waiting for the write lock never outlives a match transaction.
func (c *Config) SQLiteBusyTimeout() time.Duration {
	if c.MatchTimeout > 0 && c.BusyTimeout > c.MatchTimeout {
		return c.MatchTimeout
	}

	return c.BusyTimeout
}

func (c *Config) IsDiscordIDAdmin(id string) bool {
	return contains(c.DiscordAdminUserIDs, id)
}

func (c *Config) IsDiscordIDBanned(id string) bool {
	return contains(c.DiscordBannedUserIDs, id)
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}
