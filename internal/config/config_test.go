package config // nolint:testpackage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse()
	if err != nil {
		t.Fatal(err)
	}

	if c.DBPath != "touchline.db" {
		t.Errorf("unexpected DBPath %q", c.DBPath)
	}
	if c.SweepInterval != 30*time.Second {
		t.Errorf("expected a 30s sweep interval, got %s", c.SweepInterval)
	}
	if c.KickoffPeriod != 15*time.Minute {
		t.Errorf("expected a 15m kickoff period, got %s", c.KickoffPeriod)
	}
}

func TestParseLists(t *testing.T) {
	t.Setenv("TOUCHLINE_DISCORD_ADMIN_USER_IDS", "1,2")
	t.Setenv("TOUCHLINE_DISCORD_BANNED_USER_IDS", "3")

	c, err := Parse()
	if err != nil {
		t.Fatal(err)
	}

	if !c.IsDiscordIDAdmin("2") || c.IsDiscordIDAdmin("3") {
		t.Errorf("unexpected admins: %v", c.DiscordAdminUserIDs)
	}
	if !c.IsDiscordIDBanned("3") || c.IsDiscordIDBanned("1") {
		t.Errorf("unexpected bans: %v", c.DiscordBannedUserIDs)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		key, value, contains string
	}{
		{"TOUCHLINE_SWEEP_INTERVAL", "soon", "parse env:"},
		{"TOUCHLINE_SWEEP_INTERVAL", "0s", "TOUCHLINE_SWEEP_INTERVAL"},
		{"TOUCHLINE_MATCH_TIMEOUT", "-1s", "TOUCHLINE_MATCH_TIMEOUT"},
		{"TOUCHLINE_KICKOFF_PERIOD", "0s", "TOUCHLINE_KICKOFF_PERIOD"},
		{"TOUCHLINE_COMMAND_BURST", "0", "burst"},
		{"TOUCHLINE_BUSY_TIMEOUT", "6s", "TOUCHLINE_BUSY_TIMEOUT"},
		{"TOUCHLINE_BUSY_TIMEOUT", "-1s", "TOUCHLINE_BUSY_TIMEOUT"},
	}

	for k, v := range cases {
		t.Run(v.key, func(t *testing.T) {
			t.Setenv(v.key, v.value)

			_, err := Parse()
			if err == nil {
				t.Fatalf("case #%d: expected an error", k)
			}
			if !strings.Contains(err.Error(), v.contains) {
				t.Fatalf("case #%d: expected %q in %q", k, v.contains, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TOUCHLINE_DB_PATH=from-file.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override the environment, make sure the variable
	// is unset and restored afterwards.
	t.Setenv("TOUCHLINE_DB_PATH", "")
	os.Unsetenv("TOUCHLINE_DB_PATH")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.DBPath != "from-file.db" {
		t.Errorf("expected the .env value, got %q", c.DBPath)
	}
}

func TestLoadMissingDotEnv(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("a missing .env must not fail: %v", err)
	}
}

func TestDSN(t *testing.T) {
	c := Config{DBPath: "/tmp/a.db", BusyTimeout: 2 * time.Second}

	expected := "/tmp/a.db?_busy_timeout=2000&_txlock=immediate&_foreign_keys=1&_journal_mode=WAL"
	if actual := c.DSN(); actual != expected {
		t.Errorf("expected %s got %s", expected, actual)
	}
}

func TestDSNBusyTimeoutCappedToMatchTimeout(t *testing.T) {
	c := Config{DBPath: "a.db", BusyTimeout: 3 * time.Second, MatchTimeout: 300 * time.Millisecond}

	if d := c.SQLiteBusyTimeout(); d != 300*time.Millisecond {
		t.Errorf("expected the busy timeout to be capped to 300ms, got %s", d)
	}
	if !strings.Contains(c.DSN(), "_busy_timeout=300&") {
		t.Errorf("expected a 300ms busy timeout in %s", c.DSN())
	}

	c.BusyTimeout = 100 * time.Millisecond
	if d := c.SQLiteBusyTimeout(); d != 100*time.Millisecond {
		t.Errorf("expected a lower busy timeout to be kept, got %s", d)
	}
}
