package main

import (
	"flag"
	"fmt"
	"os"
	"touchline/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	envFile := flag.String("env", "", "load variables from this file instead of .env")
	migrations := flag.String("migrations", "resources/migrations", "path to the SQL migrations directory")
	flag.Parse()

	command := flag.Arg(0)
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "Touchline %s\n", Version)
		return
	case "help":
		fmt.Fprint(os.Stdout, help())
		return
	case "serve", "migrate", "fixtures", "sweep":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}
	setupLogger(cfg)

	if err := run(command, cfg, *migrations); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func run(command string, cfg *config.Config, migrations string) error {
	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		return migrateUp(cfg, migrations)
	case "fixtures":
		return loadFixtures(cfg)
	case "sweep":
		return sweepOnce(cfg)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func help() string {
	return fmt.Sprintf(`
Touchline is a Discord football manager: claim a club, challenge other
clubs, and watch the match engine play your fixtures.

Usage: %[1]s [-env FILE] [-migrations DIR] COMMAND

COMMANDS
    fixtures  create default clubs and players for quick testing during development
    help      display this help
    migrate   apply the database migrations
    serve     start the Discord bot, the HTTP API, and the match engine
    sweep     play the due matches once and exit
    version   display the current version

Configuration is read from the environment and an optional .env file, see
the TOUCHLINE_* variables in internal/config.
`,
		os.Args[0],
	)
}
