package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"touchline/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

func migrateUp(cfg *config.Config, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	migrator, err := migrate.New("file://"+filepath.ToSlash(abs), "sqlite3://"+cfg.DBPath)
	if err != nil {
		return fmt.Errorf("unable to create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database already up to date")
			return nil
		}
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrated")
	return nil
}
