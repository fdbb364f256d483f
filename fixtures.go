package main

import (
	"context"
	"fmt"
	"os"
	"touchline/internal/back"
	"touchline/internal/config"

	"github.com/jonboulle/clockwork"
)

func loadFixtures(cfg *config.Config) error {
	b, err := back.New(cfg, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer b.Close()

	return b.LoadFixtures(context.Background())
}

func sweepOnce(cfg *config.Config) error {
	b, err := back.New(cfg, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer b.Close()

	report, err := b.RunDueSweep(context.Background(), b.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(
		os.Stdout, "sweep %s: %d played, %d skipped, %d failed\n",
		report.ID, report.Played, report.Skipped, report.Failed(),
	)

	return report.Err()
}
