package main

import (
	"context"
	"os/signal"
	"syscall"
	"touchline/internal/back"
	"touchline/internal/bot"
	"touchline/internal/config"
	"touchline/internal/web"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := back.New(cfg, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer b.Close()

	var discord *bot.Bot
	if cfg.DiscordToken != "" {
		discord, err = bot.New(b, cfg)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.Run(ctx)
	})

	g.Go(func() error {
		return web.NewServer(b, cfg.HTTPAddress).Serve(ctx)
	})

	if discord != nil {
		g.Go(func() error {
			return discord.Serve(ctx)
		})
	} else {
		log.Warn().Msg("no Discord token, the bot is disabled")
		g.Go(func() error {
			discardNotifications(ctx, b)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// discardNotifications logs what the bot would have sent.
func discardNotifications(ctx context.Context, b *back.Back) {
	notifications := b.GetNotificationsChan()
	for {
		select {
		case notif := <-notifications:
			log.Debug().Str("notification", notif.String()).Msg("notification discarded")
		case <-ctx.Done():
			return
		}
	}
}
