package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"
	"touchline/internal/back"
	"touchline/internal/config"
	"touchline/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// commandTimeout bounds the time spent by the back on a single command.
const commandTimeout = 10 * time.Second

type commandHandler func(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session
	limiter   *userLimiter

	handlers map[string]commandHandler
}

func New(back *back.Back, cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		back:      back,
		config:    cfg,
		dg:        dg,
		startedAt: back.Now(),
		limiter:   newUserLimiter(clockwork.NewRealClock(), cfg.CommandRate, cfg.CommandBurst),
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!dev":      bot.cmdDev,
		"!help":     bot.cmdHelp,
		"!register": bot.cmdRegister,
		"!me":       bot.cmdMe,

		"!claim":    bot.cmdClaim,
		"!clubs":    bot.cmdClubs,
		"!friendly": bot.cmdFriendly,
		"!matches":  bot.cmdMatches,
	}

	return bot, nil
}

// Serve connects to Discord and relays the back notifications until ctx is
// done.
func (bot *Bot) Serve(ctx context.Context) error {
	log.Info().Msg("starting Discord bot")
	if err := bot.dg.Open(); err != nil {
		return fmt.Errorf("unable to connect to Discord: %w", err)
	}

	notifications := bot.back.GetNotificationsChan()
	for {
		select {
		case notif := <-notifications:
			if err := bot.sendNotification(notif); err != nil {
				log.Error().Err(err).Str("notification", notif.String()).Msg("unable to send notification")
			}
		case <-ctx.Done():
			if err := bot.dg.Close(); err != nil {
				log.Error().Err(err).Msg("could not close Discord bot")
			}
			return nil
		}
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	logger := log.With().
		Str("author", m.Author.String()).
		Str("author_id", m.Author.ID).
		Str("guild_id", m.GuildID).
		Str("channel_id", m.ChannelID).
		Logger()
	logger.Info().Str("content", m.Content).Msg("command received")

	if bot.config.IsDiscordIDBanned(m.Author.ID) {
		logger.Info().Msg("ignoring banned user")
		return
	}

	if !bot.limiter.Allow(m.Author.ID) {
		logger.Warn().Msg("rate limited")
		return
	}

	out, err := newUserChannelWriter(s, m.Author.ID)
	if err != nil {
		logger.Error().Err(err).Msg("could not create channel writer")
		return
	}
	defer func() {
		if err := out.Flush(); err != nil {
			logger.Error().Err(err).Msg("could not send message")
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, an admin will have a look at the logs.")
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("command panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := bot.dispatch(ctx, m.Message, out); err != nil {
		out.Reset()
		writeError(out, err)
		logger.Error().Err(err).Msg("failed to process command")
	}

	if err := bot.maybeCleanupMessage(s, m.ChannelID, m.Message.ID); err != nil {
		logger.Error().Err(err).Msg("unable to cleanup message")
	}
}

func writeError(w io.Writer, err error) {
	fmt.Fprintln(w, "There was an error processing your command.")

	err = publicError(err)
	if errors.Is(err, util.ErrPublic("")) {
		fmt.Fprintf(w, "```%s\n```\nIf you need help, send `!help`.", err)
	} else {
		fmt.Fprint(w, "An admin will check the logs.")
	}
}

// maybeCleanupMessage removes commands sent in guild channels, replies are
// always private.
func (bot *Bot) maybeCleanupMessage(s *discordgo.Session, channelID string, messageID string) error {
	channel, err := s.Channel(channelID)
	if err != nil {
		return err
	}

	if channel.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	return s.ChannelMessageDelete(channelID, messageID)
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Fields(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(ctx context.Context, m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	handler, ok := bot.handlers[command]
	if !ok {
		return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}

	return handler(ctx, m, args, w)
}

func (bot *Bot) cmdHelp(_ context.Context, m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Management
!help               # display this help message
!register [NAME]    # create your account, NAME defaults to your Discord name
!me                 # display your account and club

# Clubs
!clubs              # list clubs and their managers
!claim CLUB_ID      # become the manager of a club without one, this is final
!friendly CLUB_ID   # challenge another club on the next kick-off slot
!matches            # list the latest and upcoming matches of your club
'''`, "'''", "```"))

	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`Admin-only commands:
'''
!dev error     error out
!dev panic     panic and abort
!dev sweep     play the due matches now
!dev uptime    display for how long the server has been running
!dev url       display the link to use when adding the bot to a new server
'''`, "'''", "```"))

	return nil
}

func argsAsName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
