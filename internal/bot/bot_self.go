package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"touchline/internal/back"
	"touchline/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdRegister(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	name := argsAsName(args)
	if name == "" {
		name = m.Author.Username
	}

	if user, err := bot.back.GetUserByExternalID(ctx, m.Author.ID); err == nil {
		fmt.Fprintf(out, "You are already registered as `%s`.", user.Name)
		return nil
	} else if !errors.Is(err, back.ErrUserNotFound) {
		return err
	}

	user, err := bot.back.EnsureRegistered(ctx, m.Author.ID, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "You have been registered as `%s`, claim a club with `!claim CLUB_ID`.", user.Name)
	return nil
}

func (bot *Bot) cmdMe(ctx context.Context, m *discordgo.Message, _ []string, out io.Writer) error {
	user, err := bot.back.GetUserByExternalID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "You are registered as `%s` since %s.\n", user.Name, util.Datetime(user.CreatedAt))

	club, err := bot.back.GetManagedClub(ctx, m.Author.ID)
	if err != nil {
		if errors.Is(err, back.ErrNotManaging) {
			fmt.Fprint(out, "You do not manage any club yet, see `!clubs`.")
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "You manage **%s** (#%d), rated %s.", club.Name, club.ID, util.Rating(club.Rating))
	return nil
}
