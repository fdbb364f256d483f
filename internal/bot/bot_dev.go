package bot

import (
	"context"
	"fmt"
	"io"
	"touchline/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdDev(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return fmt.Errorf("!dev command ran by a non-admin: %v", args)
	}
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] {
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(out, "The bot has been online for %s", util.FormatDuration(bot.back.Now().Sub(bot.startedAt)))
	case "error":
		return util.ErrPublic("here's your error")
	case "sweep":
		report, err := bot.back.RunDueSweep(ctx, bot.back.Now())
		if err != nil {
			return err
		}

		fmt.Fprintf(
			out, "Sweep `%s`: %d played, %d skipped, %d failed.",
			report.ID, report.Played, report.Skipped, report.Failed(),
		)
		if err := report.Err(); err != nil {
			fmt.Fprintf(out, "\n```%s\n```", err)
		}
	case "url":
		fmt.Fprintf(
			out,
			"https://discordapp.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|
				discordgo.PermissionManageMessages,
		)
	default:
		return util.ErrPublic(fmt.Sprintf("unknown subcommand: %s", args[0]))
	}

	return nil
}
