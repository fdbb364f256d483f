package bot

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"touchline/internal/back"
	"touchline/internal/back/rating"
	"touchline/internal/util"

	"github.com/bwmarrin/discordgo"
)

const matchesListSize = 10

func parseClubID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, util.ErrPublic("expected a single argument: CLUB_ID")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrPublic(fmt.Sprintf("invalid club ID: %q", args[0]))
	}

	return id, nil
}

func (bot *Bot) cmdClubs(ctx context.Context, _ *discordgo.Message, _ []string, out io.Writer) error {
	clubs, err := bot.back.GetClubs(ctx)
	if err != nil {
		return err
	}

	if len(clubs) == 0 {
		fmt.Fprint(out, "There is no club yet.")
		return nil
	}

	fmt.Fprintln(out, "```")
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(table, "id\tname\trating\tmanager")
	fmt.Fprintln(table, "\t\t\t")
	for _, club := range clubs {
		manager := "(available)"
		if club.OwnerName.Valid {
			manager = club.OwnerName.String
		}
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", club.ID, club.Name, util.Rating(club.Rating), manager)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}

func (bot *Bot) cmdClaim(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	clubID, err := parseClubID(args)
	if err != nil {
		return err
	}

	club, err := bot.back.ClaimByExternalID(ctx, m.Author.ID, clubID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "You are now the manager of **%s**, good luck!", club.Name)
	return nil
}

func (bot *Bot) cmdFriendly(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	clubID, err := parseClubID(args)
	if err != nil {
		return err
	}

	match, err := bot.back.ScheduleFriendly(ctx, m.Author.ID, clubID)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out, "Friendly #%d scheduled for %s (in %s).",
		match.ID,
		util.Datetime(match.ScheduledAt),
		util.FormatDuration(match.ScheduledAt.Time().Sub(bot.back.Now())),
	)
	return nil
}

func (bot *Bot) cmdMatches(ctx context.Context, m *discordgo.Message, _ []string, out io.Writer) error {
	club, matches, err := bot.back.GetManagedClubMatches(ctx, m.Author.ID, matchesListSize)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(out, "**%s** has no match yet, challenge a club with `!friendly CLUB_ID`.", club.Name)
		return nil
	}

	fmt.Fprintf(out, "Latest matches of **%s**:\n```\n", club.Name)
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(table, "#\tdate\thome\tscore\taway\t")
	for _, match := range matches {
		fmt.Fprintf(
			table, "%d\t%s\t%s\t%s\t%s\t%s\n",
			match.ID, util.Datetime(match.ScheduledAt),
			match.HomeClubName, formatScore(match.Match), match.AwayClubName,
			formatOutcome(club.ID, match.Match),
		)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}

func formatScore(match back.Match) string {
	switch match.Status {
	case back.MatchStatusPlayed:
		return fmt.Sprintf("%d-%d", match.HomeGoals, match.AwayGoals)
	case back.MatchStatusCancelled:
		return "cancelled"
	default:
		return "vs"
	}
}

// formatOutcome returns W/D/L from the point of view of clubID.
func formatOutcome(clubID int64, match back.Match) string {
	if match.Status != back.MatchStatusPlayed {
		if match.IsFriendly {
			return "friendly"
		}
		return ""
	}

	outcome := rating.Outcome(match.HomeGoals, match.AwayGoals)
	if match.AwayClubID == clubID {
		outcome = -outcome
	}

	switch outcome {
	case rating.ResultHomeWin:
		return "W"
	case rating.ResultAwayWin:
		return "L"
	default:
		return "D"
	}
}
