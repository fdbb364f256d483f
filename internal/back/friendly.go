package back

import (
	"context"
	"touchline/internal/back/schedule"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

// ScheduleFriendly creates a friendly between the club managed by the given
// Discord user, playing at home, and opponentClubID. It kicks off on the next
// kickoff slot and is played by the sweep like any other match.
func (b *Back) ScheduleFriendly(ctx context.Context, externalID string, opponentClubID int64) (Match, error) {
	var (
		match           MatchWithClubs
		opponentManager null.String
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		home, err := getManagedClub(tx, externalID)
		if err != nil {
			return err
		}

		if home.ID == opponentClubID {
			return ErrSameClub
		}

		away, err := mustGetClubByID(tx, opponentClubID)
		if err != nil {
			return err
		}

		now := b.clock.Now()
		at, err := schedule.MustNext(b.kickoff, now)
		if err != nil {
			return err
		}

		match = MatchWithClubs{
			Match:        NewMatch(home.ID, away.ID, at, true, now),
			HomeClubName: home.Name,
			AwayClubName: away.Name,
		}
		if err := match.insert(tx); err != nil {
			return err
		}

		opponentManager, err = getManagerExternalID(tx, away)
		return err
	}); err != nil {
		return Match{}, storeError(err)
	}

	log.Info().
		Int64("match_id", match.ID).
		Int64("home_club_id", match.HomeClubID).
		Int64("away_club_id", match.AwayClubID).
		Time("scheduled_at", match.ScheduledAt.Time()).
		Msg("friendly scheduled")

	if opponentManager.Valid {
		b.sendFriendlyScheduledNotification(opponentManager.String, match)
	}

	return match.Match, nil
}
