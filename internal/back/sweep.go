package back

import (
	"context"
	"fmt"
	"time"
	"touchline/internal/back/rating"
	"touchline/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

// SweepReport sums up a single RunDueSweep.
type SweepReport struct {
	ID        uuid.UUID
	StartedAt time.Time

	Played   int
	Skipped  int // played or cancelled by someone else in the meantime
	Failures []*MatchError
}

func (r SweepReport) Failed() int {
	return len(r.Failures)
}

// Err joins all failures, it is nil if every due match was played.
func (r SweepReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, v := range r.Failures {
		errs = append(errs, v)
	}

	return util.ConcatErrors(errs)
}

// MatchResult is a match that was just played and the resulting club ratings.
type MatchResult struct {
	Match      Match
	Home, Away Club
	HomeDelta  float64
	AwayDelta  float64

	// Discord IDs of the managers, if any.
	HomeManager, AwayManager null.String
}

// RunDueSweep plays every scheduled match due at or before now.
// Each match is played in its own transaction, a failing match is left
// scheduled and reported without preventing the others from being played.
// The returned error is only set if due matches could not be listed or if ctx
// is done before the sweep ends.
func (b *Back) RunDueSweep(ctx context.Context, now time.Time) (SweepReport, error) {
	report := SweepReport{
		ID:        uuid.New(),
		StartedAt: b.clock.Now(),
	}
	logger := log.With().Str("sweep", report.ID.String()).Logger()

	var ids []int64
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ids, err = getDueMatchIDs(tx, now)
		return err
	}); err != nil {
		return report, fmt.Errorf("unable to list due matches: %w", storeError(err))
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("sweep interrupted: %w", err)
		}

		result, err := b.playMatch(ctx, id)
		switch {
		case err != nil:
			matchErr := &MatchError{MatchID: id, Err: err}
			report.Failures = append(report.Failures, matchErr)
			logger.Error().Err(err).Int64("match_id", id).Msg("unable to play match")
		case result == nil:
			report.Skipped++
			logger.Debug().Int64("match_id", id).Msg("match no longer scheduled, skipped")
		default:
			report.Played++
			logger.Info().
				Int64("match_id", id).
				Int("home_goals", result.Match.HomeGoals).
				Int("away_goals", result.Match.AwayGoals).
				Msg("match played")
			b.sendMatchPlayedNotifications(*result)
		}
	}

	if len(ids) > 0 {
		logger.Info().
			Int("due", len(ids)).
			Int("played", report.Played).
			Int("skipped", report.Skipped).
			Int("failed", report.Failed()).
			Dur("took", b.clock.Since(report.StartedAt)).
			Msg("sweep done")
	}

	return report, nil
}

// playMatch returns a nil result if the match was not scheduled anymore.
func (b *Back) playMatch(ctx context.Context, id int64) (*MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.MatchTimeout)
	defer cancel()

	var result *MatchResult
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		match, err := getScheduledMatchByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}

		home, err := getClubByID(tx, match.HomeClubID)
		if err != nil {
			return fmt.Errorf("home club %d: %w", match.HomeClubID, err)
		}
		away, err := getClubByID(tx, match.AwayClubID)
		if err != nil {
			return fmt.Errorf("away club %d: %w", match.AwayClubID, err)
		}

		homeStrength, err := getClubStrength(tx, home.ID)
		if err != nil {
			return err
		}
		awayStrength, err := getClubStrength(tx, away.ID)
		if err != nil {
			return err
		}

		homeGoals, awayGoals := b.simulate(homeStrength, awayStrength)
		ok, err := match.markPlayed(tx, homeGoals, awayGoals, b.clock.Now())
		if err != nil || !ok {
			return err
		}

		homeDelta, awayDelta := rating.Adjust(homeGoals, awayGoals)
		home.Rating = rating.Apply(home.Rating, homeDelta)
		away.Rating = rating.Apply(away.Rating, awayDelta)
		if err := home.updateRating(tx); err != nil {
			return err
		}
		if err := away.updateRating(tx); err != nil {
			return err
		}

		result = &MatchResult{
			Match:     match,
			Home:      home,
			Away:      away,
			HomeDelta: homeDelta,
			AwayDelta: awayDelta,
		}
		result.HomeManager, err = getManagerExternalID(tx, home)
		if err != nil {
			return err
		}
		result.AwayManager, err = getManagerExternalID(tx, away)
		return err
	}); err != nil {
		return nil, storeError(err)
	}

	return result, nil
}

func (b *Back) simulate(homeStrength, awayStrength float64) (int, int) {
	b.rngMu.Lock()
	defer b.rngMu.Unlock()

	return rating.Simulate(homeStrength, awayStrength, b.rng)
}

func getManagerExternalID(tx *sqlx.Tx, club Club) (null.String, error) {
	if !club.IsOwned() {
		return null.String{}, nil
	}

	user, err := getUserByID(tx, club.OwnerID.Int64)
	if err != nil {
		return null.String{}, err
	}

	return null.StringFrom(user.ExternalID), nil
}
