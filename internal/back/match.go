package back

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"touchline/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type MatchStatus string

const ( // this is stored in DB, don't change values
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusPlayed    MatchStatus = "played"
	MatchStatusCancelled MatchStatus = "cancelled"
)

func ParseMatchStatus(str string) (MatchStatus, error) {
	switch s := MatchStatus(str); s {
	case MatchStatusScheduled, MatchStatusPlayed, MatchStatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("invalid match status: %q", str)
	}
}

// A Match goes from scheduled to played exactly once, goals are only
// meaningful once played.
type Match struct {
	ID          int64
	HomeClubID  int64
	AwayClubID  int64
	ScheduledAt util.TimeAsTimestamp
	Status      MatchStatus
	HomeGoals   int
	AwayGoals   int
	IsFriendly  bool
	CreatedAt   util.TimeAsTimestamp
	PlayedAt    util.NullTimeAsTimestamp
}

// MatchWithClubs is a Match with the names of both sides.
type MatchWithClubs struct {
	Match
	HomeClubName string
	AwayClubName string
}

func NewMatch(homeClubID, awayClubID int64, scheduledAt time.Time, isFriendly bool, now time.Time) Match {
	return Match{
		HomeClubID:  homeClubID,
		AwayClubID:  awayClubID,
		ScheduledAt: util.NewTimeAsTimestamp(ceilSecond(scheduledAt)),
		Status:      MatchStatusScheduled,
		IsFriendly:  isFriendly,
		CreatedAt:   util.NewTimeAsTimestamp(now),
	}
}

// ceilSecond rounds t up to the second, timestamps are stored truncated and
// a match must not be due before its kickoff.
func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); truncated.Before(t) {
		return truncated.Add(time.Second)
	}

	return t
}

func (m *Match) insert(tx *sqlx.Tx) error {
	if m.HomeClubID == m.AwayClubID {
		return ErrSameClub
	}

	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"HomeClubID":  m.HomeClubID,
		"AwayClubID":  m.AwayClubID,
		"ScheduledAt": m.ScheduledAt,
		"Status":      m.Status,
		"HomeGoals":   m.HomeGoals,
		"AwayGoals":   m.AwayGoals,
		"IsFriendly":  m.IsFriendly,
		"CreatedAt":   m.CreatedAt,
		"PlayedAt":    m.PlayedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	m.ID, err = res.LastInsertId()
	return err
}

// markPlayed records the final score, it returns false if the match was not
// in the scheduled state anymore and nothing was written.
func (m *Match) markPlayed(tx *sqlx.Tx, homeGoals, awayGoals int, playedAt time.Time) (bool, error) {
	at := util.NewNullTimeAsTimestamp(playedAt)
	query, args, err := squirrel.Update("Match").SetMap(squirrel.Eq{
		"HomeGoals": homeGoals,
		"AwayGoals": awayGoals,
		"Status":    MatchStatusPlayed,
		"PlayedAt":  at,
	}).Where(squirrel.Eq{
		"ID":     m.ID,
		"Status": MatchStatusScheduled,
	}).ToSql()
	if err != nil {
		return false, err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return false, err
	}

	m.HomeGoals, m.AwayGoals = homeGoals, awayGoals
	m.Status, m.PlayedAt = MatchStatusPlayed, at

	return true, nil
}

func getMatchByID(tx *sqlx.Tx, id int64) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Match{}, err
	}

	return ret, nil
}

func getScheduledMatchByID(tx *sqlx.Tx, id int64) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? AND Match.Status = ? LIMIT 1`
	if err := tx.Get(&ret, query, id, MatchStatusScheduled); err != nil {
		return Match{}, err
	}

	return ret, nil
}

func getDueMatchIDs(tx *sqlx.Tx, now time.Time) ([]int64, error) {
	var ret []int64
	query := `
        SELECT Match.ID FROM Match
        WHERE Match.Status = ? AND Match.ScheduledAt <= ?
        ORDER BY Match.ScheduledAt ASC, Match.ID ASC`
	if err := tx.Select(&ret, query, MatchStatusScheduled, util.NewTimeAsTimestamp(now)); err != nil {
		return nil, err
	}

	return ret, nil
}

const matchWithClubsQuery = `
    SELECT Match.*, Home.Name AS HomeClubName, Away.Name AS AwayClubName
    FROM Match
    INNER JOIN Club AS Home ON (Home.ID = Match.HomeClubID)
    INNER JOIN Club AS Away ON (Away.ID = Match.AwayClubID)`

func getMatchesByStatus(tx *sqlx.Tx, status MatchStatus, limit int) ([]MatchWithClubs, error) {
	order := "DESC"
	if status == MatchStatusScheduled {
		order = "ASC"
	}

	var ret []MatchWithClubs
	query := matchWithClubsQuery + `
    WHERE Match.Status = ?
    ORDER BY Match.ScheduledAt ` + order + `, Match.ID ` + order + `
    LIMIT ?`
	if err := tx.Select(&ret, query, status, limit); err != nil {
		return nil, err
	}

	return ret, nil
}

func getMatchesByClubID(tx *sqlx.Tx, clubID int64, limit int) ([]MatchWithClubs, error) {
	var ret []MatchWithClubs
	query := matchWithClubsQuery + `
    WHERE Match.HomeClubID = ? OR Match.AwayClubID = ?
    ORDER BY Match.ScheduledAt DESC, Match.ID DESC
    LIMIT ?`
	if err := tx.Select(&ret, query, clubID, clubID, limit); err != nil {
		return nil, err
	}

	return ret, nil
}

func (b *Back) GetMatch(ctx context.Context, id int64) (match Match, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, id)
		return err
	}); err != nil {
		return Match{}, storeError(err)
	}

	return match, nil
}

// GetMatches returns up to limit matches in the given state, upcoming ones
// first for scheduled matches, latest ones first otherwise.
func (b *Back) GetMatches(ctx context.Context, status MatchStatus, limit int) (matches []MatchWithClubs, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		matches, err = getMatchesByStatus(tx, status, limit)
		return err
	}); err != nil {
		return nil, storeError(err)
	}

	return matches, nil
}

// GetManagedClubMatches returns the latest matches of the club managed by the
// given Discord user.
func (b *Back) GetManagedClubMatches(ctx context.Context, externalID string, limit int) (
	club Club,
	matches []MatchWithClubs,
	_ error,
) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		club, err = getManagedClub(tx, externalID)
		if err != nil {
			return err
		}

		matches, err = getMatchesByClubID(tx, club.ID, limit)
		return err
	}); err != nil {
		return Club{}, nil, storeError(err)
	}

	return club, matches, nil
}

// ScheduleMatch creates a league match between two clubs.
func (b *Back) ScheduleMatch(ctx context.Context, homeClubID, awayClubID int64, at time.Time) (match Match, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		for _, id := range []int64{homeClubID, awayClubID} {
			if _, err := mustGetClubByID(tx, id); err != nil {
				return err
			}
		}

		match = NewMatch(homeClubID, awayClubID, at, false, b.clock.Now())
		return match.insert(tx)
	}); err != nil {
		return Match{}, storeError(err)
	}

	return match, nil
}

// isNotFound is true for a missing row, whatever the entity.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
