package back

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"touchline/internal/back/rating"
	"touchline/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

// A Club can be claimed by a single User, once, and never released.
type Club struct {
	ID        int64
	Name      string
	OwnerID   null.Int
	Rating    float64
	CreatedAt util.TimeAsTimestamp
}

// ClubWithOwner is a Club and the display name of its manager, if any.
type ClubWithOwner struct {
	Club
	OwnerName null.String
}

func NewClub(name string, now time.Time) Club {
	return Club{
		Name:      name,
		Rating:    rating.DefaultClubRating,
		CreatedAt: util.NewTimeAsTimestamp(now),
	}
}

func (c *Club) IsOwned() bool {
	return c.OwnerID.Valid
}

func (c *Club) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Club").SetMap(squirrel.Eq{
		"Name":      c.Name,
		"OwnerID":   c.OwnerID,
		"Rating":    c.Rating,
		"CreatedAt": c.CreatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	c.ID, err = res.LastInsertId()
	return err
}

// updateRating is the only write the match engine does on a Club.
func (c *Club) updateRating(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Club").
		Set("Rating", c.Rating).
		Where("Club.ID = ?", c.ID).
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(query, args...)
	return err
}

func getClubByID(tx *sqlx.Tx, id int64) (Club, error) {
	var ret Club
	query := `SELECT * FROM Club WHERE Club.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Club{}, err
	}

	return ret, nil
}

func mustGetClubByID(tx *sqlx.Tx, id int64) (Club, error) {
	club, err := getClubByID(tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Club{}, ErrClubNotFound
	}

	return club, err
}

func getClubByOwnerID(tx *sqlx.Tx, userID int64) (Club, error) {
	var ret Club
	query := `SELECT * FROM Club WHERE Club.OwnerID = ? LIMIT 1`
	if err := tx.Get(&ret, query, userID); err != nil {
		return Club{}, err
	}

	return ret, nil
}

func getClubsWithOwner(tx *sqlx.Tx) ([]ClubWithOwner, error) {
	var ret []ClubWithOwner
	query := `
        SELECT Club.*, User.Name AS OwnerName
        FROM Club
        LEFT JOIN User ON (User.ID = Club.OwnerID)
        ORDER BY Club.ID ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

// Claim assigns clubID to userID if and only if the club has no manager yet.
// Concurrent claims on the same club are decided by a single conditional
// UPDATE: exactly one caller affects the row, the others get ErrAlreadyOwned.
func (b *Back) Claim(ctx context.Context, userID, clubID int64) (club Club, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getUserByID(tx, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		var err error
		club, err = claim(tx, userID, clubID)
		return err
	}); err != nil {
		return Club{}, storeError(err)
	}

	log.Info().Int64("user_id", userID).Int64("club_id", clubID).Msg("club claimed")
	return club, nil
}

// ClaimByExternalID is Claim for a User known by its Discord ID.
func (b *Back) ClaimByExternalID(ctx context.Context, externalID string, clubID int64) (club Club, _ error) {
	var userID int64
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		user, err := mustGetUserByExternalID(tx, externalID)
		if err != nil {
			return err
		}
		userID = user.ID

		club, err = claim(tx, user.ID, clubID)
		return err
	}); err != nil {
		return Club{}, storeError(err)
	}

	log.Info().Int64("user_id", userID).Int64("club_id", clubID).Msg("club claimed")
	return club, nil
}

func claim(tx *sqlx.Tx, userID, clubID int64) (Club, error) {
	query, args, err := squirrel.Update("Club").
		Set("OwnerID", userID).
		Where(squirrel.Eq{"ID": clubID, "OwnerID": nil}).
		ToSql()
	if err != nil {
		return Club{}, err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		if util.IsUniqueViolation(err) {
			return Club{}, ErrAlreadyManaging
		}
		return Club{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Club{}, err
	}

	if affected == 0 {
		// Lost the race or never had a chance, tell which.
		if _, err := mustGetClubByID(tx, clubID); err != nil {
			return Club{}, err
		}
		return Club{}, ErrAlreadyOwned
	}

	return getClubByID(tx, clubID)
}

func (b *Back) GetClubs(ctx context.Context) (clubs []ClubWithOwner, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		clubs, err = getClubsWithOwner(tx)
		return err
	}); err != nil {
		return nil, storeError(err)
	}

	return clubs, nil
}

// GetClub returns a Club and its roster.
func (b *Back) GetClub(ctx context.Context, id int64) (club Club, players []Player, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		club, err = mustGetClubByID(tx, id)
		if err != nil {
			return err
		}

		players, err = getPlayersByClubID(tx, id)
		return err
	}); err != nil {
		return Club{}, nil, storeError(err)
	}

	return club, players, nil
}

// GetManagedClub returns the Club managed by the given Discord user.
func (b *Back) GetManagedClub(ctx context.Context, externalID string) (club Club, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		club, err = getManagedClub(tx, externalID)
		return err
	}); err != nil {
		return Club{}, storeError(err)
	}

	return club, nil
}

func getManagedClub(tx *sqlx.Tx, externalID string) (Club, error) {
	user, err := mustGetUserByExternalID(tx, externalID)
	if err != nil {
		return Club{}, err
	}

	club, err := getClubByOwnerID(tx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Club{}, ErrNotManaging
	}

	return club, err
}
