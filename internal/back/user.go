package back

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"touchline/internal/util"
	"unicode/utf8"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const maxUserNameLength = 32

// A User is a person known to the bot, identified by its Discord ID.
type User struct {
	ID         int64
	ExternalID string
	Name       string
	CreatedAt  util.TimeAsTimestamp
}

func NewUser(externalID, name string, now time.Time) User {
	return User{
		ExternalID: externalID,
		Name:       name,
		CreatedAt:  util.NewTimeAsTimestamp(now),
	}
}

func (u *User) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("User").SetMap(squirrel.Eq{
		"ExternalID": u.ExternalID,
		"Name":       u.Name,
		"CreatedAt":  u.CreatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	u.ID, err = res.LastInsertId()
	return err
}

// insertOrGet inserts u unless a User with the same ExternalID exists, u is
// then replaced by the stored one.
func (u *User) insertOrGet(tx *sqlx.Tx) (created bool, _ error) {
	query, args, err := squirrel.Insert("User").SetMap(squirrel.Eq{
		"ExternalID": u.ExternalID,
		"Name":       u.Name,
		"CreatedAt":  u.CreatedAt,
	}).Suffix(`ON CONFLICT ("ExternalID") DO NOTHING`).ToSql()
	if err != nil {
		return false, err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if affected == 0 {
		*u, err = getUserByExternalID(tx, u.ExternalID)
		return false, err
	}

	u.ID, err = res.LastInsertId()
	return true, err
}

func getUserByID(tx *sqlx.Tx, id int64) (User, error) {
	var ret User
	query := `SELECT * FROM User WHERE User.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return User{}, err
	}

	return ret, nil
}

func getUserByExternalID(tx *sqlx.Tx, externalID string) (User, error) {
	var ret User
	query := `SELECT * FROM User WHERE User.ExternalID = ? LIMIT 1`
	if err := tx.Get(&ret, query, externalID); err != nil {
		return User{}, err
	}

	return ret, nil
}

// mustGetUserByExternalID is getUserByExternalID with ErrUserNotFound.
func mustGetUserByExternalID(tx *sqlx.Tx, externalID string) (User, error) {
	user, err := getUserByExternalID(tx, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}

	return user, err
}

func (b *Back) GetUserByExternalID(ctx context.Context, externalID string) (user User, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		user, err = mustGetUserByExternalID(tx, externalID)
		return err
	}); err != nil {
		return User{}, storeError(err)
	}

	return user, nil
}

// EnsureRegistered returns the User matching externalID, creating it if
// needed. The first registration decides the name, an empty name falls back
// to the external ID.
func (b *Back) EnsureRegistered(ctx context.Context, externalID, name string) (user User, _ error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return User{}, errors.New("empty external ID")
	}

	name = cleanUserName(name)
	if name == "" {
		name = externalID
	}

	var created bool
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		existing, err := getUserByExternalID(tx, externalID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		user = NewUser(externalID, name, b.clock.Now())
		created, err = user.insertOrGet(tx)
		return err
	}); err != nil {
		return User{}, storeError(err)
	}

	if created {
		log.Info().Int64("user_id", user.ID).Str("external_id", externalID).Msg("registered user")
	}

	return user, nil
}

func cleanUserName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) <= maxUserNameLength {
		return name
	}

	return string([]rune(name)[:maxUserNameLength])
}
