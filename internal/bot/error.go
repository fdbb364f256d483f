package bot

import (
	"errors"
	"touchline/internal/back"
	"touchline/internal/util"
)

var publicErrors = []struct {
	err error
	msg util.ErrPublic
}{
	{back.ErrUserNotFound, "you are not registered yet, send `!register` first"},
	{back.ErrClubNotFound, "there is no such club, see `!clubs`"},
	{back.ErrAlreadyOwned, "this club already has a manager"},
	{back.ErrAlreadyManaging, "you already manage a club"},
	{back.ErrNotManaging, "you do not manage any club, see `!claim`"},
	{back.ErrSameClub, "your club cannot play against itself"},
	{back.ErrStoreUnavailable, "the server is busy, please try again in a moment"},
}

// publicError turns the back errors users can act upon into messages they
// can read, other errors are returned unchanged.
func publicError(err error) error {
	for _, v := range publicErrors {
		if errors.Is(err, v.err) {
			return v.msg
		}
	}

	return err
}
