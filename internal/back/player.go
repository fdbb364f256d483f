package back

import (
	"touchline/internal/back/rating"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player belongs to at most one Club, the mean rating of a roster is the
// strength of the club on the pitch.
type Player struct {
	ID     int64
	Name   string
	ClubID null.Int
	Rating int
}

func NewPlayer(name string, clubID int64, rating int) Player {
	return Player{
		Name:   name,
		ClubID: null.IntFrom(clubID),
		Rating: rating,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"Name":   p.Name,
		"ClubID": p.ClubID,
		"Rating": p.Rating,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

func getPlayersByClubID(tx *sqlx.Tx, clubID int64) ([]Player, error) {
	var ret []Player
	query := `SELECT * FROM Player WHERE Player.ClubID = ? ORDER BY Player.Rating DESC, Player.ID ASC`
	if err := tx.Select(&ret, query, clubID); err != nil {
		return nil, err
	}

	return ret, nil
}

func getClubStrength(tx *sqlx.Tx, clubID int64) (float64, error) {
	var ratings []int
	query := `SELECT Player.Rating FROM Player WHERE Player.ClubID = ?`
	if err := tx.Select(&ratings, query, clubID); err != nil {
		return 0, err
	}

	return rating.TeamStrength(ratings), nil
}
