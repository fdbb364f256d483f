package back

import (
	"context"
	"fmt"
	"touchline/internal/back/schedule"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// RosterSize is the number of players fixtures give to each club.
const RosterSize = 11

type fixtureClub struct {
	name       string
	baseRating int
}

var fixtureClubs = []fixtureClub{
	{"Ashford Rovers", 72},
	{"Brackwater United", 64},
	{"Castleton Athletic", 58},
	{"Dunmore Wanderers", 51},
	{"Eastbridge Town", 45},
	{"Fellside Albion", 38},
}

var fixtureSurnames = []string{
	"Abbott", "Barnes", "Carver", "Dalton", "Ellery", "Fenwick",
	"Garside", "Hollis", "Ingram", "Jarvis", "Kemp",
}

// fixturePlayerRating spreads ratings around base, always within [1, 99].
func fixturePlayerRating(base, i int) int {
	v := base + (i*7)%11 - 5
	switch {
	case v < 1:
		return 1
	case v > 99:
		return 99
	default:
		return v
	}
}

// LoadFixtures creates a set of unmanaged clubs with their rosters and a
// first round of league matches on the next kickoff slot.
func (b *Back) LoadFixtures(ctx context.Context) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		now := b.clock.Now()
		clubs := make([]Club, 0, len(fixtureClubs))

		for _, v := range fixtureClubs {
			club := NewClub(v.name, now)
			if err := club.insert(tx); err != nil {
				return fmt.Errorf("unable to insert club %s: %w", v.name, err)
			}
			clubs = append(clubs, club)

			for i := 0; i < RosterSize; i++ {
				name := fmt.Sprintf("%s %s", fixtureSurnames[i], v.name[:1])
				player := NewPlayer(name, club.ID, fixturePlayerRating(v.baseRating, i))
				if err := player.insert(tx); err != nil {
					return err
				}
			}
		}

		at, err := schedule.MustNext(b.kickoff, now)
		if err != nil {
			return err
		}

		for i := 0; i+1 < len(clubs); i += 2 {
			match := NewMatch(clubs[i].ID, clubs[i+1].ID, at, false, now)
			if err := match.insert(tx); err != nil {
				return err
			}
		}

		log.Info().Int("clubs", len(clubs)).Time("kickoff", at).Msg("fixtures loaded")
		return nil
	})
}
