// Package rating holds the match engine maths: how strong a club is, how
// many goals each side scores, and how a result moves club ratings.
// Everything here is pure, randomness is injected through Source.
package rating

import "math"

const (
	// EmptyRosterStrength is the strength of a club without any player, it
	// still has to field a team.
	EmptyRosterStrength = 35.0

	// DefaultClubRating is the rating of a club that never played.
	DefaultClubRating = 50.0

	// DefaultPlayerRating is the rating given to players when none is set.
	DefaultPlayerRating = 50

	// Floor is the lowest rating a club can have.
	Floor = 1.0

	// WinDelta is won by the winner and lost by the loser.
	WinDelta = 1.0

	// DrawDelta is won by the home side and lost by the away side on a draw.
	DrawDelta = 0.2

	baseExpectedGoals = 0.8
	minExpectedGoals  = 0.1
	strengthDivisor   = 100.0
	diffDivisor       = 150.0
	goalsStdDev       = 1.0
)

// Source provides normally distributed values, *math/rand.Rand satisfies it.
type Source interface {
	NormFloat64() float64
}

type Result int

const (
	ResultAwayWin Result = -1
	ResultDraw    Result = 0
	ResultHomeWin Result = 1
)

// Outcome returns the result of a match from the home side point of view.
func Outcome(homeGoals, awayGoals int) Result {
	switch {
	case homeGoals > awayGoals:
		return ResultHomeWin
	case homeGoals < awayGoals:
		return ResultAwayWin
	default:
		return ResultDraw
	}
}

// TeamStrength is the mean rating of a roster.
func TeamStrength(ratings []int) float64 {
	if len(ratings) == 0 {
		return EmptyRosterStrength
	}

	var sum int
	for _, v := range ratings {
		sum += v
	}

	return float64(sum) / float64(len(ratings))
}

// ExpectedGoals returns the mean number of goals each side should score.
// Both sides get the same baseline plus their own strength term, the
// strength difference is then added to one side and removed from the other.
func ExpectedGoals(home, away float64) (float64, float64) {
	diff := (home - away) / diffDivisor
	homeExpected := baseExpectedGoals + home/strengthDivisor + diff
	awayExpected := baseExpectedGoals + away/strengthDivisor - diff

	return math.Max(minExpectedGoals, homeExpected), math.Max(minExpectedGoals, awayExpected)
}

// Simulate draws the final score of a match between two strengths.
// Home goals are drawn before away goals, a deterministic Source thus yields
// a deterministic score.
func Simulate(home, away float64, rng Source) (homeGoals, awayGoals int) {
	homeExpected, awayExpected := ExpectedGoals(home, away)

	return drawGoals(homeExpected, rng), drawGoals(awayExpected, rng)
}

func drawGoals(expected float64, rng Source) int {
	v := math.RoundToEven(expected + rng.NormFloat64()*goalsStdDev)
	if v < 0 || math.IsNaN(v) {
		return 0
	}

	return int(v)
}

// Adjust returns the rating deltas to apply to both clubs after a match.
// A draw favors the home side: it gains DrawDelta and the away side loses
// the same amount.
func Adjust(homeGoals, awayGoals int) (homeDelta, awayDelta float64) {
	switch Outcome(homeGoals, awayGoals) {
	case ResultHomeWin:
		return WinDelta, -WinDelta
	case ResultAwayWin:
		return -WinDelta, WinDelta
	default:
		return DrawDelta, -DrawDelta
	}
}

// Apply returns rating+delta, never lower than Floor.
func Apply(rating, delta float64) float64 {
	return math.Max(Floor, rating+delta)
}
