package rating_test

import (
	"math"
	"math/rand"
	"testing"
	"touchline/internal/back/rating"
)

// scripted returns its values in order, then zeroes.
type scripted struct {
	values []float64
}

func (s *scripted) NormFloat64() float64 {
	if len(s.values) == 0 {
		return 0
	}

	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestTeamStrength(t *testing.T) {
	cases := []struct {
		ratings  []int
		expected float64
	}{
		{nil, rating.EmptyRosterStrength},
		{[]int{}, rating.EmptyRosterStrength},
		{[]int{70, 70, 70}, 70},
		{[]int{1, 2}, 1.5},
		{[]int{90, 10, 50, 30}, 45},
	}

	for k, v := range cases {
		if actual := rating.TeamStrength(v.ratings); actual != v.expected {
			t.Errorf("case #%d: expected %v got %v", k, v.expected, actual)
		}
	}
}

func TestExpectedGoals(t *testing.T) {
	home, away := rating.ExpectedGoals(60, 40)
	if math.Abs(home-1.5333) > 1e-3 || math.Abs(away-1.0667) > 1e-3 {
		t.Errorf("expected (1.533, 1.067) got (%.3f, %.3f)", home, away)
	}

	// Expected goals are symmetric around the baseline.
	if d := (home - (0.8 + 0.6)) + (away - (0.8 + 0.4)); math.Abs(d) > 1e-9 {
		t.Errorf("differential term is not zero-sum: %v", d)
	}

	home, away = rating.ExpectedGoals(0, 300)
	if home != 0.1 {
		t.Errorf("expected home to be clamped to 0.1, got %v", home)
	}
	if math.Abs(away-5.8) > 1e-9 {
		t.Errorf("expected away 5.8, got %v", away)
	}
}

func TestSimulateScripted(t *testing.T) {
	cases := []struct {
		noise          []float64
		home, away     int
		homeStrength   float64
		awayStrength   float64
		expectedResult rating.Result
	}{
		{[]float64{0, 0}, 2, 1, 60, 40, rating.ResultHomeWin},
		{[]float64{1.2, -3.0}, 3, 0, 60, 40, rating.ResultHomeWin},
		{[]float64{-5, -5}, 0, 0, 60, 40, rating.ResultDraw},
		{[]float64{0, 1}, 1, 3, 40, 60, rating.ResultAwayWin},
	}

	for k, v := range cases {
		home, away := rating.Simulate(v.homeStrength, v.awayStrength, &scripted{values: v.noise})
		if home != v.home || away != v.away {
			t.Errorf("case #%d: expected %d-%d got %d-%d", k, v.home, v.away, home, away)
		}

		if res := rating.Outcome(home, away); res != v.expectedResult {
			t.Errorf("case #%d: expected result %d got %d", k, v.expectedResult, res)
		}
	}
}

func TestSimulateSeededIsDeterministic(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		h1, a1 := rating.Simulate(60.0, 40.0, rand.New(rand.NewSource(seed)))
		h2, a2 := rating.Simulate(60.0, 40.0, rand.New(rand.NewSource(seed)))

		if h1 != h2 || a1 != a2 {
			t.Errorf("seed %d: got %d-%d then %d-%d", seed, h1, a1, h2, a2)
		}

		if h1 < 0 || a1 < 0 {
			t.Errorf("seed %d: negative goals %d-%d", seed, h1, a1)
		}
	}
}

func TestSimulateStrongerSideScoresMore(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var strong, weak int
	for i := 0; i < 2000; i++ {
		h, a := rating.Simulate(70, 30, rng)
		strong += h
		weak += a
	}

	if strong <= weak {
		t.Errorf("expected the stronger home side to score more, got %d vs %d", strong, weak)
	}
}

func TestAdjust(t *testing.T) {
	cases := []struct {
		home, away         int
		homeDelta, awayDel float64
	}{
		{2, 1, rating.WinDelta, -rating.WinDelta},
		{0, 3, -rating.WinDelta, rating.WinDelta},
		// Draws nudge the home side up and the away side down.
		{1, 1, rating.DrawDelta, -rating.DrawDelta},
		{0, 0, 0.2, -0.2},
	}

	for k, v := range cases {
		h, a := rating.Adjust(v.home, v.away)
		if h != v.homeDelta || a != v.awayDel {
			t.Errorf("case #%d: expected (%v, %v) got (%v, %v)", k, v.homeDelta, v.awayDel, h, a)
		}
	}
}

func TestApplyFloor(t *testing.T) {
	cases := []struct {
		rating, delta, expected float64
	}{
		{50, 1, 51},
		{50, -1, 49},
		{1.5, -1, rating.Floor},
		{1, -0.2, rating.Floor},
		{1, 0.2, 1.2},
	}

	for k, v := range cases {
		if actual := rating.Apply(v.rating, v.delta); math.Abs(actual-v.expected) > 1e-9 {
			t.Errorf("case #%d: expected %v got %v", k, v.expected, actual)
		}
	}
}

func TestRatingNeverBelowFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	home, away := rating.DefaultClubRating, 3.0

	for i := 0; i < 5000; i++ {
		h, a := rating.Simulate(90, 10, rng)
		dh, da := rating.Adjust(h, a)
		home, away = rating.Apply(home, dh), rating.Apply(away, da)

		if home < rating.Floor || away < rating.Floor {
			t.Fatalf("match #%d: rating below floor: %v / %v", i, home, away)
		}
	}
}
