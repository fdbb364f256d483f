// Package schedule computes kickoff slots, the times at which newly requested
// matches are scheduled.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

type Scheduler interface {
	// Next returns the first slot strictly after t in a week span, or a zero
	// time if none is found.
	Next(t time.Time) time.Time

	// NextBetween returns the first slot strictly after start and not after
	// end, or a zero time if none is found.
	NextBetween(start, end time.Time) time.Time
}

type Config struct {
	// Period between slots and offset of the slots relative to the UNIX
	// epoch, used when Times is empty.
	Period, Offset time.Duration

	// Times of the day at which slots occur, as "15:04 Location".
	Times []string
}

func New(conf Config) (Scheduler, error) {
	if len(conf.Times) > 0 {
		s, err := NewDailyScheduler(conf.Times)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	if conf.Period < time.Second {
		return nil, fmt.Errorf("invalid kickoff period: %s", conf.Period)
	}

	return &RollingScheduler{Period: conf.Period, Offset: conf.Offset}, nil
}

var errNoSlot = errors.New("no kickoff slot available")

// MustNext is Next for callers that cannot do anything with a zero time.
func MustNext(s Scheduler, t time.Time) (time.Time, error) {
	next := s.Next(t)
	if next.IsZero() {
		return time.Time{}, errNoSlot
	}

	return next, nil
}

func inAWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, 7)
}
