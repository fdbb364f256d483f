package schedule

import (
	"time"

	"github.com/rs/zerolog/log"
)

// The RollingScheduler provides a slot every Period, shifted by Offset.
// eg. Period 30m and Offset 5m gives hh:05 and hh:35.
type RollingScheduler struct {
	Period, Offset time.Duration
}

func (s *RollingScheduler) NextBetween(t time.Time, max time.Time) time.Time {
	period := int64(s.Period / time.Second)
	if period <= 0 {
		log.Error().Dur("period", s.Period).Msg("kickoff period is too short")
		return time.Time{}
	}

	offset := int64(s.Offset/time.Second) % period
	elapsed := t.Unix() - offset
	periodID := elapsed / period
	if elapsed < 0 && elapsed%period != 0 {
		periodID--
	}

	next := time.Unix((periodID+1)*period+offset, 0).UTC()
	if next.After(max) {
		return time.Time{}
	}

	return next
}

func (s *RollingScheduler) Next(t time.Time) time.Time {
	return s.NextBetween(t, inAWeek(t))
}
