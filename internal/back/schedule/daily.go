package schedule

import (
	"fmt"
	"strings"
	"time"
)

type dailySlot struct {
	hour, minute int
	location     *time.Location
}

// A DailyScheduler provides the same set of local times every day.
type DailyScheduler struct {
	slots []dailySlot
}

// NewDailyScheduler parses times formatted as "15:04 Location", eg.
// "21:00 Europe/Paris".
func NewDailyScheduler(times []string) (*DailyScheduler, error) {
	s := &DailyScheduler{slots: make([]dailySlot, 0, len(times))}

	for _, raw := range times {
		hourStr, location, err := hourLocation(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}

		hour, err := time.ParseInLocation("15:04", hourStr, location)
		if err != nil {
			return nil, fmt.Errorf("bad hour '%s': %w", hourStr, err)
		}

		s.slots = append(s.slots, dailySlot{
			hour:     hour.Hour(),
			minute:   hour.Minute(),
			location: location,
		})
	}

	return s, nil
}

func (s *DailyScheduler) NextBetween(t time.Time, max time.Time) time.Time {
	var best time.Time

	// Slots can be in any location, so start a day early to cover dates
	// that are still "yesterday" somewhere.
	for _, slot := range s.slots {
		local := t.In(slot.location)
		for day := -1; day <= 7; day++ {
			d := local.AddDate(0, 0, day)
			next := time.Date(d.Year(), d.Month(), d.Day(), slot.hour, slot.minute, 0, 0, slot.location)
			if !next.After(t) {
				continue
			}

			if best.IsZero() || next.Before(best) {
				best = next
			}
			break
		}
	}

	if best.IsZero() || best.After(max) {
		return time.Time{}
	}

	return best
}

func (s *DailyScheduler) Next(t time.Time) time.Time {
	return s.NextBetween(t, inAWeek(t))
}

func hourLocation(str string) (string, *time.Location, error) {
	parts := strings.SplitN(str, " ", 2)
	if len(parts) < 2 {
		return "", nil, fmt.Errorf("bad format: '%s'", str)
	}

	location, err := time.LoadLocation(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("bad location '%s': %v", parts[1], err)
	}

	return parts[0], location, nil
}
