package dashboard

import (
	"strings"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

// NormalizeClock truncates a time of day to HH:MM ("14:30:00" -> "14:30").
// An empty result means "whole day".
func NormalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

// NormalizeDate keeps the YYYY-MM-DD prefix of a date or timestamp.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	return s
}

// HasConflict reports whether the candidate slot collides with an entry of
// the service's schedule. Two whole-day slots on the same date collide, two
// timed slots collide only on the exact same HH:MM. A whole-day entry and a
// timed entry never collide.
//
// The result is advisory; the backend re-checks at creation time.
func HasConflict(schedule []domain.ScheduleEntry, date, clock string) bool {
	date = NormalizeDate(date)
	clock = NormalizeClock(clock)

	for _, s := range schedule {
		d := NormalizeDate(s.EventDate)
		if d == "" || d != date {
			continue
		}
		if s.Status != "" && !s.Status.Active() {
			continue
		}

		if NormalizeClock(s.EventTime) == clock {
			return true
		}
	}

	return false
}
