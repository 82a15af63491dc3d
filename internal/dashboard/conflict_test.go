package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "14:30", NormalizeClock("14:30:00"))
	assert.Equal(t, "14:30", NormalizeClock(" 14:30 "))
	assert.Equal(t, "", NormalizeClock(""))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-06-01", NormalizeDate("2025-06-01T00:00:00.000Z"))
	assert.Equal(t, "2025-06-01", NormalizeDate("2025-06-01"))
}

func TestHasConflict(t *testing.T) {
	schedule := []domain.ScheduleEntry{
		{ServiceID: "S1", EventDate: "2025-06-01", EventTime: "18:00:00", Status: domain.BookingConfirmed},
		{ServiceID: "S1", EventDate: "2025-06-02", Status: domain.BookingPending},
		{ServiceID: "S1", EventDate: "2025-06-03", EventTime: "10:00", Status: domain.BookingCancelled},
		{ServiceID: "S1", EventDate: "", EventTime: "12:00"},
	}

	cases := []struct {
		name  string
		date  string
		clock string
		want  bool
	}{
		{"same slot", "2025-06-01", "18:00", true},
		{"seconds ignored", "2025-06-01T00:00:00Z", "18:00:59", true},
		{"other hour", "2025-06-01", "19:00", false},
		{"other day", "2025-06-05", "18:00", false},
		{"whole day vs whole day", "2025-06-02", "", true},
		{"timed vs whole day", "2025-06-02", "09:00", false},
		{"whole day vs timed", "2025-06-01", "", false},
		{"cancelled entry", "2025-06-03", "10:00", false},
		{"entry without date", "", "12:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasConflict(schedule, tc.date, tc.clock))
		})
	}
}

func TestHasConflict_Symmetric(t *testing.T) {
	a := []domain.ScheduleEntry{{EventDate: "2025-06-01", EventTime: "14:30:00"}}
	b := []domain.ScheduleEntry{{EventDate: "2025-06-01", EventTime: "14:30"}}

	assert.True(t, HasConflict(a, "2025-06-01", "14:30"))
	assert.True(t, HasConflict(b, "2025-06-01", "14:30:00"))
}

func TestHasConflict_EmptySchedule(t *testing.T) {
	assert.False(t, HasConflict(nil, "2025-06-01", "18:00"))
}
