package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedule() *Schedule {
	return New(
		[]Entry{
			{Name: "taps", At: TimeOfDay{22, 0}, AudioPath: "taps.mp3"},
			{Name: "reveille", At: TimeOfDay{6, 0}, AudioPath: "reveille.mp3"},
			{Name: "mess-call", At: TimeOfDay{12, 0}, AudioPath: "mess.mp3"},
		},
		[]Entry{
			{Name: "reveille", At: TimeOfDay{8, 0}, AudioPath: "reveille.mp3"},
			{Name: "taps", At: TimeOfDay{23, 0}, AudioPath: "taps.mp3"},
		},
	)
}

func TestNewSortsByTime(t *testing.T) {
	s := testSchedule()

	require.Len(t, s.Weekdays, 3)
	assert.Equal(t, "reveille", s.Weekdays[0].Name)
	assert.Equal(t, "mess-call", s.Weekdays[1].Name)
	assert.Equal(t, "taps", s.Weekdays[2].Name)
}

func TestForDay(t *testing.T) {
	s := testSchedule()

	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		assert.Len(t, s.ForDay(day), 3, "weekday %s", day)
	}
	for _, day := range []time.Weekday{time.Saturday, time.Sunday} {
		assert.Len(t, s.ForDay(day), 2, "weekend %s", day)
	}
}

func TestLookup(t *testing.T) {
	s := testSchedule()

	e, ok := s.Lookup("mess-call", time.Monday)
	require.True(t, ok)
	assert.Equal(t, TimeOfDay{12, 0}, e.At)

	// mess-call is weekday-only
	_, ok = s.Lookup("mess-call", time.Saturday)
	assert.False(t, ok)

	// same name, different time per day class
	e, ok = s.Lookup("reveille", time.Sunday)
	require.True(t, ok)
	assert.Equal(t, TimeOfDay{8, 0}, e.At)
}

func TestNext(t *testing.T) {
	s := testSchedule()

	// 2026-08-17 is a Monday.
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		wantCall string
		wantAt   time.Time
	}{
		{
			name:     "monday morning before reveille",
			now:      monday.Add(5 * time.Hour),
			wantCall: "reveille",
			wantAt:   monday.Add(6 * time.Hour),
		},
		{
			name:     "exactly at an entry skips to the following one",
			now:      monday.Add(6 * time.Hour),
			wantCall: "mess-call",
			wantAt:   monday.Add(12 * time.Hour),
		},
		{
			name:     "friday night rolls over to the weekend schedule",
			now:      monday.AddDate(0, 0, 4).Add(23 * time.Hour),
			wantCall: "reveille",
			wantAt:   monday.AddDate(0, 0, 5).Add(8 * time.Hour),
		},
		{
			name:     "sunday night rolls back to the weekday schedule",
			now:      monday.AddDate(0, 0, 6).Add(23*time.Hour + 30*time.Minute),
			wantCall: "reveille",
			wantAt:   monday.AddDate(0, 0, 7).Add(6 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, at, ok := s.Next(tt.now)
			require.True(t, ok)
			assert.Equal(t, tt.wantCall, e.Name)
			assert.Equal(t, tt.wantAt, at)
		})
	}
}

func TestNextEmptySchedule(t *testing.T) {
	s := New(nil, nil)
	_, _, ok := s.Next(time.Now())
	assert.False(t, ok)
}

func TestNextWeekdayOnlySchedule(t *testing.T) {
	s := New([]Entry{{Name: "reveille", At: TimeOfDay{6, 0}, AudioPath: "reveille.mp3"}}, nil)

	// 2026-08-22 is a Saturday; the next fire is Monday morning.
	saturday := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)
	e, at, ok := s.Next(saturday)
	require.True(t, ok)
	assert.Equal(t, "reveille", e.Name)
	assert.Equal(t, time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC), at)
}

func TestUpcoming(t *testing.T) {
	s := testSchedule()

	monday := time.Date(2026, 8, 17, 11, 0, 0, 0, time.UTC)
	up := s.Upcoming(monday)
	require.Len(t, up, 2)
	assert.Equal(t, "mess-call", up[0].Name)
	assert.Equal(t, "taps", up[1].Name)

	lateMonday := time.Date(2026, 8, 17, 23, 0, 0, 0, time.UTC)
	assert.Empty(t, s.Upcoming(lateMonday))
}
