package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"06:30", TimeOfDay{6, 30}},
		{"6:30", TimeOfDay{6, 30}},
		{"00:00", TimeOfDay{0, 0}},
		{"23:59", TimeOfDay{23, 59}},
		{" 12:05 ", TimeOfDay{12, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, in := range []string{"", "630", "24:00", "12:60", "-1:00", "noon", "12:", ":30", "12:3x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTimeOfDay(in)
			assert.Error(t, err)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "06:05", TimeOfDay{6, 5}.String())
	assert.Equal(t, "22:00", TimeOfDay{22, 0}.String())
}

func TestTimeOfDayTextRoundTrip(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.UnmarshalText([]byte("17:45")))
	assert.Equal(t, TimeOfDay{17, 45}, tod)

	out, err := tod.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "17:45", string(out))
}

func TestTimeOfDayOn(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	day := time.Date(2026, 8, 17, 15, 30, 0, 0, loc)
	at := TimeOfDay{6, 0}.On(day)

	assert.Equal(t, time.Date(2026, 8, 17, 6, 0, 0, 0, loc), at)
	assert.Equal(t, loc, at.Location())
}
