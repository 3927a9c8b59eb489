package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmarchant/reveille/internal/schedule"
)

func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSchedule(t, `
timezone: America/Chicago
volume: 85
api_token: hunter2

weekdays:
  reveille:
    time: "06:00"
    audio_file: sounds/reveille.mp3
  mess-call:
    time: "12:00"
    audio_file: sounds/mess.mp3
  taps:
    time: "22:00"
    audio_file: sounds/taps.mp3

weekends:
  reveille:
    time: "08:00"
    audio_file: sounds/reveille.mp3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 85, cfg.Volume)
	assert.Equal(t, "hunter2", cfg.APIToken)
	assert.Len(t, cfg.Weekdays, 3)
	assert.Len(t, cfg.Weekends, 1)
	assert.Equal(t, schedule.TimeOfDay{Hour: 6, Minute: 0}, cfg.Weekdays["reveille"].Time)
	assert.Equal(t, "sounds/mess.mp3", cfg.Weekdays["mess-call"].AudioFile)
}

func TestLoadDefaults(t *testing.T) {
	path := writeSchedule(t, `
weekdays:
  reveille:
    time: "06:00"
    audio_file: reveille.mp3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultVolume, cfg.Volume)
	assert.Empty(t, cfg.Timezone)
	assert.Empty(t, cfg.APIToken)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeSchedule(t, "weekdays: [not: a: map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadTime(t *testing.T) {
	for name, raw := range map[string]string{
		"out of range": `"25:00"`,
		"not a time":   `"noonish"`,
		"bad minutes":  `"06:75"`,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeSchedule(t, `
weekdays:
  reveille:
    time: `+raw+`
    audio_file: reveille.mp3
`)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeSchedule(t, `
weekdays:
  reveille:
    time: "06:00"
    audio_files: reveille.mp3
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingAudioFile(t *testing.T) {
	path := writeSchedule(t, `
weekends:
  taps:
    time: "23:00"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "no audio_file")
}

func TestLoadBadTimezone(t *testing.T) {
	path := writeSchedule(t, `
timezone: Mars/Olympus_Mons
weekdays:
  reveille:
    time: "06:00"
    audio_file: reveille.mp3
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown timezone")
}

func TestLoadVolumeOutOfRange(t *testing.T) {
	path := writeSchedule(t, `
volume: 150
weekdays:
  reveille:
    time: "06:00"
    audio_file: reveille.mp3
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "out of range")
}

func TestScheduleConversion(t *testing.T) {
	path := writeSchedule(t, `
weekdays:
  taps:
    time: "22:00"
    audio_file: taps.mp3
  reveille:
    time: "06:00"
    audio_file: reveille.mp3
weekends:
  reveille:
    time: "08:00"
    audio_file: reveille.mp3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	s := cfg.Schedule()
	// entry count matches the YAML entry count
	assert.Equal(t, 3, s.Len())

	// sorted by time within each day class
	require.Len(t, s.Weekdays, 2)
	assert.Equal(t, "reveille", s.Weekdays[0].Name)
	assert.Equal(t, "taps", s.Weekdays[1].Name)
}
