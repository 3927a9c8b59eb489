// Package schedule defines the weekly bugle-call schedule model.
package schedule

import (
	"sort"
	"time"
)

// Entry is a single named call: a time of day and the audio file to play.
// Entries are immutable once loaded.
type Entry struct {
	Name      string
	At        TimeOfDay
	AudioPath string
}

// Schedule holds the weekday and weekend call lists, each sorted by time.
type Schedule struct {
	Weekdays []Entry
	Weekends []Entry
}

// IsWeekend reports whether day falls on a Saturday or Sunday.
func IsWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

// ForDay returns the entries that apply on the given weekday:
// Monday through Friday use the weekday list, Saturday and Sunday
// the weekend list.
func (s *Schedule) ForDay(day time.Weekday) []Entry {
	if IsWeekend(day) {
		return s.Weekends
	}
	return s.Weekdays
}

// Lookup finds the named entry in the list that applies on day.
func (s *Schedule) Lookup(name string, day time.Weekday) (Entry, bool) {
	for _, e := range s.ForDay(day) {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the total number of entries across both lists.
func (s *Schedule) Len() int {
	return len(s.Weekdays) + len(s.Weekends)
}

// Next returns the earliest entry that fires strictly after now, along
// with its fire time. It scans forward one day at a time; ok is false
// only when the schedule is empty.
func (s *Schedule) Next(now time.Time) (Entry, time.Time, bool) {
	if s.Len() == 0 {
		return Entry{}, time.Time{}, false
	}

	// A week always contains a firing day for any non-empty list;
	// 8 days covers the wrap back to now's weekday.
	for i := 0; i < 8; i++ {
		day := now.AddDate(0, 0, i)
		for _, e := range s.ForDay(day.Weekday()) {
			at := e.At.On(day)
			if at.After(now) {
				return e, at, true
			}
		}
	}
	return Entry{}, time.Time{}, false
}

// Upcoming returns all of today's entries that fire strictly after now,
// in firing order.
func (s *Schedule) Upcoming(now time.Time) []Entry {
	var out []Entry
	for _, e := range s.ForDay(now.Weekday()) {
		if e.At.On(now).After(now) {
			out = append(out, e)
		}
	}
	return out
}

// sortEntries orders entries by time of day, then by name for stability
// between entries sharing a time.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].At.Minutes() != entries[j].At.Minutes() {
			return entries[i].At.Minutes() < entries[j].At.Minutes()
		}
		return entries[i].Name < entries[j].Name
	})
}

// New builds a Schedule from the two entry lists, sorting each by time.
func New(weekdays, weekends []Entry) *Schedule {
	sortEntries(weekdays)
	sortEntries(weekends)
	return &Schedule{Weekdays: weekdays, Weekends: weekends}
}
