// Package model defines the calendar data the visualization consumes
// and the date-index rules shared by every display mode. All levels
// derive week numbers from the same Sunday-anchored rule; mixing
// rules would break cross-navigation between day, week and month
// views.
package model

import "time"

// CalendarEvent is the core's view of one event: an opaque title and
// a start instant, optionally with an end. Immutable once received.
// Recurrence, invitees and timezones are the event source's problem;
// by the time an event reaches the core it is a concrete occurrence
// in the display timezone.
type CalendarEvent struct {
	Title string
	Start time.Time
	End   time.Time // zero when the source supplied no end
}

// Valid reports whether the event carries enough data to place it on
// the visualization. Events without a start instant are skipped
// silently by every consumer.
func (e CalendarEvent) Valid() bool {
	return !e.Start.IsZero()
}

// Occurrence is one concrete instance of a possibly recurring event,
// already normalized into the display timezone by the event source.
type Occurrence struct {
	SourceID string
	UID      string
	Summary  string
	Location string
	AllDay   bool
	Start    time.Time
	End      time.Time
	// InstanceKey distinguishes instances of the same UID.
	InstanceKey string
}

// Event projects the occurrence down to what the visualization needs.
func (o Occurrence) Event() CalendarEvent {
	return CalendarEvent{Title: o.Summary, Start: o.Start, End: o.End}
}

// WeeksPerYear is fixed: the visualization always shows 52 week
// slots, absorbing the partial 53rd week into the last slot.
const WeeksPerYear = 52

// weekAnchor returns the Sunday on or before January 1 of the year.
// That Sunday starts week 0.
func weekAnchor(year int, loc *time.Location) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return jan1.AddDate(0, 0, -int(jan1.Weekday()))
}

// WeekIndex returns the Sunday-anchored week number (0..51) of t
// within t's own year. Days past the 52nd week clamp into the last
// slot so every date maps to a drawable marker.
func WeekIndex(t time.Time) int {
	anchor := weekAnchor(t.Year(), t.Location())
	days := int(t.Sub(anchor).Hours() / 24)
	week := days / 7
	if week < 0 {
		week = 0
	}
	if week >= WeeksPerYear {
		week = WeeksPerYear - 1
	}
	return week
}

// WeekStart returns the Sunday starting the given week of the year.
func WeekStart(year, week int, loc *time.Location) time.Time {
	if week < 0 {
		week = 0
	}
	if week >= WeeksPerYear {
		week = WeeksPerYear - 1
	}
	return weekAnchor(year, loc).AddDate(0, 0, week*7)
}

// WeekForDay returns the week index containing the given calendar
// day, using the same anchor rule as WeekIndex.
func WeekForDay(year int, month time.Month, day int, loc *time.Location) int {
	return WeekIndex(time.Date(year, month, day, 12, 0, 0, 0, loc))
}

// DaysInMonth returns the day count of (year, month), leap-aware.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayOfYear returns t's ordinal day within its year, 1-based.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	if DaysInMonth(year, time.February) == 29 {
		return 366
	}
	return 365
}

// EventsByWeek is the shape event sources deliver data in: events
// grouped by Sunday-anchored week index.
type EventsByWeek map[int][]CalendarEvent

// GroupByWeek distributes events into week buckets, dropping events
// without a start instant.
func GroupByWeek(events []CalendarEvent) EventsByWeek {
	out := make(EventsByWeek)
	for _, e := range events {
		if !e.Valid() {
			continue
		}
		w := WeekIndex(e.Start)
		out[w] = append(out[w], e)
	}
	return out
}

// EventsOnDay filters a week-keyed event map down to the events whose
// start falls on the given calendar day. The day's week bucket is the
// only one consulted; the grouping rule guarantees that is where the
// day's events live.
func (m EventsByWeek) EventsOnDay(year int, month time.Month, day int, loc *time.Location) []CalendarEvent {
	week := WeekForDay(year, month, day, loc)
	var out []CalendarEvent
	for _, e := range m[week] {
		if !e.Valid() {
			continue
		}
		s := e.Start.In(loc)
		if s.Year() == year && s.Month() == month && s.Day() == day {
			out = append(out, e)
		}
	}
	return out
}

// CountByWeek returns per-week event counts for marker fill decisions.
func (m EventsByWeek) CountByWeek() map[int]int {
	out := make(map[int]int, len(m))
	for w, evs := range m {
		n := 0
		for _, e := range evs {
			if e.Valid() {
				n++
			}
		}
		if n > 0 {
			out[w] = n
		}
	}
	return out
}
