package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekIndexAnchor(t *testing.T) {
	// Jan 1 2025 is a Wednesday; the anchor Sunday is Dec 29 2024,
	// so Jan 1 falls in week 0 and Sunday Jan 5 starts week 1.
	if got := WeekIndex(date(2025, time.January, 1)); got != 0 {
		t.Errorf("Jan 1: week %d, want 0", got)
	}
	if got := WeekIndex(date(2025, time.January, 4)); got != 0 {
		t.Errorf("Sat Jan 4: week %d, want 0", got)
	}
	if got := WeekIndex(date(2025, time.January, 5)); got != 1 {
		t.Errorf("Sun Jan 5: week %d, want 1", got)
	}
}

func TestWeekIndexClampsLastWeek(t *testing.T) {
	if got := WeekIndex(date(2025, time.December, 31)); got != WeeksPerYear-1 {
		t.Errorf("Dec 31: week %d, want %d", got, WeeksPerYear-1)
	}
}

func TestWeekStartIsSunday(t *testing.T) {
	for week := 0; week < WeeksPerYear; week += 7 {
		s := WeekStart(2025, week, time.UTC)
		if s.Weekday() != time.Sunday {
			t.Errorf("week %d starts on %v", week, s.Weekday())
		}
	}
}

func TestWeekStartRoundTrip(t *testing.T) {
	// A date inside a week maps back to the week whose start covers it.
	for _, d := range []time.Time{
		date(2025, time.March, 14),
		date(2025, time.November, 16),
		date(2024, time.February, 29),
	} {
		w := WeekIndex(d)
		start := WeekStart(d.Year(), w, time.UTC)
		if d.Before(start) || d.Sub(start) >= 8*24*time.Hour {
			t.Errorf("%v: week %d start %v does not cover the date", d, w, start)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2000, time.February, 29},
		{1900, time.February, 28},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDaysInYear(t *testing.T) {
	if DaysInYear(2024) != 366 {
		t.Error("2024 is a leap year")
	}
	if DaysInYear(2025) != 365 {
		t.Error("2025 is not a leap year")
	}
}

func TestGroupByWeekSkipsInvalid(t *testing.T) {
	events := []CalendarEvent{
		{Title: "ok", Start: date(2025, time.November, 16)},
		{Title: "no start"},
	}
	grouped := GroupByWeek(events)
	total := 0
	for _, evs := range grouped {
		total += len(evs)
	}
	if total != 1 {
		t.Fatalf("grouped %d events, want 1", total)
	}
}

func TestEventsOnDay(t *testing.T) {
	ev := CalendarEvent{Title: "X", Start: time.Date(2025, time.November, 16, 10, 0, 0, 0, time.UTC)}
	grouped := GroupByWeek([]CalendarEvent{ev})

	got := grouped.EventsOnDay(2025, time.November, 16, time.UTC)
	if len(got) != 1 || got[0].Title != "X" {
		t.Fatalf("EventsOnDay = %+v, want the one event", got)
	}
	if len(grouped.EventsOnDay(2025, time.November, 17, time.UTC)) != 0 {
		t.Error("adjacent day must not see the event")
	}
}

func TestSeasonForDayOfYear(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  Season
	}{
		{time.January, 15, Winter},
		{time.March, 1, Spring},
		{time.May, 31, Spring},
		{time.June, 1, Summer},
		{time.September, 10, Autumn},
		{time.December, 1, Winter},
		{time.December, 31, Winter},
	}
	for _, tt := range tests {
		doy := time.Date(2025, tt.month, tt.day, 0, 0, 0, 0, time.UTC).YearDay()
		if got := SeasonForDayOfYear(2025, doy); got != tt.want {
			t.Errorf("%v %d: season %v, want %v", tt.month, tt.day, got, tt.want)
		}
	}
}
