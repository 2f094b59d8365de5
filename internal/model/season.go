package model

import "time"

// Season is a meteorological season. Winter wraps the year boundary
// (December through February).
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

// String returns the season's display name.
func (s Season) String() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	default:
		return "Winter"
	}
}

// Tint returns the season's base color used for untinted week markers
// and the seasons ring.
func (s Season) Tint() string {
	switch s {
	case Spring:
		return "#7fbf7f"
	case Summer:
		return "#f2c94c"
	case Autumn:
		return "#d98236"
	default:
		return "#7fa8d9"
	}
}

// SeasonForDayOfYear maps a 1-based day of year to its meteorological
// season.
func SeasonForDayOfYear(year, dayOfYear int) Season {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// SeasonForWeek maps a week index to the season holding the week's
// middle day, so boundary weeks tip toward the season covering most
// of them.
func SeasonForWeek(year, week int) Season {
	mid := WeekStart(year, week, time.UTC).AddDate(0, 0, 3)
	return SeasonForDayOfYear(year, mid.YearDay())
}
