// Package zoom implements the hierarchical drill-down mode: a
// four-level state machine (year, month, week, day) whose level
// transitions animate by cross-fading wedge-sets while interpolating
// their screen placement.
package zoom

import (
	"time"

	"github.com/komapc/year-shape/internal/model"
)

// Level is a zoom depth, totally ordered YEAR < MONTH < WEEK < DAY.
type Level int

const (
	LevelYear Level = iota
	LevelMonth
	LevelWeek
	LevelDay
)

// Depth returns the level's position in the order (YEAR=0 .. DAY=3).
func (l Level) Depth() int { return int(l) }

func (l Level) String() string {
	switch l {
	case LevelMonth:
		return "month"
	case LevelWeek:
		return "week"
	case LevelDay:
		return "day"
	default:
		return "year"
	}
}

// ParseLevel maps a persisted level name back to a Level. Unknown
// values fall back to the year view.
func ParseLevel(s string) Level {
	switch s {
	case "month":
		return LevelMonth
	case "week":
		return LevelWeek
	case "day":
		return LevelDay
	default:
		return LevelYear
	}
}

// State is the navigator's position. Exactly one State is current;
// it is mutated only through the navigation operations, never by
// input handlers directly.
type State struct {
	Level Level
	Year  int
	Month int // 0-11
	Week  int // 0-51
	Day   int // 1-31
}

// Params carries explicit navigation targets. The Derive sentinel
// means "compute from the current state"; navigation is driven by
// trusted internal computation, so out-of-range values are clamped or
// derived rather than rejected.
type Params struct {
	Month int
	Week  int
	Day   int
}

// Derive marks a Params field as not supplied.
const Derive = -1

// NoParams derives every field from the current state.
func NoParams() Params {
	return Params{Month: Derive, Week: Derive, Day: Derive}
}

// WithMonth targets an explicit month.
func WithMonth(m int) Params {
	p := NoParams()
	p.Month = m
	return p
}

// WithWeek targets an explicit week.
func WithWeek(w int) Params {
	p := NoParams()
	p.Week = w
	return p
}

// WithDay targets an explicit day of month.
func WithDay(d int) Params {
	p := NoParams()
	p.Day = d
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// resolve computes the next state for a navigation to level with the
// given params, deriving unsupplied fields from the current state and
// keeping month/week/day mutually consistent.
func (s State) resolve(level Level, p Params, loc *time.Location) State {
	next := s
	next.Level = level

	month := p.Month
	week := p.Week
	day := p.Day

	switch level {
	case LevelYear:
		// Year view keeps the stored sub-units for a later re-entry.

	case LevelMonth:
		if month == Derive {
			month = s.Month
		}
		next.Month = clampInt(month, 0, 11)
		next.Day = 1
		next.Week = model.WeekForDay(next.Year, time.Month(next.Month+1), 1, loc)

	case LevelWeek:
		switch {
		case week != Derive:
			next.Week = clampInt(week, 0, model.WeeksPerYear-1)
			start := model.WeekStart(next.Year, next.Week, loc)
			next.Month = int(start.Month()) - 1
			next.Day = start.Day()
		case day != Derive:
			if month != Derive {
				next.Month = clampInt(month, 0, 11)
			}
			next.Day = clampInt(day, 1, model.DaysInMonth(next.Year, time.Month(next.Month+1)))
			next.Week = model.WeekForDay(next.Year, time.Month(next.Month+1), next.Day, loc)
		default:
			next.Week = model.WeekForDay(next.Year, time.Month(next.Month+1), next.Day, loc)
		}

	case LevelDay:
		if month != Derive {
			next.Month = clampInt(month, 0, 11)
		}
		if day == Derive {
			day = s.Day
		}
		next.Day = clampInt(day, 1, model.DaysInMonth(next.Year, time.Month(next.Month+1)))
		next.Week = model.WeekForDay(next.Year, time.Month(next.Month+1), next.Day, loc)
	}

	return next
}

// prevSibling steps to the previous unit of the current level,
// wrapping into the previous year/month where needed.
func (s State) prevSibling(loc *time.Location) State {
	next := s
	switch s.Level {
	case LevelYear:
		next.Year--
	case LevelMonth:
		if s.Month == 0 {
			next.Year--
			next.Month = 11
		} else {
			next.Month = s.Month - 1
		}
		next = next.resolve(LevelMonth, WithMonth(next.Month), loc)
	case LevelWeek:
		if s.Week == 0 {
			next.Year--
			next.Week = model.WeeksPerYear - 1
		} else {
			next.Week = s.Week - 1
		}
		next = next.resolve(LevelWeek, WithWeek(next.Week), loc)
	case LevelDay:
		t := time.Date(s.Year, time.Month(s.Month+1), s.Day, 12, 0, 0, 0, loc).AddDate(0, 0, -1)
		next.Year = t.Year()
		next.Month = int(t.Month()) - 1
		next = next.resolve(LevelDay, Params{Month: next.Month, Week: Derive, Day: t.Day()}, loc)
	}
	return next
}

// nextSibling steps to the following unit of the current level.
func (s State) nextSibling(loc *time.Location) State {
	next := s
	switch s.Level {
	case LevelYear:
		next.Year++
	case LevelMonth:
		if s.Month == 11 {
			next.Year++
			next.Month = 0
		} else {
			next.Month = s.Month + 1
		}
		next = next.resolve(LevelMonth, WithMonth(next.Month), loc)
	case LevelWeek:
		if s.Week == model.WeeksPerYear-1 {
			next.Year++
			next.Week = 0
		} else {
			next.Week = s.Week + 1
		}
		next = next.resolve(LevelWeek, WithWeek(next.Week), loc)
	case LevelDay:
		t := time.Date(s.Year, time.Month(s.Month+1), s.Day, 12, 0, 0, 0, loc).AddDate(0, 0, 1)
		next.Year = t.Year()
		next.Month = int(t.Month()) - 1
		next = next.resolve(LevelDay, Params{Month: next.Month, Week: Derive, Day: t.Day()}, loc)
	}
	return next
}
