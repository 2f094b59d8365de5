// Package rings implements the multi-ring visualization mode: an
// ordered stack of independent concentric bands, each showing one
// time granularity of the displayed year.
package rings

import (
	"fmt"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/komapc/year-shape/internal/model"
)

// Kind selects how a ring divides the year into sectors. The set of
// division behaviors is small and closed, so rings are tagged data
// dispatched by one layout function rather than a type hierarchy.
type Kind int

const (
	// EqualDivision tiles the ring into SectorCount equal wedges.
	EqualDivision Kind = iota
	// DayRange draws one wedge per explicit day-of-year range.
	DayRange
	// Segmented is DayRange where a sector may consist of several
	// disjoint spans (a wedge wrapping the year boundary is drawn as
	// two path segments).
	Segmented
)

// DaySpan is an inclusive 1-based day-of-year range.
type DaySpan struct {
	Start int
	End   int
}

// SectorDef is one wedge of a day-range or segmented ring.
type SectorDef struct {
	Label string
	Fill  string
	Spans []DaySpan
}

// Ring describes one band. A ring owns no geometry; the System
// assigns radii at layout time.
type Ring struct {
	Name string
	Kind Kind

	// EqualDivision rings.
	SectorCount int
	LabelFunc   func(i int) string
	ColorFunc   func(i int) string

	// DayRange / Segmented rings.
	Sectors []SectorDef

	// OriginOffset rotates this ring's angular origin relative to the
	// shared "day 0 at top" convention, in radians. Only the seasons
	// ring uses it, to pin winter's midpoint to the top.
	OriginOffset float64
}

var monthShort = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Weeks returns the 52-sector week ring. Sectors are tinted by the
// season of the week they fall in.
func Weeks(year int) *Ring {
	return &Ring{
		Name:        "weeks",
		Kind:        EqualDivision,
		SectorCount: model.WeeksPerYear,
		LabelFunc: func(i int) string {
			return fmt.Sprintf("%d", i+1)
		},
		ColorFunc: func(i int) string {
			return model.SeasonForWeek(year, i).Tint()
		},
	}
}

// Months returns the Gregorian month ring with day-accurate sector
// boundaries, so February really is narrower than July.
func Months(year int) *Ring {
	sectors := make([]SectorDef, 12)
	day := 1
	for m := 0; m < 12; m++ {
		n := model.DaysInMonth(year, time.Month(m+1))
		hue := float64(m) / 12 * 360
		sectors[m] = SectorDef{
			Label: monthShort[m],
			Fill:  colorful.Hsv(hue, 0.30, 0.92).Hex(),
			Spans: []DaySpan{{Start: day, End: day + n - 1}},
		}
		day += n
	}
	return &Ring{Name: "months", Kind: DayRange, Sectors: sectors}
}

// hebrewMonthLengths approximates a common (non-leap) Hebrew year.
// The ring is a civil-overlay visualization, not a halachic calendar:
// month boundaries are mapped by counting days from Rosh Hashanah's
// Gregorian date approximation (mid-September).
var hebrewMonths = []struct {
	name string
	days int
}{
	{"Tishrei", 30}, {"Cheshvan", 29}, {"Kislev", 30}, {"Tevet", 29},
	{"Shevat", 30}, {"Adar", 29}, {"Nisan", 30}, {"Iyar", 29},
	{"Sivan", 30}, {"Tammuz", 29}, {"Av", 30}, {"Elul", 29},
}

// HebrewMonths returns the Hebrew month overlay ring. Spans wrapping
// the Gregorian year boundary are split into two segments.
func HebrewMonths(year int) *Ring {
	yearDays := model.DaysInYear(year)
	// Approximate Rosh Hashanah as September 15.
	start := time.Date(year, time.September, 15, 0, 0, 0, 0, time.UTC).YearDay()

	sectors := make([]SectorDef, 0, len(hebrewMonths))
	day := start
	for i, hm := range hebrewMonths {
		end := day + hm.days - 1
		hue := 30 + float64(i)/float64(len(hebrewMonths))*300
		def := SectorDef{
			Label: hm.name,
			Fill:  colorful.Hsv(hue, 0.22, 0.88).Hex(),
		}
		if end <= yearDays {
			def.Spans = []DaySpan{{Start: day, End: end}}
		} else {
			// Wraps December into January.
			def.Spans = []DaySpan{
				{Start: day, End: yearDays},
				{Start: 1, End: end - yearDays},
			}
		}
		sectors = append(sectors, def)
		day = end + 1
		if day > yearDays {
			day -= yearDays
		}
	}
	return &Ring{Name: "hebrew-months", Kind: Segmented, Sectors: sectors}
}

// holidayWidthDays is the fixed half-width of a holiday sector; the
// ring synthesizes a narrow wedge centered on each holiday instead of
// tiling edge to edge.
const holidayWidthDays = 2

type holiday struct {
	name  string
	month time.Month
	day   int
}

var fixedHolidays = []holiday{
	{"New Year", time.January, 1},
	{"Valentine", time.February, 14},
	{"Equinox", time.March, 20},
	{"Midsummer", time.June, 21},
	{"Halloween", time.October, 31},
	{"New Year's Eve", time.December, 31},
}

// Holidays returns the holiday ring: one narrow fixed-width sector
// centered on each holiday's day of year.
func Holidays(year int) *Ring {
	yearDays := model.DaysInYear(year)
	sectors := make([]SectorDef, 0, len(fixedHolidays))
	for _, h := range fixedHolidays {
		doy := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC).YearDay()
		start := doy - holidayWidthDays
		end := doy + holidayWidthDays
		def := SectorDef{Label: h.name, Fill: "#d95252"}
		switch {
		case start < 1:
			def.Spans = []DaySpan{{Start: yearDays + start, End: yearDays}, {Start: 1, End: end}}
		case end > yearDays:
			def.Spans = []DaySpan{{Start: start, End: yearDays}, {Start: 1, End: end - yearDays}}
		default:
			def.Spans = []DaySpan{{Start: start, End: end}}
		}
		sectors = append(sectors, def)
	}
	return &Ring{Name: "holidays", Kind: Segmented, Sectors: sectors}
}

// Seasons returns the meteorological seasons ring. The four seasons
// are day-range accurate, not equal quarters, and winter wraps the
// year boundary, so it is drawn as two path segments (Dec 1-Dec 31
// and Jan 1-end of Feb). The ring's origin is offset so winter's
// visual midpoint sits at the top.
func Seasons(year int) *Ring {
	doy := func(m time.Month, d int) int {
		return time.Date(year, m, d, 0, 0, 0, 0, time.UTC).YearDay()
	}
	yearDays := model.DaysInYear(year)
	febEnd := doy(time.February, model.DaysInMonth(year, time.February))

	sectors := []SectorDef{
		{
			Label: model.Winter.String(),
			Fill:  model.Winter.Tint(),
			Spans: []DaySpan{
				{Start: doy(time.December, 1), End: yearDays},
				{Start: 1, End: febEnd},
			},
		},
		{
			Label: model.Spring.String(),
			Fill:  model.Spring.Tint(),
			Spans: []DaySpan{{Start: doy(time.March, 1), End: doy(time.May, 31)}},
		},
		{
			Label: model.Summer.String(),
			Fill:  model.Summer.Tint(),
			Spans: []DaySpan{{Start: doy(time.June, 1), End: doy(time.August, 31)}},
		},
		{
			Label: model.Autumn.String(),
			Fill:  model.Autumn.Tint(),
			Spans: []DaySpan{{Start: doy(time.September, 1), End: doy(time.November, 30)}},
		},
	}

	// Winter runs Dec 1 through end of Feb; its midpoint is mid
	// January. Offset the ring so that midpoint lands at the top.
	winterLen := (yearDays - doy(time.December, 1) + 1) + febEnd
	midDoy := doy(time.December, 1) + winterLen/2
	if midDoy > yearDays {
		midDoy -= yearDays
	}
	midFrac := float64(midDoy-1) / float64(yearDays)
	offset := -midFrac * 2 * math.Pi

	return &Ring{Name: "seasons", Kind: Segmented, Sectors: sectors, OriginOffset: offset}
}

// Defaults returns the standard ring set for a year, keyed by name.
func Defaults(year int) map[string]*Ring {
	set := []*Ring{Seasons(year), Months(year), Weeks(year), HebrewMonths(year), Holidays(year)}
	out := make(map[string]*Ring, len(set))
	for _, r := range set {
		out[r.Name] = r
	}
	return out
}
