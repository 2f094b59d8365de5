package zoom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/scene"
	"github.com/komapc/year-shape/internal/sector"
)

// All levels draw in a local coordinate space centered at the origin;
// the navigator places the finished wedge-set on screen with an outer
// translate+scale transform. That separation is what makes two levels
// compositable during a cross-fade.

// levelRender is one level's finished wedge-set plus its hit shapes
// in local coordinates.
type levelRender struct {
	group *scene.Group
	hits  []scene.HitRecord
}

// renderContext carries everything a level needs to draw itself.
type renderContext struct {
	radius    float64
	roundness float64
	direction geom.Direction
	now       time.Time
	loc       *time.Location
	events    model.EventsByWeek
	hovered   string
}

const topAngle = -math.Pi / 2

var weekdayShort = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// renderLevel dispatches to the level's pure renderer.
func renderLevel(s State, rc renderContext) levelRender {
	switch s.Level {
	case LevelMonth:
		return renderMonth(s, rc)
	case LevelWeek:
		return renderWeek(s, rc)
	case LevelDay:
		return renderDay(s, rc)
	default:
		return renderYear(s, rc)
	}
}

// hover scale factors for the year level: the hovered wedge grows the
// most, its two angular neighbors a little, for a magnifying read.
const (
	hoverScaleSelf     = 1.07
	hoverScaleNeighbor = 1.03
)

func renderYear(s State, rc renderContext) levelRender {
	lr := levelRender{group: scene.NewGroup("level-year")}
	origin := geom.Point{}
	inner := rc.radius * 0.38

	hoveredIdx := -1
	if n, ok := parseWedgeID(rc.hovered, "month"); ok {
		hoveredIdx = n
	}

	currentMonth := -1
	if rc.now.In(rc.loc).Year() == s.Year {
		currentMonth = int(rc.now.In(rc.loc).Month()) - 1
	}

	labels := scene.NewGroup("year-labels")
	for i := 0; i < 12; i++ {
		start := topAngle + float64(i)/12*2*math.Pi
		end := topAngle + float64(i+1)/12*2*math.Pi

		outer := rc.radius
		switch {
		case i == hoveredIdx:
			outer *= hoverScaleSelf
		case hoveredIdx >= 0 && (i == (hoveredIdx+1)%12 || i == (hoveredIdx+11)%12):
			outer *= hoverScaleNeighbor
		}

		hue := float64(i) / 12 * 360
		fill := colorful.Hsv(hue, 0.32, 0.88).Hex()
		if i == currentMonth {
			fill = colorful.Hsv(hue, 0.55, 1.0).Hex()
		}

		id := fmt.Sprintf("month/%d", i)
		path, hit := sector.Build(id, origin, inner, outer,
			start, end, rc.roundness, rc.direction, sector.Style{Fill: fill})
		lr.group.Add(path)
		lr.hits = append(lr.hits, hit)

		ds, de := sector.AdjustAngles(start, end, rc.direction)
		at := sector.Midpoint(origin, inner, outer, ds, de, rc.roundness)
		labels.Add(&scene.Label{At: at, Text: monthNames[i], FontSize: 13, Fill: "#222222"})
	}
	lr.group.Add(labels)

	if currentMonth >= 0 {
		lr.group.Add(pulsingArrow(origin, rc, currentMonth))
	}
	return lr
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// pulsingArrow marks the current month with an outward-pointing
// triangle whose radial offset oscillates with wall-clock time.
func pulsingArrow(origin geom.Point, rc renderContext, month int) scene.Node {
	mid := topAngle + (float64(month)+0.5)/12*2*math.Pi
	if rc.direction == geom.CCW {
		mid = geom.MirrorAngle(mid)
	}
	pulse := 4 * math.Abs(math.Sin(float64(rc.now.UnixMilli())/400))
	base := rc.radius*1.04 + pulse

	tip := geom.PointOnShape(mid, base, rc.roundness, origin)
	left := geom.PointOnShape(mid-0.03, base+10, rc.roundness, origin)
	right := geom.PointOnShape(mid+0.03, base+10, rc.roundness, origin)

	var pb scene.PathBuilder
	pb.MoveTo(tip.X, tip.Y).LineTo(left.X, left.Y).LineTo(right.X, right.Y).Close()
	return &scene.Path{D: pb.String(), Fill: "#e03030"}
}

func renderMonth(s State, rc renderContext) levelRender {
	lr := levelRender{group: scene.NewGroup("level-month")}
	origin := geom.Point{}
	inner := rc.radius * 0.30
	outer := rc.radius

	days := model.DaysInMonth(s.Year, time.Month(s.Month+1))
	now := rc.now.In(rc.loc)
	today := -1
	if now.Year() == s.Year && int(now.Month())-1 == s.Month {
		today = now.Day()
	}

	// Day-number labels live in their own layer above the wedges,
	// each on a circular badge. Hover-scaling a wedge must never
	// scale or clip its label, so the two are separate node sets.
	labels := scene.NewGroup("month-day-labels")

	for d := 1; d <= days; d++ {
		start := topAngle + float64(d-1)/float64(days)*2*math.Pi
		end := topAngle + float64(d)/float64(days)*2*math.Pi

		weekday := time.Date(s.Year, time.Month(s.Month+1), d, 12, 0, 0, 0, rc.loc).Weekday()
		hue := float64(d-1) / float64(days) * 360
		var fill string
		switch {
		case d == today:
			fill = colorful.Hsv(hue, 0.65, 1.0).Hex()
		case weekday == time.Sunday:
			fill = colorful.Hsv(hue, 0.20, 0.70).Hex()
		default:
			fill = colorful.Hsv(hue, 0.25, 0.92).Hex()
		}

		id := fmt.Sprintf("day/%d", d)
		path, hit := sector.Build(id, origin, inner, outer,
			start, end, rc.roundness, rc.direction, sector.Style{Fill: fill})
		lr.group.Add(path)
		lr.hits = append(lr.hits, hit)

		ds, de := sector.AdjustAngles(start, end, rc.direction)
		at := sector.Midpoint(origin, outer*0.82, outer*0.82, ds, de, rc.roundness)
		labels.Add(&scene.Label{
			At:        at,
			Text:      fmt.Sprintf("%d", d),
			FontSize:  9,
			Fill:      "#222222",
			Badge:     8,
			BadgeFill: "#ffffff",
		})
	}

	lr.group.Add(labels)
	lr.group.Add(&scene.Label{At: geom.Point{}, Text: fmt.Sprintf("%s %d", monthNames[s.Month], s.Year), FontSize: 16, Fill: "#333333"})
	return lr
}

func renderWeek(s State, rc renderContext) levelRender {
	lr := levelRender{group: scene.NewGroup("level-week")}
	origin := geom.Point{}
	inner := rc.radius * 0.32
	outer := rc.radius

	start := model.WeekStart(s.Year, s.Week, rc.loc)
	now := rc.now.In(rc.loc)

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		a0 := topAngle + float64(i)/7*2*math.Pi
		a1 := topAngle + float64(i+1)/7*2*math.Pi

		fill := "#d9e4f0"
		if day.Weekday() == time.Sunday {
			fill = "#c2d4ea"
		}
		if day.Year() == now.Year() && day.YearDay() == now.YearDay() {
			fill = "#f2c94c"
		}

		id := fmt.Sprintf("weekday/%d", i)
		path, hit := sector.Build(id, origin, inner, outer,
			a0, a1, rc.roundness, rc.direction, sector.Style{Fill: fill})
		lr.group.Add(path)
		lr.hits = append(lr.hits, hit)

		ds, de := sector.AdjustAngles(a0, a1, rc.direction)
		at := sector.Midpoint(origin, inner, outer, ds, de, rc.roundness)
		lr.group.Add(&scene.Label{
			At:       at,
			Text:     fmt.Sprintf("%s %d", weekdayShort[i], day.Day()),
			FontSize: 11,
			Fill:     "#222222",
		})
	}

	lr.group.Add(&scene.Label{At: geom.Point{}, Text: fmt.Sprintf("Week %d", s.Week+1), FontSize: 15, Fill: "#333333"})
	return lr
}

// Event dot colors by half of day.
const (
	amDotFill = "#4a90d9"
	pmDotFill = "#e2a33d"
)

func renderDay(s State, rc renderContext) levelRender {
	lr := levelRender{group: scene.NewGroup("level-day")}
	origin := geom.Point{}
	inner := rc.radius * 0.25
	outer := rc.radius

	now := rc.now.In(rc.loc)
	isToday := now.Year() == s.Year && int(now.Month())-1 == s.Month && now.Day() == s.Day

	// A 12-hour clock face with 12 at the top. Hour wedges are
	// informational only: no hit records, clicks fall through.
	for h := 0; h < 12; h++ {
		a0 := topAngle + float64(h)/12*2*math.Pi
		a1 := topAngle + float64(h+1)/12*2*math.Pi

		fill := "#e8e8ee"
		if h%2 == 1 {
			fill = "#dcdce6"
		}
		if isToday && now.Hour()%12 == h {
			fill = "#f2c94c"
		}

		path, _ := sector.Build(fmt.Sprintf("hour/%d", h), origin, inner, outer,
			a0, a1, rc.roundness, rc.direction, sector.Style{Fill: fill})
		lr.group.Add(path)

		label := h
		if label == 0 {
			label = 12
		}
		// Clock numerals sit at the hour tick, not mid-wedge.
		ds, _ := sector.AdjustAngles(a0, a0, rc.direction)
		at := geom.PointOnShape(ds, outer*0.9, rc.roundness, origin)
		lr.group.Add(&scene.Label{At: at, Text: fmt.Sprintf("%d", label), FontSize: 10, Fill: "#555555"})
	}

	for _, ev := range rc.events.EventsOnDay(s.Year, time.Month(s.Month+1), s.Day, rc.loc) {
		t := ev.Start.In(rc.loc)
		frac := (float64(t.Hour()%12) + float64(t.Minute())/60) / 12
		angle := topAngle + frac*2*math.Pi
		if rc.direction == geom.CCW {
			angle = geom.MirrorAngle(angle)
		}
		fill := amDotFill
		if t.Hour() >= 12 {
			fill = pmDotFill
		}
		at := geom.PointOnShape(angle, outer*0.62, rc.roundness, origin)
		lr.group.Add(&scene.Circle{At: at, Radius: 4, Fill: fill, Stroke: "#ffffff"})
	}

	date := time.Date(s.Year, time.Month(s.Month+1), s.Day, 0, 0, 0, 0, rc.loc)
	lr.group.Add(&scene.Label{At: geom.Point{}, Text: date.Format("Jan 2, 2006"), FontSize: 14, Fill: "#333333"})
	return lr
}

// yearWedgeCenter returns the screen position of a month's wedge on
// the year ring, given the year level's screen center and radius.
// Forward transitions out of the year view originate here.
func yearWedgeCenter(screenCenter geom.Point, radius, roundness float64, dir geom.Direction, month int) geom.Point {
	start := topAngle + float64(month)/12*2*math.Pi
	end := topAngle + float64(month+1)/12*2*math.Pi
	ds, de := sector.AdjustAngles(start, end, dir)
	return sector.Midpoint(screenCenter, radius*0.38, radius, ds, de, roundness)
}

// parseWedgeID extracts the index from ids like "month/4" for the
// given kind prefix.
func parseWedgeID(id, kind string) (int, bool) {
	if !strings.HasPrefix(id, kind+"/") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, kind+"/"))
	if err != nil {
		return 0, false
	}
	return n, true
}
