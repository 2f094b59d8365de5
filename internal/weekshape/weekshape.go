// Package weekshape draws the year as 52 week markers evenly spaced
// along the morphing circle/square outline. Unlike the ring mode it
// carries no radial bands: each week is a single dot whose color
// reports its season and whether it holds events.
package weekshape

import (
	"fmt"
	"math"
	"time"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/scene"
)

const (
	// edgeMargin keeps markers and the today arrow inside the viewport.
	edgeMargin = 36.0

	markerRadiusFrac = 0.022
	minMarkerRadius  = 4.0

	eventFill    = "#4a90d9"
	markerStroke = "#ffffff"
	arrowFill    = "#e03030"
)

// Shape owns the marker layout parameters for one viewport.
type Shape struct {
	center     geom.Point
	baseRadius float64
	minHalf    float64

	roundness float64
	direction geom.Direction
	rotation  int // degrees, quarter turns

	year   int
	loc    *time.Location
	counts map[int]int
	now    func() time.Time

	// targetPerimeter is captured from the base radius at full
	// roundness on first layout and held, so morphing the outline
	// preserves its length instead of its radius.
	targetPerimeter float64
}

// New creates the marker shape for the given viewport and year.
func New(width, height float64, year int, loc *time.Location) (*Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, scene.ErrNoViewport
	}
	if loc == nil {
		loc = time.UTC
	}
	minHalf := math.Min(width, height) / 2
	return &Shape{
		center:     geom.Point{X: width / 2, Y: height / 2},
		baseRadius: minHalf - edgeMargin,
		minHalf:    minHalf,
		roundness:  1,
		direction:  geom.CW,
		year:       year,
		loc:        loc,
		now:        time.Now,
	}, nil
}

// SetShape sets the outline interpolation factor and direction.
func (s *Shape) SetShape(roundness float64, dir geom.Direction) {
	s.roundness = geom.Clamp01(roundness)
	s.direction = dir
}

// SetRotation sets the angular origin offset in degrees.
func (s *Shape) SetRotation(deg int) {
	s.rotation = ((deg % 360) + 360) % 360
}

// SetYear switches the displayed year.
func (s *Shape) SetYear(year int) {
	s.year = year
}

// SetEvents replaces the per-week event counts driving marker fills.
func (s *Shape) SetEvents(ev model.EventsByWeek) {
	s.counts = ev.CountByWeek()
}

// SetClock injects a time source for the today arrow.
func (s *Shape) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Resize recomputes the layout for a new viewport, keeping the
// captured perimeter only when the base radius is unchanged.
func (s *Shape) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	minHalf := math.Min(width, height) / 2
	base := minHalf - edgeMargin
	if base != s.baseRadius {
		s.targetPerimeter = 0
	}
	s.center = geom.Point{X: width / 2, Y: height / 2}
	s.baseRadius = base
	s.minHalf = minHalf
}

func (s *Shape) origin() float64 {
	return -math.Pi/2 + geom.DegToRad(float64(s.rotation))
}

// adjustedRadius preserves the outline perimeter across morphs.
func (s *Shape) adjustedRadius() float64 {
	if s.targetPerimeter == 0 {
		s.targetPerimeter = geom.Perimeter(s.baseRadius, 1)
	}
	return geom.RadiusForPerimeter(s.roundness, s.targetPerimeter)
}

// markerAngle returns the drawing angle of week w.
func (s *Shape) markerAngle(w int) float64 {
	a := s.origin() + float64(w)/model.WeeksPerYear*2*math.Pi
	if s.direction == geom.CCW {
		a = geom.MirrorAngle(a)
	}
	return a
}

// MarkerPosition returns week w's on-screen center for the current
// parameters.
func (s *Shape) MarkerPosition(w int) geom.Point {
	return geom.PointOnShape(s.markerAngle(w), s.adjustedRadius(), s.roundness, s.center)
}

func (s *Shape) markerRadius() float64 {
	r := s.minHalf * markerRadiusFrac
	if r < minMarkerRadius {
		r = minMarkerRadius
	}
	return r
}

// Render draws all 52 markers, the today arrow and the year label,
// registering one hit record per marker.
func (s *Shape) Render(sc *scene.Scene) {
	radius := s.adjustedRadius()
	dot := s.markerRadius()

	root := scene.NewGroup("week-shape")
	for w := 0; w < model.WeeksPerYear; w++ {
		at := geom.PointOnShape(s.markerAngle(w), radius, s.roundness, s.center)

		fill := model.SeasonForWeek(s.year, w).Tint()
		if s.counts[w] > 0 {
			fill = eventFill
		}
		root.Add(&scene.Circle{At: at, Radius: dot, Fill: fill, Stroke: markerStroke})

		sc.RegisterHit(scene.HitRecord{
			ID:    fmt.Sprintf("week/%d", w),
			Shape: scene.CircleHit{Center: at, Radius: dot},
		}, scene.Identity(), true)
	}

	s.renderTodayArrow(root, radius, dot)
	root.Add(&scene.Label{
		At:       s.center,
		Text:     fmt.Sprintf("%d", s.year),
		FontSize: 22,
		Fill:     "#333333",
	})
	sc.Root.Add(root)
}

// renderTodayArrow points at the current week's marker from outside
// the outline. Years other than the displayed one get no arrow.
func (s *Shape) renderTodayArrow(root *scene.Group, radius, dot float64) {
	now := s.now().In(s.loc)
	if now.Year() != s.year {
		return
	}

	a := s.markerAngle(model.WeekIndex(now))
	tip := geom.PointOnShape(a, radius+dot+2, s.roundness, s.center)
	left := geom.PointOnShape(a-0.025, radius+dot+14, s.roundness, s.center)
	right := geom.PointOnShape(a+0.025, radius+dot+14, s.roundness, s.center)

	var pb scene.PathBuilder
	pb.MoveTo(tip.X, tip.Y).LineTo(left.X, left.Y).LineTo(right.X, right.Y).Close()
	root.Add(&scene.Path{D: pb.String(), Fill: arrowFill})
}
