package rings

import (
	"fmt"
	"math"
	"time"

	"github.com/komapc/year-shape/internal/geom"
	applog "github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/scene"
	"github.com/komapc/year-shape/internal/sector"
)

// Defaults for the radial budget. MinInnerRadius guarantees a free
// center area regardless of how many rings are toggled on.
const (
	DefaultGap            = 6.0
	DefaultMinInnerRadius = 60.0
	indicatorOverhang     = 14.0
)

// Band is one ring's placement for the current layout pass.
type Band struct {
	Ring   *Ring
	InnerR float64
	OuterR float64
}

// LayoutResult is derived per layout call and never stored.
type LayoutResult struct {
	AdjustedRadius float64
	EffectiveWidth float64
	Bands          []Band
	// Dropped lists rings that did not fit inside MinInnerRadius and
	// were silently omitted, innermost first.
	Dropped []string
	// TodayAngle is the drawing angle of the today indicator.
	TodayAngle float64
}

// System owns the ordered list of rings and their shared layout
// parameters.
type System struct {
	center     geom.Point
	baseRadius float64
	gap        float64
	width      float64
	minInner   float64

	roundness float64
	direction geom.Direction
	rotation  int // degrees, quarter turns

	order   []string
	visible map[string]bool
	rings   map[string]*Ring

	year int
	now  func() time.Time

	// targetPerimeter is captured lazily from the base radius at full
	// roundness on the first layout and then held for the lifetime of
	// the system; recomputing it would shift all subsequent sizing.
	targetPerimeter float64
}

// NewSystem creates a ring system centered at center with the given
// base (outermost) radius, populated with the default ring set for
// the year.
func NewSystem(center geom.Point, baseRadius float64, year int) *System {
	s := &System{
		center:     center,
		baseRadius: baseRadius,
		gap:        DefaultGap,
		width:      36,
		minInner:   DefaultMinInnerRadius,
		roundness:  1,
		direction:  geom.CW,
		rings:      Defaults(year),
		visible:    make(map[string]bool),
		year:       year,
		now:        time.Now,
	}
	s.order = []string{"seasons", "months", "weeks", "hebrew-months", "holidays"}
	for _, name := range []string{"seasons", "months", "weeks"} {
		s.visible[name] = true
	}
	return s
}

// AddRing registers a ring and appends it to the order (innermost).
func (s *System) AddRing(r *Ring, visible bool) {
	if _, exists := s.rings[r.Name]; !exists {
		s.order = append(s.order, r.Name)
	}
	s.rings[r.Name] = r
	s.visible[r.Name] = visible
}

// SetVisibility toggles one ring by name.
func (s *System) SetVisibility(name string, visible bool) {
	if _, ok := s.rings[name]; !ok {
		return
	}
	s.visible[name] = visible
}

// Visible reports a ring's visibility.
func (s *System) Visible(name string) bool {
	return s.visible[name]
}

// Reorder replaces the ring order (outermost first). Unknown names
// are dropped; known rings missing from the list keep their relative
// order at the end.
func (s *System) Reorder(names []string) {
	seen := make(map[string]bool, len(names))
	next := make([]string, 0, len(s.order))
	for _, n := range names {
		if _, ok := s.rings[n]; ok && !seen[n] {
			next = append(next, n)
			seen[n] = true
		}
	}
	for _, n := range s.order {
		if !seen[n] {
			next = append(next, n)
		}
	}
	s.order = next
}

// Order returns the current ring order, outermost first.
func (s *System) Order() []string {
	return append([]string(nil), s.order...)
}

// SetCornerRoundness sets the shape interpolation factor (1=circle).
func (s *System) SetCornerRoundness(r float64) {
	s.roundness = geom.Clamp01(r)
}

// SetDirection sets the placement direction.
func (s *System) SetDirection(d geom.Direction) {
	s.direction = d
}

// RotateBy90 advances the angular origin a quarter turn and returns
// the new offset in degrees.
func (s *System) RotateBy90() int {
	s.rotation = (s.rotation + 90) % 360
	return s.rotation
}

// SetRotation sets the angular origin offset (snapped to quarter
// turns by the settings layer).
func (s *System) SetRotation(deg int) {
	s.rotation = ((deg % 360) + 360) % 360
}

// SetRingWidth sets the configured band width in pixels.
func (s *System) SetRingWidth(px float64) {
	if px > 0 {
		s.width = px
	}
}

// SetClock injects a time source for the today indicator.
func (s *System) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// origin is the drawing angle of day 0: top of the shape plus the
// user's quarter-turn rotation.
func (s *System) origin() float64 {
	return -math.Pi/2 + geom.DegToRad(float64(s.rotation))
}

// angleForDayFrac maps a fraction of the year to a drawing angle.
func (s *System) angleForDayFrac(frac, ringOffset float64) float64 {
	return s.origin() + ringOffset + frac*2*math.Pi
}

// Layout computes per-ring radial bands for the current parameters.
func (s *System) Layout() LayoutResult {
	if s.targetPerimeter == 0 {
		s.targetPerimeter = geom.Perimeter(s.baseRadius, 1)
	}

	adjusted := geom.RadiusForPerimeter(s.roundness, s.targetPerimeter)

	visible := make([]*Ring, 0, len(s.order))
	for _, name := range s.order {
		if s.visible[name] {
			visible = append(visible, s.rings[name])
		}
	}

	res := LayoutResult{AdjustedRadius: adjusted}

	n := len(visible)
	width := s.width
	if n > 0 {
		// Clamp so visibleCount*width + (visibleCount-1)*gap fits
		// between the adjusted radius and the protected center. Never
		// widen beyond the configured width.
		maxWidth := (adjusted - s.minInner - float64(n-1)*s.gap) / float64(n)
		if maxWidth < width {
			width = maxWidth
		}
		if width < 1 {
			width = 1
		}
	}
	res.EffectiveWidth = width

	outer := adjusted
	for i, r := range visible {
		inner := outer - width
		if inner < s.minInner {
			// Out of radial space: silently drop this and all
			// remaining (innermost) rings.
			for _, rest := range visible[i:] {
				res.Dropped = append(res.Dropped, rest.Name)
			}
			applog.Debug("ring layout dropped rings", "count", len(res.Dropped))
			break
		}
		res.Bands = append(res.Bands, Band{Ring: r, InnerR: inner, OuterR: outer})
		outer = inner - s.gap
	}

	now := s.now()
	frac := float64(model.DayOfYear(now)-1) / float64(model.DaysInYear(now.Year()))
	today := s.angleForDayFrac(frac, 0)
	if s.direction == geom.CCW {
		today = geom.MirrorAngle(today)
	}
	res.TodayAngle = today

	return res
}

// Render lays out and draws all visible rings into the scene,
// registering a hit record per sector. Ring clicks identify the
// sector but have no deeper drill-down.
func (s *System) Render(sc *scene.Scene) LayoutResult {
	res := s.Layout()

	root := scene.NewGroup("rings")
	for _, band := range res.Bands {
		s.renderBand(sc, root, band)
	}
	s.renderTodayIndicator(root, res)
	sc.Root.Add(root)
	return res
}

func (s *System) renderBand(sc *scene.Scene, root *scene.Group, band Band) {
	g := scene.NewGroup("ring-" + band.Ring.Name)
	switch band.Ring.Kind {
	case EqualDivision:
		n := band.Ring.SectorCount
		for i := 0; i < n; i++ {
			startFrac := float64(i) / float64(n)
			endFrac := float64(i+1) / float64(n)
			s.renderSector(sc, g, band, i,
				band.Ring.LabelFunc(i), band.Ring.ColorFunc(i),
				startFrac, endFrac)
		}
	case DayRange, Segmented:
		yearDays := float64(model.DaysInYear(s.year))
		for i, def := range band.Ring.Sectors {
			for _, span := range def.Spans {
				startFrac := float64(span.Start-1) / yearDays
				endFrac := float64(span.End) / yearDays
				s.renderSector(sc, g, band, i, def.Label, def.Fill, startFrac, endFrac)
			}
		}
	}
	root.Add(g)
}

func (s *System) renderSector(sc *scene.Scene, g *scene.Group, band Band, index int, label, fill string, startFrac, endFrac float64) {
	start := s.angleForDayFrac(startFrac, band.Ring.OriginOffset)
	end := s.angleForDayFrac(endFrac, band.Ring.OriginOffset)

	id := fmt.Sprintf("ring/%s/%d", band.Ring.Name, index)
	path, hit := sector.Build(id, s.center, band.InnerR, band.OuterR,
		start, end, s.roundness, s.direction, sector.Style{Fill: fill})
	g.Add(path)
	sc.RegisterHit(hit, scene.Identity(), true)

	// Label only sectors wide enough to hold text.
	if band.OuterR-band.InnerR >= 14 && (endFrac-startFrac) > 0.01 {
		ds, de := sector.AdjustAngles(start, end, s.direction)
		at := sector.Midpoint(s.center, band.InnerR, band.OuterR, ds, de, s.roundness)
		g.Add(&scene.Label{At: at, Text: label, FontSize: 9, Fill: "#333333"})
	}
}

// renderTodayIndicator draws the rotating marker for the current day,
// extended slightly beyond the outermost visible ring.
func (s *System) renderTodayIndicator(root *scene.Group, res LayoutResult) {
	if len(res.Bands) == 0 {
		return
	}
	outer := res.Bands[0].OuterR
	from := geom.PointOnShape(res.TodayAngle, outer, s.roundness, s.center)
	to := geom.PointOnShape(res.TodayAngle, outer+indicatorOverhang, s.roundness, s.center)
	root.Add(&scene.Line{From: from, To: to, Stroke: "#e03030", StrokeWidth: 2.5})
	root.Add(&scene.Circle{At: to, Radius: 3.5, Fill: "#e03030"})
}
