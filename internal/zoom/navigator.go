package zoom

import (
	"math"
	"time"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/scene"
)

// Navigator owns the drill-down state machine. All navigation updates
// the state synchronously; the transition only affects how the change
// is drawn, never what the current state is.
type Navigator struct {
	width  float64
	height float64
	loc    *time.Location

	now      func() time.Time
	duration time.Duration

	state     State
	roundness float64
	direction geom.Direction
	events    model.EventsByWeek
	hovered   string

	trans *Transition

	wheel wheelAccumulator
	pinch pinchAccumulator

	onChange func(State)
}

// NewNavigator creates a navigator showing the given year at the year
// level. The viewport must have usable area.
func NewNavigator(width, height float64, year int, loc *time.Location) (*Navigator, error) {
	if width <= 0 || height <= 0 {
		return nil, scene.ErrNoViewport
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Navigator{
		width:     width,
		height:    height,
		loc:       loc,
		now:       time.Now,
		duration:  DefaultDuration,
		state:     State{Level: LevelYear, Year: year, Day: 1},
		roundness: 1,
		direction: geom.CW,
	}, nil
}

// SetClock overrides the time source (tests).
func (n *Navigator) SetClock(now func() time.Time) {
	if now != nil {
		n.now = now
	}
}

// SetDuration overrides the transition length; zero disables animation.
func (n *Navigator) SetDuration(d time.Duration) {
	n.duration = d
}

// SetEvents replaces the event data shown at the day level.
func (n *Navigator) SetEvents(ev model.EventsByWeek) {
	n.events = ev
}

// SetShape updates the wedge outline the levels draw with.
func (n *Navigator) SetShape(roundness float64, dir geom.Direction) {
	n.roundness = geom.Clamp01(roundness)
	n.direction = dir
}

// SetOnChange registers a hook fired after every state change.
func (n *Navigator) SetOnChange(fn func(State)) {
	n.onChange = fn
}

// Resize updates the viewport the navigator plans transitions for.
func (n *Navigator) Resize(width, height float64) {
	if width > 0 && height > 0 {
		n.width = width
		n.height = height
	}
}

// State returns the current navigation state.
func (n *Navigator) State() State {
	return n.state
}

// Restore re-enters a persisted state without animating, clamping any
// stale fields back into range.
func (n *Navigator) Restore(s State) {
	base := State{
		Level: LevelYear,
		Year:  s.Year,
		Month: clampInt(s.Month, 0, 11),
		Week:  clampInt(s.Week, 0, model.WeeksPerYear-1),
		Day:   clampInt(s.Day, 1, 31),
	}
	switch s.Level {
	case LevelMonth:
		n.state = base.resolve(LevelMonth, WithMonth(base.Month), n.loc)
	case LevelWeek:
		n.state = base.resolve(LevelWeek, WithWeek(base.Week), n.loc)
	case LevelDay:
		n.state = base.resolve(LevelDay, Params{Month: base.Month, Week: Derive, Day: base.Day}, n.loc)
	default:
		n.state = base
	}
}

func (n *Navigator) screenCenter() geom.Point {
	return geom.Point{X: n.width / 2, Y: n.height / 2}
}

func (n *Navigator) radius() float64 {
	return math.Min(n.width, n.height) / 2 * 0.8
}

// NavigateTo moves to the given level. Unsupplied params derive from
// the current state. The state update is synchronous; only the drawing
// animates.
func (n *Navigator) NavigateTo(level Level, p Params) State {
	to := n.state.resolve(level, p, n.loc)
	n.apply(to, true)
	return n.state
}

// NavigateBack moves one level shallower. At the year level it is a
// no-op.
func (n *Navigator) NavigateBack() State {
	s := n.state
	switch s.Level {
	case LevelMonth:
		return n.NavigateTo(LevelYear, NoParams())
	case LevelWeek:
		return n.NavigateTo(LevelMonth, WithMonth(s.Month))
	case LevelDay:
		return n.NavigateTo(LevelWeek, NoParams())
	}
	return s
}

// NavigatePrev steps to the previous sibling unit of the current
// level, wrapping across year and month boundaries.
func (n *Navigator) NavigatePrev() State {
	n.apply(n.state.prevSibling(n.loc), false)
	return n.state
}

// NavigateNext steps to the following sibling unit.
func (n *Navigator) NavigateNext() State {
	n.apply(n.state.nextSibling(n.loc), false)
	return n.state
}

// apply installs the new state, cancelling any in-flight transition.
// Gesture accumulators reset so a half-finished gesture never carries
// into the new level.
func (n *Navigator) apply(to State, animate bool) {
	from := n.state
	if n.trans != nil {
		n.trans.Cancel()
		n.trans = nil
	}
	n.state = to
	n.hovered = ""
	n.wheel.Reset()
	n.pinch.Reset()

	if animate && to.Level != from.Level && n.duration > 0 {
		n.trans = n.planTransition(from, to)
	}

	log.Debug("zoom: state change",
		"from", from.Level, "to", to.Level,
		"year", to.Year, "month", to.Month, "week", to.Week, "day", to.Day)

	if n.onChange != nil {
		n.onChange(to)
	}
}

// planTransition decides the travel endpoints. Forward transitions out
// of the year view originate at the clicked month's wedge; backward
// transitions into the year view travel to that wedge. Everything else
// stays at the fixed screen center.
func (n *Navigator) planTransition(from, to State) *Transition {
	center := n.screenCenter()
	zoomIn := to.Level.Depth() > from.Level.Depth()

	origin := center
	switch {
	case zoomIn && from.Level == LevelYear:
		origin = yearWedgeCenter(center, n.radius(), n.roundness, n.direction, to.Month)
	case !zoomIn && to.Level == LevelYear:
		origin = yearWedgeCenter(center, n.radius(), n.roundness, n.direction, from.Month)
	}

	return &Transition{
		From:         from,
		To:           to,
		ZoomIn:       zoomIn,
		OriginCenter: origin,
		ScreenCenter: center,
		StartedAt:    n.now(),
		Duration:     n.duration,
	}
}

// HandleHit reacts to a click on a registered element. Returns false
// when the id is not a zoom target.
func (n *Navigator) HandleHit(id string) bool {
	if id == "back" {
		n.NavigateBack()
		return true
	}
	if m, ok := parseWedgeID(id, "month"); ok {
		n.NavigateTo(LevelMonth, WithMonth(m))
		return true
	}
	if d, ok := parseWedgeID(id, "day"); ok {
		// A day wedge opens the week containing that day.
		n.NavigateTo(LevelWeek, Params{Month: n.state.Month, Week: Derive, Day: d})
		return true
	}
	if i, ok := parseWedgeID(id, "weekday"); ok {
		t := model.WeekStart(n.state.Year, n.state.Week, n.loc).AddDate(0, 0, clampInt(i, 0, 6))
		to := n.state
		to.Level = LevelDay
		to.Year = t.Year()
		to.Month = int(t.Month()) - 1
		to.Day = t.Day()
		to.Week = model.WeekForDay(to.Year, t.Month(), t.Day(), n.loc)
		n.apply(to, true)
		return true
	}
	return false
}

// HandleHover updates the hovered element id ("" clears it). Returns
// true when a redraw is needed.
func (n *Navigator) HandleHover(id string) bool {
	if id == n.hovered {
		return false
	}
	n.hovered = id
	return true
}

// HandleWheel accumulates a scroll delta and fires a level change once
// the threshold is crossed. Positive deltas zoom in.
func (n *Navigator) HandleWheel(delta float64) bool {
	switch n.wheel.Add(delta, n.now()) {
	case 1:
		return n.zoomInStep()
	case -1:
		return n.zoomOutStep()
	}
	return false
}

// HandlePinch feeds the live two-touch distance. PinchEnd must be
// called when the touches lift.
func (n *Navigator) HandlePinch(dist float64) bool {
	switch n.pinch.Update(dist) {
	case 1:
		return n.zoomInStep()
	case -1:
		return n.zoomOutStep()
	}
	return false
}

// PinchEnd resets the pinch baseline on touch end.
func (n *Navigator) PinchEnd() {
	n.pinch.Reset()
}

// HandleKey reacts to keyboard input. Escape steps back one level.
func (n *Navigator) HandleKey(key string) bool {
	if key == "Escape" && n.state.Level != LevelYear {
		n.NavigateBack()
		return true
	}
	return false
}

// HandleSwipe reacts to a horizontal swipe: rightward goes to the
// previous sibling, leftward to the next.
func (n *Navigator) HandleSwipe(dx float64) bool {
	switch {
	case dx >= swipeMinDistance:
		n.NavigatePrev()
		return true
	case dx <= -swipeMinDistance:
		n.NavigateNext()
		return true
	}
	return false
}

// zoomInStep deepens by gesture: the year view opens the stored month,
// while month and week views jump straight to the day, since an
// accumulated gesture expresses more intent than a single click.
func (n *Navigator) zoomInStep() bool {
	switch n.state.Level {
	case LevelYear:
		n.NavigateTo(LevelMonth, NoParams())
	case LevelMonth, LevelWeek:
		n.NavigateTo(LevelDay, NoParams())
	default:
		return false
	}
	return true
}

func (n *Navigator) zoomOutStep() bool {
	if n.state.Level == LevelYear {
		return false
	}
	n.NavigateBack()
	return true
}

// Animating reports whether a transition is still running; callers
// keep scheduling frames while it is true.
func (n *Navigator) Animating() bool {
	return n.trans != nil && !n.trans.Cancelled() && !n.trans.Done(n.now())
}

// Render rebuilds the scene for the current instant. While a
// transition runs, both wedge-sets composite with their interpolated
// placements and the outgoing set is non-interactive. Once it
// finishes, the settled level is rebuilt from scratch so its hit
// records are freshly registered rather than left over from transient
// transition nodes.
func (n *Navigator) Render(sc *scene.Scene) {
	sc.Reset()
	now := n.now()
	center := sc.Center()

	rc := renderContext{
		radius:    math.Min(sc.Width, sc.Height) / 2 * 0.8,
		roundness: n.roundness,
		direction: n.direction,
		now:       now,
		loc:       n.loc,
		events:    n.events,
		hovered:   n.hovered,
	}

	t := n.trans
	if t != nil && (t.Cancelled() || t.Done(now)) {
		n.trans = nil
		t = nil
	}

	if t == nil {
		lr := renderLevel(n.state, rc)
		place := scene.Transform{TranslateX: center.X, TranslateY: center.Y, Scale: 1}
		lr.group.Transform = place
		sc.Root.Add(lr.group)
		for _, h := range lr.hits {
			sc.RegisterHit(h, place, true)
		}
		if n.state.Level != LevelYear {
			n.addBackControl(sc)
		}
		return
	}

	// Hover effects are suppressed mid-transition.
	rc.hovered = ""
	f := t.frameAt(t.Progress(now), t.RawProgress(now))

	if f.renderOld {
		lr := renderLevel(t.From, rc)
		lr.group.Transform = f.oldTransform
		lr.group.Opacity = f.oldOpacity
		lr.group.Interactive = false
		sc.Root.Add(lr.group)
	}
	if f.renderNew {
		lr := renderLevel(t.To, rc)
		lr.group.Transform = f.newTransform
		lr.group.Opacity = f.newOpacity
		sc.Root.Add(lr.group)
		for _, h := range lr.hits {
			sc.RegisterHit(h, f.newTransform, true)
		}
	}
	if t.To.Level != LevelYear {
		n.addBackControl(sc)
	}
}

const backControlRadius = 18.0

// addBackControl draws the corner back button present on every level
// below the year view.
func (n *Navigator) addBackControl(sc *scene.Scene) {
	at := geom.Point{X: 34, Y: 34}
	g := scene.NewGroup("back-control")
	g.Add(&scene.Circle{At: at, Radius: backControlRadius, Fill: "#f0f0f4", Stroke: "#cccccc"})
	g.Add(&scene.Label{At: at, Text: "←", FontSize: 14, Fill: "#333333"})
	sc.Root.Add(g)
	sc.RegisterHit(scene.HitRecord{
		ID:    "back",
		Shape: scene.CircleHit{Center: at, Radius: backControlRadius},
	}, scene.Identity(), true)
}
