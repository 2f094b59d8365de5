// Package app orchestrates the visualization: it owns the scene, the
// active display mode, the shared event data and the settings
// persistence hooks. All mutations are serialized behind one mutex;
// the frame ticker calls back under the same lock, so mode code never
// needs its own synchronization.
package app

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/komapc/year-shape/internal/config"
	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/rings"
	"github.com/komapc/year-shape/internal/scene"
	"github.com/komapc/year-shape/internal/weekshape"
	"github.com/komapc/year-shape/internal/zoom"
)

// Mode selects which display owns the scene. Modes are exclusive: a
// switch tears the old mode down completely before the next renders.
type Mode string

const (
	ModeShape Mode = "shape"
	ModeRings Mode = "rings"
	ModeZoom  Mode = "zoom"
)

// ParseMode maps a persisted mode name to a Mode, defaulting to zoom.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeShape, ModeRings:
		return Mode(s)
	default:
		return ModeZoom
	}
}

// frameInterval drives in-flight zoom transitions, roughly 30fps.
const frameInterval = 33 * time.Millisecond

// ErrDestroyed is returned by operations on a destroyed app.
var ErrDestroyed = errors.New("app: destroyed")

// State is the externally visible snapshot of the application.
type State struct {
	Mode         Mode       `json:"mode"`
	Year         int        `json:"year"`
	CornerRadius int        `json:"corner_radius"`
	Direction    string     `json:"direction"`
	Rotation     int        `json:"rotation"`
	Zoom         zoom.State `json:"-"`

	ZoomLevel string `json:"zoom_level"`
	ZoomMonth int    `json:"zoom_month"`
	ZoomWeek  int    `json:"zoom_week"`
	ZoomDay   int    `json:"zoom_day"`
}

// App is the orchestration root. Exactly one mode component is live
// at a time and it is the only writer of the scene.
type App struct {
	mu sync.Mutex

	cfg     *config.Config
	cfgPath string
	loc     *time.Location
	now     func() time.Time

	width  float64
	height float64
	sc     *scene.Scene

	mode   Mode
	events model.EventsByWeek

	shape *weekshape.Shape
	rings *rings.System
	nav   *zoom.Navigator

	onClick func(id string)

	done      chan struct{}
	destroyed bool
}

// New builds the app from a loaded configuration and starts the frame
// ticker.
func New(cfg *config.Config, cfgPath string, width, height float64) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	cfg.Normalize()

	sc, err := scene.New(width, height)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("invalid timezone, falling back to UTC", err, "tz", cfg.Timezone)
		loc = time.UTC
	}

	a := &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		loc:     loc,
		now:     time.Now,
		width:   width,
		height:  height,
		sc:      sc,
		done:    make(chan struct{}),
	}

	if err := a.activate(ParseMode(cfg.Mode)); err != nil {
		return nil, err
	}
	go a.frameLoop()
	return a, nil
}

// SetClock injects a time source (tests). Takes effect on the next
// render.
func (a *App) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if now == nil {
		return
	}
	a.now = now
	if a.shape != nil {
		a.shape.SetClock(now)
	}
	if a.rings != nil {
		a.rings.SetClock(now)
	}
	if a.nav != nil {
		a.nav.SetClock(now)
	}
}

// SetOnItemClick registers a callback fired with the hit id of every
// click that lands on an interactive element.
func (a *App) SetOnItemClick(fn func(id string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClick = fn
}

func (a *App) frameLoop() {
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	wasAnimating := false
	for {
		select {
		case <-a.done:
			return
		case <-t.C:
			a.mu.Lock()
			animating := false
			if !a.destroyed && a.mode == ModeZoom && a.nav != nil {
				animating = a.nav.Animating()
				// One extra frame after the transition ends settles the
				// scene at its canonical placement instead of leaving
				// the last interpolated frame on screen.
				if animating || wasAnimating {
					a.nav.Render(a.sc)
				}
			}
			wasAnimating = animating
			a.mu.Unlock()
		}
	}
}

func (a *App) displayYear() int {
	if a.cfg.CurrentYear != 0 {
		return a.cfg.CurrentYear
	}
	return a.now().In(a.loc).Year()
}

func (a *App) roundness() float64 {
	return geom.Clamp01(float64(a.cfg.CornerRadius) / 100)
}

func (a *App) direction() geom.Direction {
	return geom.ParseDirection(a.cfg.Direction)
}

// activate tears down the current mode and builds the named one from
// the stored settings. Holding the lock is the caller's business.
func (a *App) activate(mode Mode) error {
	// Full teardown: the outgoing mode's component and every node and
	// hit record it placed in the scene.
	a.shape = nil
	a.rings = nil
	a.nav = nil
	a.sc.Reset()

	year := a.displayYear()

	switch mode {
	case ModeShape:
		s, err := weekshape.New(a.width, a.height, year, a.loc)
		if err != nil {
			return err
		}
		s.SetShape(a.roundness(), a.direction())
		s.SetRotation(a.cfg.RotationOffset)
		s.SetEvents(a.events)
		s.SetClock(a.now)
		a.shape = s

	case ModeRings:
		r := rings.NewSystem(a.sc.Center(), a.ringRadius(), year)
		r.SetCornerRoundness(a.roundness())
		r.SetDirection(a.direction())
		r.SetRotation(a.cfg.RotationOffset)
		r.SetRingWidth(a.cfg.RingWidth)
		r.Reorder(a.cfg.RingOrder)
		for name, visible := range a.cfg.RingVisibility {
			r.SetVisibility(name, visible)
		}
		r.SetClock(a.now)
		a.rings = r

	case ModeZoom:
		n, err := zoom.NewNavigator(a.width, a.height, year, a.loc)
		if err != nil {
			return err
		}
		n.SetShape(a.roundness(), a.direction())
		n.SetEvents(a.events)
		n.SetClock(a.now)
		n.Restore(zoom.State{
			Level: zoom.ParseLevel(a.cfg.Zoom.Level),
			Year:  year,
			Month: a.cfg.Zoom.Month,
			Week:  a.cfg.Zoom.Week,
			Day:   a.cfg.Zoom.Day,
		})
		n.SetOnChange(func(s zoom.State) {
			a.cfg.Zoom = config.ZoomConfig{
				Level: s.Level.String(),
				Year:  s.Year,
				Month: s.Month,
				Week:  s.Week,
				Day:   s.Day,
			}
		})
		a.nav = n
	}

	a.mode = mode
	a.cfg.Mode = string(mode)
	a.render()
	return nil
}

func (a *App) ringRadius() float64 {
	half := a.width
	if a.height < half {
		half = a.height
	}
	return half/2 - 30
}

// render rebuilds the scene for the active mode.
func (a *App) render() {
	switch a.mode {
	case ModeShape:
		a.sc.Reset()
		a.shape.Render(a.sc)
	case ModeRings:
		a.sc.Reset()
		a.rings.Render(a.sc)
	case ModeZoom:
		a.nav.Render(a.sc)
	}
}

// save persists the settings after a user-driven mutation. Failures
// are logged, never fatal: the in-memory state stays authoritative.
func (a *App) save() {
	if a.cfgPath == "" {
		return
	}
	if err := a.cfg.Save(a.cfgPath); err != nil {
		log.Error("saving settings failed", err, "path", a.cfgPath)
	}
}

// SetMode switches the active display mode.
func (a *App) SetMode(mode string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return ErrDestroyed
	}
	if err := a.activate(ParseMode(mode)); err != nil {
		return err
	}
	a.save()
	return nil
}

// SetCornerRadius sets the roundness slider position, 0 (square) to
// 100 (circle), and re-renders the active mode.
func (a *App) SetCornerRadius(v int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	a.cfg.CornerRadius = v
	a.applyShape()
	a.render()
	a.save()
}

// ToggleDirection flips between clockwise and counter-clockwise
// placement.
func (a *App) ToggleDirection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	if a.direction() == geom.CW {
		a.cfg.Direction = "ccw"
	} else {
		a.cfg.Direction = "cw"
	}
	a.applyShape()
	a.render()
	a.save()
}

func (a *App) applyShape() {
	switch a.mode {
	case ModeShape:
		a.shape.SetShape(a.roundness(), a.direction())
	case ModeRings:
		a.rings.SetCornerRoundness(a.roundness())
		a.rings.SetDirection(a.direction())
	case ModeZoom:
		a.nav.SetShape(a.roundness(), a.direction())
	}
}

// ShiftSeasons rotates the angular origin by a quarter turn, moving
// which season faces up.
func (a *App) ShiftSeasons() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	a.cfg.RotationOffset = (a.cfg.RotationOffset + 90) % 360
	switch a.mode {
	case ModeShape:
		a.shape.SetRotation(a.cfg.RotationOffset)
	case ModeRings:
		a.rings.SetRotation(a.cfg.RotationOffset)
	}
	a.render()
	a.save()
}

// UpdateEvents replaces the displayed events and redistributes them to
// the active mode.
func (a *App) UpdateEvents(events []model.CalendarEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	a.events = model.GroupByWeek(events)
	switch a.mode {
	case ModeShape:
		a.shape.SetEvents(a.events)
	case ModeZoom:
		a.nav.SetEvents(a.events)
	}
	a.render()
	log.Info("events updated", "count", len(events))
}

// OnItemClick resolves a click to a hit record and dispatches it to
// the active mode. The returned id is empty when nothing interactive
// was hit.
func (a *App) OnItemClick(x, y float64) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return "", false
	}
	rec, ok := a.sc.HitTest(x, y)
	if !ok {
		return "", false
	}
	if a.mode == ModeZoom && a.nav.HandleHit(rec.ID) {
		a.render()
		a.save()
	}
	if a.onClick != nil {
		a.onClick(rec.ID)
	}
	return rec.ID, true
}

// OnHover updates hover feedback (year-level wedge magnification).
func (a *App) OnHover(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed || a.mode != ModeZoom {
		return
	}
	id := ""
	if rec, ok := a.sc.HitTest(x, y); ok {
		id = rec.ID
	}
	if a.nav.HandleHover(id) {
		a.render()
	}
}

// OnWheel feeds a scroll delta to the zoom navigator.
func (a *App) OnWheel(delta float64) {
	a.dispatchGesture(func() bool { return a.nav.HandleWheel(delta) })
}

// OnPinch feeds a live two-touch distance to the zoom navigator.
func (a *App) OnPinch(dist float64) {
	a.dispatchGesture(func() bool { return a.nav.HandlePinch(dist) })
}

// OnPinchEnd resets the pinch baseline.
func (a *App) OnPinchEnd() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed || a.mode != ModeZoom {
		return
	}
	a.nav.PinchEnd()
}

// OnKey feeds a key press; Escape zooms out one level.
func (a *App) OnKey(key string) {
	a.dispatchGesture(func() bool { return a.nav.HandleKey(key) })
}

// OnSwipe feeds a horizontal swipe delta.
func (a *App) OnSwipe(dx float64) {
	a.dispatchGesture(func() bool { return a.nav.HandleSwipe(dx) })
}

func (a *App) dispatchGesture(fire func() bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed || a.mode != ModeZoom {
		return
	}
	if fire() {
		a.render()
		a.save()
	}
}

// NavigatePrev steps to the previous sibling unit: the previous
// month/week/day in zoom mode, the previous year otherwise.
func (a *App) NavigatePrev() {
	a.stepYearOrSibling(-1)
}

// NavigateNext steps to the following sibling unit.
func (a *App) NavigateNext() {
	a.stepYearOrSibling(1)
}

func (a *App) stepYearOrSibling(dir int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	switch a.mode {
	case ModeZoom:
		if dir < 0 {
			a.nav.NavigatePrev()
		} else {
			a.nav.NavigateNext()
		}
		a.cfg.CurrentYear = a.nav.State().Year
	default:
		a.cfg.CurrentYear = a.displayYear() + dir
		if a.shape != nil {
			a.shape.SetYear(a.cfg.CurrentYear)
		}
		if a.rings != nil {
			// Ring sector tables are year-dependent, rebuild the system.
			if err := a.activate(ModeRings); err != nil {
				log.Error("rebuilding rings failed", err)
			}
		}
	}
	a.render()
	a.save()
}

// GetCurrentState returns a read-only snapshot.
func (a *App) GetCurrentState() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := State{
		Mode:         a.mode,
		Year:         a.displayYear(),
		CornerRadius: a.cfg.CornerRadius,
		Direction:    a.cfg.Direction,
		Rotation:     a.cfg.RotationOffset,
	}
	if a.nav != nil {
		st.Zoom = a.nav.State()
		st.Year = st.Zoom.Year
	} else {
		st.Zoom = zoom.State{Level: zoom.LevelYear, Year: st.Year, Day: 1}
	}
	st.ZoomLevel = st.Zoom.Level.String()
	st.ZoomMonth = st.Zoom.Month
	st.ZoomWeek = st.Zoom.Week
	st.ZoomDay = st.Zoom.Day
	return st
}

// NavigateTo drives the zoom navigator directly (API surface).
func (a *App) NavigateTo(level string, month, week, day int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return ErrDestroyed
	}
	if a.mode != ModeZoom {
		return fmt.Errorf("navigate: active mode is %s, not zoom", a.mode)
	}
	a.nav.NavigateTo(zoom.ParseLevel(level), zoom.Params{Month: month, Week: week, Day: day})
	a.render()
	a.save()
	return nil
}

// Resize re-targets the scene to a new viewport.
func (a *App) Resize(width, height float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return ErrDestroyed
	}
	sc, err := scene.New(width, height)
	if err != nil {
		return err
	}
	a.width, a.height = width, height
	a.sc = sc
	// Rebuild the active mode against the new geometry.
	return a.activate(a.mode)
}

// EncodeSVG serializes the current scene.
func (a *App) EncodeSVG(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	scene.EncodeSVG(w, a.sc)
}

// Config returns a snapshot copy of the configuration. The live
// struct never leaves the mutex; mutations go through the App surface.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.Clone()
}

// ApplySettings installs externally supplied settings (PUT
// /api/settings) and rebuilds the active mode.
func (a *App) ApplySettings(cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return ErrDestroyed
	}
	cfg.Normalize()
	a.cfg = cfg
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		a.loc = loc
	}
	if err := a.activate(ParseMode(cfg.Mode)); err != nil {
		return err
	}
	a.save()
	return nil
}

// Destroy stops the frame ticker and detaches all callbacks. The app
// is unusable afterwards.
func (a *App) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.onClick = nil
	close(a.done)
}
