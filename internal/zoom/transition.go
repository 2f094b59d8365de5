package zoom

import (
	"sync/atomic"
	"time"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/scene"
)

// DefaultDuration is the wall-clock length of a level transition.
const DefaultDuration = 450 * time.Millisecond

// Thresholds within eased progress. The incoming set starts rendering
// a little late so it never pops in over an empty frame, and the
// outgoing set is dropped a little early so the final frame is never
// doubled up.
const (
	newSetAppearsAt = 0.1
	oldSetGoneAt    = 0.8
	splitPoint      = 0.5
	// shrunkScale is the size of a level at the far end of its travel.
	shrunkScale = 0.25
)

// Transition is the transient value that exists only while a level
// change animates. Starting a new navigation cancels the previous
// transition synchronously; the animation loop checks the flag on
// every frame and stops scheduling.
type Transition struct {
	From State
	To   State

	// ZoomIn is true when depth(To) > depth(From).
	ZoomIn bool

	// OriginCenter is where the moving wedge-set starts (zoom-in) or
	// ends (zoom-out) its travel in screen space. Forward transitions
	// from the year view originate at the clicked month's wedge; all
	// other transitions use the fixed screen center.
	OriginCenter geom.Point
	// ScreenCenter is the fixed on-screen center of a settled level.
	ScreenCenter geom.Point

	StartedAt time.Time
	Duration  time.Duration

	cancelled atomic.Bool
}

// Cancel marks the transition dead. Safe from any goroutine.
func (t *Transition) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether a later navigation superseded this one.
func (t *Transition) Cancelled() bool {
	return t.cancelled.Load()
}

// RawProgress returns the un-eased fraction of the duration elapsed,
// clamped to [0, 1]. Opacity fades track this linear value.
func (t *Transition) RawProgress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return geom.Clamp01(float64(now.Sub(t.StartedAt)) / float64(t.Duration))
}

// Progress returns the eased progress at the given instant. Placement
// and the appear/gone gates work in this eased space.
func (t *Transition) Progress(now time.Time) float64 {
	return geom.EaseOutQuart(t.RawProgress(now))
}

// Done reports whether the transition has run its full duration.
func (t *Transition) Done(now time.Time) bool {
	return !now.Before(t.StartedAt.Add(t.Duration))
}

// frame holds the per-frame placement of both wedge-sets.
type frame struct {
	renderOld bool
	renderNew bool

	oldTransform scene.Transform
	newTransform scene.Transform
	oldOpacity   float64
	newOpacity   float64
}

// phase splits eased progress into two half-phases. The first return
// covers p in [0, 0.5], the second p in [0.5, 1]; both are 0..1.
func phase(p float64) (float64, float64) {
	first := geom.Clamp01(p / splitPoint)
	second := geom.Clamp01((p - splitPoint) / (1 - splitPoint))
	return first, second
}

// frameAt computes both transforms for the eased progress p. The
// opacity cross-fade runs on raw, so it spans the full duration at a
// constant rate while the placement keeps its ease-out feel.
//
// Zoom-in reads as "move into place, then expand": the incoming level
// travels from the origin wedge to the screen center during the first
// half and grows to full size during the second. Zoom-out is the
// reverse reading, "shrink, then slide back": the outgoing level
// shrinks in place first, then slides toward its origin wedge. The
// settled set always sits at the screen center at full scale.
func (t *Transition) frameAt(p, raw float64) frame {
	var f frame
	f.renderNew = p > newSetAppearsAt || p >= 1
	f.renderOld = p <= oldSetGoneAt && p < 1
	f.oldOpacity = 1 - raw
	f.newOpacity = raw

	center := scene.Transform{
		TranslateX: t.ScreenCenter.X,
		TranslateY: t.ScreenCenter.Y,
		Scale:      1,
	}

	if t.ZoomIn {
		posT, scaleT := phase(p)
		at := t.OriginCenter.Lerp(t.ScreenCenter, posT)
		f.newTransform = scene.Transform{
			TranslateX: at.X,
			TranslateY: at.Y,
			Scale:      geom.Lerp(shrunkScale, 1, scaleT),
		}
		f.oldTransform = center
		return f
	}

	scaleT, posT := phase(p)
	at := t.ScreenCenter.Lerp(t.OriginCenter, posT)
	f.oldTransform = scene.Transform{
		TranslateX: at.X,
		TranslateY: at.Y,
		Scale:      geom.Lerp(1, shrunkScale, scaleT),
	}
	f.newTransform = center
	return f
}
