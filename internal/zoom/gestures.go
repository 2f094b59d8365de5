package zoom

import "time"

// Gesture thresholds. Wheel deltas accumulate until they cross the
// threshold or go stale; pinch compares the live two-touch distance
// against the distance at touch-start.
const (
	wheelThreshold = 100.0
	wheelIdleReset = 800 * time.Millisecond

	pinchInRatio  = 1.2
	pinchOutRatio = 0.8

	swipeMinDistance = 40.0
)

// wheelAccumulator sums scroll deltas. Add returns +1 when the
// positive threshold is crossed (zoom in), -1 for the negative one,
// and 0 otherwise. The sum resets after an action fires or after an
// idle timeout.
type wheelAccumulator struct {
	sum    float64
	lastAt time.Time
}

func (w *wheelAccumulator) Add(delta float64, now time.Time) int {
	if !w.lastAt.IsZero() && now.Sub(w.lastAt) > wheelIdleReset {
		w.sum = 0
	}
	w.lastAt = now
	w.sum += delta

	switch {
	case w.sum >= wheelThreshold:
		w.Reset()
		return 1
	case w.sum <= -wheelThreshold:
		w.Reset()
		return -1
	}
	return 0
}

func (w *wheelAccumulator) Reset() {
	w.sum = 0
	w.lastAt = time.Time{}
}

// pinchAccumulator tracks a two-touch distance ratio. Update returns
// +1 once growth exceeds pinchInRatio, -1 once shrink passes
// pinchOutRatio. The baseline resets when an action fires and on
// touch end.
type pinchAccumulator struct {
	startDist float64
}

func (p *pinchAccumulator) Update(dist float64) int {
	if dist <= 0 {
		return 0
	}
	if p.startDist == 0 {
		p.startDist = dist
		return 0
	}
	ratio := dist / p.startDist
	switch {
	case ratio > pinchInRatio:
		p.Reset()
		return 1
	case ratio < pinchOutRatio:
		p.Reset()
		return -1
	}
	return 0
}

func (p *pinchAccumulator) Reset() {
	p.startDist = 0
}
