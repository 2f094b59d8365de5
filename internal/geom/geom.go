// Package geom implements the shape-interpolation math behind the
// calendar visualization: mapping polar coordinates onto a shape that
// morphs between a circle and its inscribed square, measuring the
// perimeter of that shape, and searching for the radius that keeps the
// perimeter constant while the shape morphs.
package geom

import "math"

// Point is a 2D point in scene coordinates (y grows downward).
type Point struct {
	X float64
	Y float64
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by f around the origin.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp linearly interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Direction is the winding direction for sequential items placed
// around the shape.
type Direction int

const (
	CW Direction = iota
	CCW
)

// String returns "cw" or "ccw".
func (d Direction) String() string {
	if d == CCW {
		return "ccw"
	}
	return "cw"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == CW {
		return CCW
	}
	return CW
}

// ParseDirection maps a persisted settings value back to a Direction.
// Unknown values fall back to CW.
func ParseDirection(s string) Direction {
	if s == "ccw" {
		return CCW
	}
	return CW
}

// Bounds for the perimeter-preserving radius search. Anything outside
// this range is not a plausible on-screen radius.
const (
	MinRadius = 1.0
	MaxRadius = 4096.0
)

const (
	perimeterSamples = 360
	searchTolerance  = 0.25
	searchMaxIter    = 48
)

// PointOnShape maps (angle, radius) onto the interpolated shape.
// roundness=1 yields the exact circle point, roundness=0 a point on
// the axis-aligned square inscribed in that circle (half-diagonal
// radius/sqrt2). Intermediate values blend the two points linearly,
// which is deliberately simpler than true rounded-rect geometry.
func PointOnShape(angle, radius, roundness float64, center Point) Point {
	circle := Point{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
	t := Clamp01(roundness)
	if t >= 1 {
		return circle
	}
	square := squarePoint(angle, radius, center)
	return square.Lerp(circle, t)
}

// squarePoint returns the point on the inscribed square hit by a ray
// from center at the given angle. The octant test picks the vertical
// or horizontal edge, then the remaining coordinate follows from the
// ray slope.
func squarePoint(angle, radius float64, center Point) Point {
	half := radius / math.Sqrt2
	c := math.Cos(angle)
	s := math.Sin(angle)

	if math.Abs(c) >= math.Abs(s) {
		// Ray hits a vertical edge: x = +-half.
		x := half
		if c < 0 {
			x = -half
		}
		y := x * s / c
		return Point{X: center.X + x, Y: center.Y + y}
	}

	// Ray hits a horizontal edge: y = +-half.
	y := half
	if s < 0 {
		y = -half
	}
	x := y * c / s
	return Point{X: center.X + x, Y: center.Y + y}
}

// Perimeter measures the boundary length of the interpolated shape by
// sampling perimeterSamples points around the full revolution and
// summing segment lengths. Deterministic, and monotone in radius for
// a fixed roundness, which the bisection search below relies on.
func Perimeter(radius, roundness float64) float64 {
	origin := Point{}
	prev := PointOnShape(0, radius, roundness, origin)
	first := prev
	total := 0.0
	for i := 1; i < perimeterSamples; i++ {
		angle := float64(i) / perimeterSamples * 2 * math.Pi
		p := PointOnShape(angle, radius, roundness, origin)
		total += prev.Dist(p)
		prev = p
	}
	total += prev.Dist(first)
	return total
}

// RadiusForPerimeter finds, by bisection, the radius whose shape
// perimeter at the given roundness matches target. If the iteration
// cap is hit before converging the midpoint of the final bracket is
// returned; a slightly imprecise radius only degrades visuals, so
// this never fails.
func RadiusForPerimeter(roundness, target float64) float64 {
	lo, hi := MinRadius, MaxRadius
	for i := 0; i < searchMaxIter; i++ {
		mid := (lo + hi) / 2
		p := Perimeter(mid, roundness)
		if math.Abs(p-target) <= searchTolerance {
			return mid
		}
		if p < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// MirrorAngle reflects an angle across the vertical axis, used when
// the placement direction is counter-clockwise. Involutive:
// MirrorAngle(MirrorAngle(a)) == a.
func MirrorAngle(a float64) float64 {
	return math.Pi - a
}

// NormalizeAngle wraps an angle into [0, 2pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseOutQuart is the transition easing curve: fast start, smooth
// settle. Monotone with f(0)=0 and f(1)=1.
func EaseOutQuart(p float64) float64 {
	p = Clamp01(p)
	inv := 1 - p
	return 1 - inv*inv*inv*inv
}
