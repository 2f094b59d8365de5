package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestPointOnShapeCircle(t *testing.T) {
	center := Point{X: 10, Y: -4}
	radius := 120.0
	for i := 0; i < 24; i++ {
		angle := float64(i) / 24 * 2 * math.Pi
		got := PointOnShape(angle, radius, 1, center)
		want := Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
		if got.Dist(want) > eps {
			t.Errorf("angle %.3f: got %+v, want %+v", angle, got, want)
		}
	}
}

func TestPointOnShapeSquareRightEdge(t *testing.T) {
	center := Point{X: 3, Y: 7}
	radius := 100.0
	got := PointOnShape(0, radius, 0, center)
	wantX := center.X + radius/math.Sqrt2
	if math.Abs(got.X-wantX) > eps {
		t.Errorf("x = %.6f, want %.6f", got.X, wantX)
	}
	if math.Abs(got.Y-center.Y) > eps {
		t.Errorf("y = %.6f, want %.6f", got.Y, center.Y)
	}
}

func TestPointOnShapeSquareCorners(t *testing.T) {
	// At 45 degrees both octant branches agree: the ray hits the
	// square's corner, which lies on the original circle.
	radius := 50.0
	got := PointOnShape(math.Pi/4, radius, 0, Point{})
	half := radius / math.Sqrt2
	if math.Abs(got.X-half) > eps || math.Abs(got.Y-half) > eps {
		t.Errorf("corner = %+v, want (%.6f, %.6f)", got, half, half)
	}
}

func TestPointOnShapeBlendIsBetween(t *testing.T) {
	radius := 80.0
	for i := 0; i < 36; i++ {
		angle := float64(i) / 36 * 2 * math.Pi
		circle := PointOnShape(angle, radius, 1, Point{})
		square := PointOnShape(angle, radius, 0, Point{})
		mid := PointOnShape(angle, radius, 0.5, Point{})
		want := square.Lerp(circle, 0.5)
		if mid.Dist(want) > eps {
			t.Errorf("angle %.3f: blend %+v, want %+v", angle, mid, want)
		}
	}
}

func TestPerimeterCircleMatchesAnalytic(t *testing.T) {
	radius := 200.0
	got := Perimeter(radius, 1)
	want := 2 * math.Pi * radius
	// Polyline sampling slightly underestimates the true arc length.
	if math.Abs(got-want) > want*0.001 {
		t.Errorf("perimeter = %.4f, want ~%.4f", got, want)
	}
}

func TestPerimeterMonotoneInRadius(t *testing.T) {
	for _, roundness := range []float64{0, 0.25, 0.5, 0.75, 1} {
		prev := Perimeter(10, roundness)
		for r := 20.0; r <= 400; r += 10 {
			p := Perimeter(r, roundness)
			if p <= prev {
				t.Fatalf("roundness %.2f: perimeter not monotone at r=%.0f", roundness, r)
			}
			prev = p
		}
	}
}

func TestRadiusForPerimeterConverges(t *testing.T) {
	target := Perimeter(250, 1)
	for _, roundness := range []float64{0, 0.25, 0.5, 0.75, 1} {
		r := RadiusForPerimeter(roundness, target)
		got := Perimeter(r, roundness)
		if math.Abs(got-target) > 1.0 {
			t.Errorf("roundness %.2f: perimeter %.4f, want %.4f (r=%.4f)",
				roundness, got, target, r)
		}
		// Morphing toward the square must grow the radius to keep the
		// boundary length constant.
		if roundness < 1 && r <= 250 {
			t.Errorf("roundness %.2f: radius %.4f should exceed circle radius", roundness, r)
		}
	}
}

func TestMirrorAngleInvolutive(t *testing.T) {
	for i := 0; i < 16; i++ {
		a := float64(i) / 16 * 2 * math.Pi
		if got := MirrorAngle(MirrorAngle(a)); math.Abs(got-a) > eps {
			t.Errorf("mirror twice of %.4f = %.4f", a, got)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > eps {
			t.Errorf("NormalizeAngle(%.4f) = %.4f, want %.4f", tt.in, got, tt.want)
		}
	}
}

func TestEaseOutQuart(t *testing.T) {
	if EaseOutQuart(0) != 0 {
		t.Error("f(0) != 0")
	}
	if EaseOutQuart(1) != 1 {
		t.Error("f(1) != 1")
	}
	prev := 0.0
	for p := 0.05; p <= 1.0; p += 0.05 {
		v := EaseOutQuart(p)
		if v < prev {
			t.Fatalf("easing not monotone at p=%.2f", p)
		}
		prev = v
	}
	// Ease-out: first half covers more than half the distance.
	if EaseOutQuart(0.5) <= 0.5 {
		t.Error("expected ease-out curve to lead linear progress")
	}
}

func TestDirectionFlipAndParse(t *testing.T) {
	if CW.Flip() != CCW || CCW.Flip() != CW {
		t.Error("Flip is not an involution")
	}
	if ParseDirection("ccw") != CCW {
		t.Error(`ParseDirection("ccw")`)
	}
	if ParseDirection("anything") != CW {
		t.Error("unknown direction should fall back to CW")
	}
}
