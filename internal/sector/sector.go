// Package sector builds vector paths for annular wedges on the
// interpolated circle/square shape. Every wedge drawn by the ring and
// zoom subsystems goes through here, so stroke and hit-shape rules
// stay consistent across modes.
package sector

import (
	"math"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/scene"
)

// Style carries the visual attributes of one wedge.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

// DefaultStroke is the shared wedge outline; a hairline in the page
// background color so adjacent wedges read as separate.
var DefaultStroke = Style{
	Stroke:      "#ffffff",
	StrokeWidth: 1,
}

// samples per radian of angular span when flattening a morphing arc
// into line segments. At full roundness the true arc command is used
// instead.
const samplesPerRadian = 16

// AdjustAngles maps logical angles to drawing angles for the given
// direction. Under CCW each angle is mirrored across the vertical
// axis, and start/end are swapped so the path winding stays
// consistent; without the swap the wedge path self-intersects.
func AdjustAngles(start, end float64, dir geom.Direction) (float64, float64) {
	if dir == geom.CW {
		return start, end
	}
	return geom.MirrorAngle(end), geom.MirrorAngle(start)
}

// Path builds the path data for a wedge spanning [startAngle,
// endAngle] between innerR and outerR on the shape at the given
// roundness. Angles are drawing angles (already direction-adjusted).
func Path(center geom.Point, innerR, outerR, startAngle, endAngle, roundness float64) string {
	var pb scene.PathBuilder

	outerStart := geom.PointOnShape(startAngle, outerR, roundness, center)
	innerEnd := geom.PointOnShape(endAngle, innerR, roundness, center)
	innerStart := geom.PointOnShape(startAngle, innerR, roundness, center)

	pb.MoveTo(outerStart.X, outerStart.Y)
	appendArc(&pb, center, outerR, startAngle, endAngle, roundness)
	pb.LineTo(innerEnd.X, innerEnd.Y)
	if innerR > 0 {
		appendArc(&pb, center, innerR, endAngle, startAngle, roundness)
	}
	pb.LineTo(innerStart.X, innerStart.Y)
	pb.Close()
	return pb.String()
}

// appendArc draws the shape boundary from angle a to angle b at the
// given radius. On a pure circle this is a single SVG arc command;
// on the morphing shape the boundary is not circular, so it is
// flattened into sampled segments.
func appendArc(pb *scene.PathBuilder, center geom.Point, radius, a, b, roundness float64) {
	if roundness >= 1 {
		end := geom.PointOnShape(b, radius, roundness, center)
		span := b - a
		largeArc := math.Abs(span) > math.Pi
		sweep := span > 0
		pb.ArcTo(radius, end.X, end.Y, largeArc, sweep)
		return
	}

	span := b - a
	steps := int(math.Ceil(math.Abs(span) * samplesPerRadian))
	if steps < 2 {
		steps = 2
	}
	for i := 1; i <= steps; i++ {
		angle := a + span*float64(i)/float64(steps)
		p := geom.PointOnShape(angle, radius, roundness, center)
		pb.LineTo(p.X, p.Y)
	}
}

// Build produces the scene node and hit record for one wedge. The hit
// record carries the direction-adjusted drawing angles, matching the
// on-screen wedge that hit testing probes.
func Build(id string, center geom.Point, innerR, outerR, startAngle, endAngle, roundness float64, dir geom.Direction, style Style) (*scene.Path, scene.HitRecord) {
	ds, de := AdjustAngles(startAngle, endAngle, dir)
	p := &scene.Path{
		D:           Path(center, innerR, outerR, ds, de, roundness),
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Opacity:     style.Opacity,
	}
	if p.Stroke == "" {
		p.Stroke = DefaultStroke.Stroke
		p.StrokeWidth = DefaultStroke.StrokeWidth
	}
	rec := scene.HitRecord{
		ID: id,
		Shape: scene.WedgeHit{
			Center:     center,
			InnerR:     innerR,
			OuterR:     outerR,
			StartAngle: geom.NormalizeAngle(ds),
			EndAngle:   geom.NormalizeAngle(de),
		},
	}
	return p, rec
}

// Midpoint returns the visual center of a wedge: mid-angle at
// mid-radius on the shape. Used for label anchors and as the origin
// of zoom-in transitions from the year ring.
func Midpoint(center geom.Point, innerR, outerR, startAngle, endAngle, roundness float64) geom.Point {
	midAngle := (startAngle + endAngle) / 2
	midR := (innerR + outerR) / 2
	return geom.PointOnShape(midAngle, midR, roundness, center)
}
