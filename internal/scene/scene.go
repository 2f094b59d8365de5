// Package scene holds the retained vector scene the visualization
// modes draw into. Geometry building (sectors, markers, labels) and
// compositing to an output (SVG, screenshot) are kept separate: modes
// produce nodes in a local coordinate space, outer groups position
// them on screen via translate+scale transforms.
package scene

import (
	"errors"
	"math"

	"github.com/komapc/year-shape/internal/geom"
)

// Transform is a translate-then-scale screen placement for a group.
// Scale is uniform; the zoom transitions never shear or rotate.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity returns the no-op transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a local point into the transformed space.
func (t Transform) Apply(p geom.Point) geom.Point {
	return geom.Point{
		X: t.TranslateX + p.X*t.Scale,
		Y: t.TranslateY + p.Y*t.Scale,
	}
}

// Invert maps a screen point back into local coordinates.
func (t Transform) Invert(p geom.Point) geom.Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return geom.Point{
		X: (p.X - t.TranslateX) / s,
		Y: (p.Y - t.TranslateY) / s,
	}
}

// Node is any drawable element of the scene.
type Node interface {
	node()
}

// Group positions a set of children with a shared transform and
// opacity. Interactive=false groups are skipped by hit testing; the
// zoom navigator renders outgoing wedge-sets with interaction off.
type Group struct {
	ID          string
	Transform   Transform
	Opacity     float64
	Interactive bool
	Children    []Node
}

// Path is a filled/stroked vector path, already flattened into an SVG
// path data string by its builder.
type Path struct {
	D           string
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

// Label is a piece of text anchored at a point. Labels that must stay
// legible over scaling wedges carry a circular badge behind the text;
// the month level renders all its day numbers this way in a layer
// separate from the wedges.
type Label struct {
	At       geom.Point
	Text     string
	FontSize float64
	Fill     string
	// Badge, when positive, draws a backing circle of this radius.
	Badge     float64
	BadgeFill string
}

// Circle is a plain filled circle (event dots, week markers).
type Circle struct {
	At     geom.Point
	Radius float64
	Fill   string
	Stroke string
}

// Line is a stroked segment (today indicator).
type Line struct {
	From        geom.Point
	To          geom.Point
	Stroke      string
	StrokeWidth float64
}

func (*Group) node()  {}
func (*Path) node()   {}
func (*Label) node()  {}
func (*Circle) node() {}
func (*Line) node()   {}

// NewGroup returns a visible, interactive group with the identity
// transform.
func NewGroup(id string) *Group {
	return &Group{
		ID:          id,
		Transform:   Identity(),
		Opacity:     1,
		Interactive: true,
	}
}

// Add appends children to the group.
func (g *Group) Add(nodes ...Node) {
	g.Children = append(g.Children, nodes...)
}

// HitShape locates a hit record in local coordinates.
type HitShape interface {
	contains(p geom.Point) bool
}

// WedgeHit is an annular wedge test in polar coordinates around a
// center point. Angles are normalized; spans may wrap 2pi.
type WedgeHit struct {
	Center     geom.Point
	InnerR     float64
	OuterR     float64
	StartAngle float64
	EndAngle   float64
}

func (w WedgeHit) contains(p geom.Point) bool {
	d := p.Sub(w.Center)
	r := math.Hypot(d.X, d.Y)
	if r < w.InnerR || r > w.OuterR {
		return false
	}
	a := geom.NormalizeAngle(math.Atan2(d.Y, d.X))
	start := geom.NormalizeAngle(w.StartAngle)
	end := geom.NormalizeAngle(w.EndAngle)
	if start <= end {
		return a >= start && a <= end
	}
	// Wrapped span.
	return a >= start || a <= end
}

// CircleHit is a disc test (markers, back button).
type CircleHit struct {
	Center geom.Point
	Radius float64
}

func (c CircleHit) contains(p geom.Point) bool {
	return p.Dist(c.Center) <= c.Radius
}

// HitRecord identifies one interactive element. Records are
// registered explicitly at geometry-build time instead of walking the
// node tree on click.
type HitRecord struct {
	ID    string
	Shape HitShape
}

type hitEntry struct {
	rec         HitRecord
	transform   Transform
	interactive bool
}

// Scene is the root drawing surface for one visualization mode.
// Exactly one mode owns and mutates it at a time.
type Scene struct {
	Width  float64
	Height float64
	Root   *Group

	hits []hitEntry
}

// ErrNoViewport is returned when a scene is constructed without a
// usable drawing area. Fatal for the constructor: components must not
// partially construct without their surface.
var ErrNoViewport = errors.New("scene: viewport has no usable area")

// New creates an empty scene for the given viewport.
func New(width, height float64) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoViewport
	}
	return &Scene{
		Width:  width,
		Height: height,
		Root:   NewGroup("root"),
	}, nil
}

// Center returns the viewport center.
func (s *Scene) Center() geom.Point {
	return geom.Point{X: s.Width / 2, Y: s.Height / 2}
}

// Reset drops all nodes and hit records, keeping the viewport.
func (s *Scene) Reset() {
	s.Root = NewGroup("root")
	s.hits = nil
}

// RegisterHit records an interactive element. The transform maps the
// shape's local coordinates to screen space and the interactive flag
// is the effective flag of the owning group chain; both are resolved
// by the renderer, which knows them at build time.
func (s *Scene) RegisterHit(rec HitRecord, transform Transform, interactive bool) {
	s.hits = append(s.hits, hitEntry{rec: rec, transform: transform, interactive: interactive})
}

// HitTest resolves a screen point to the topmost interactive hit
// record. Later registrations win, matching paint order.
func (s *Scene) HitTest(x, y float64) (HitRecord, bool) {
	p := geom.Point{X: x, Y: y}
	for i := len(s.hits) - 1; i >= 0; i-- {
		e := s.hits[i]
		if !e.interactive {
			continue
		}
		if e.rec.Shape.contains(e.transform.Invert(p)) {
			return e.rec, true
		}
	}
	return HitRecord{}, false
}

// HitCount reports how many hit records are registered.
func (s *Scene) HitCount() int {
	return len(s.hits)
}
