package scene

import (
	"fmt"
	"strings"
)

// PathBuilder accumulates SVG path data commands. Coordinates are
// emitted with two decimals, which is below visual resolution and
// keeps the serialized scene compact.
type PathBuilder struct {
	b strings.Builder
}

// MoveTo starts a new subpath at (x, y).
func (p *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	fmt.Fprintf(&p.b, "M%.2f,%.2f", x, y)
	return p
}

// LineTo appends a straight segment to (x, y).
func (p *PathBuilder) LineTo(x, y float64) *PathBuilder {
	fmt.Fprintf(&p.b, "L%.2f,%.2f", x, y)
	return p
}

// ArcTo appends a circular arc of the given radius to (x, y).
// largeArc selects the long way around for spans over pi; sweep=1
// draws in the positive-angle direction.
func (p *PathBuilder) ArcTo(radius, x, y float64, largeArc, sweep bool) *PathBuilder {
	la, sw := 0, 0
	if largeArc {
		la = 1
	}
	if sweep {
		sw = 1
	}
	fmt.Fprintf(&p.b, "A%.2f,%.2f 0 %d,%d %.2f,%.2f", radius, radius, la, sw, x, y)
	return p
}

// Close closes the current subpath.
func (p *PathBuilder) Close() *PathBuilder {
	p.b.WriteString("Z")
	return p
}

// String returns the accumulated path data.
func (p *PathBuilder) String() string {
	return p.b.String()
}
