package scene

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"
)

// EncodeSVG serializes the scene as an SVG document. This is the only
// place the drawing backend appears; everything upstream works on the
// retained node tree.
func EncodeSVG(w io.Writer, s *Scene) {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)
	encodeGroup(canvas, s.Root)
	canvas.End()
}

func encodeGroup(canvas *svg.SVG, g *Group) {
	attrs := make([]string, 0, 2)
	if t := g.Transform; t != Identity() {
		attrs = append(attrs,
			fmt.Sprintf(`transform="translate(%.2f,%.2f) scale(%.4f)"`, t.TranslateX, t.TranslateY, t.Scale))
	}
	if g.Opacity < 1 {
		attrs = append(attrs, fmt.Sprintf(`opacity="%.3f"`, g.Opacity))
	}
	canvas.Group(attrs...)
	for _, n := range g.Children {
		encodeNode(canvas, n)
	}
	canvas.Gend()
}

func encodeNode(canvas *svg.SVG, n Node) {
	switch v := n.(type) {
	case *Group:
		encodeGroup(canvas, v)
	case *Path:
		canvas.Path(v.D, pathStyle(v))
	case *Label:
		if v.Badge > 0 {
			fill := v.BadgeFill
			if fill == "" {
				fill = "#ffffff"
			}
			canvas.Circle(v.At.X, v.At.Y, v.Badge, "fill:"+fill)
		}
		size := v.FontSize
		if size <= 0 {
			size = 12
		}
		fill := v.Fill
		if fill == "" {
			fill = "#000000"
		}
		// Baseline nudge keeps the text visually centered on the anchor.
		canvas.Text(v.At.X, v.At.Y+size*0.35, v.Text,
			fmt.Sprintf("font-size:%.1fpx;fill:%s;text-anchor:middle;font-family:sans-serif", size, fill))
	case *Circle:
		style := "fill:" + v.Fill
		if v.Stroke != "" {
			style += ";stroke:" + v.Stroke
		}
		canvas.Circle(v.At.X, v.At.Y, v.Radius, style)
	case *Line:
		width := v.StrokeWidth
		if width <= 0 {
			width = 1
		}
		canvas.Line(v.From.X, v.From.Y, v.To.X, v.To.Y,
			fmt.Sprintf("stroke:%s;stroke-width:%.2f", v.Stroke, width))
	}
}

func pathStyle(p *Path) string {
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	style := "fill:" + fill
	if p.Stroke != "" {
		width := p.StrokeWidth
		if width <= 0 {
			width = 1
		}
		style += fmt.Sprintf(";stroke:%s;stroke-width:%.2f", p.Stroke, width)
	}
	if p.Opacity > 0 && p.Opacity < 1 {
		style += fmt.Sprintf(";fill-opacity:%.3f", p.Opacity)
	}
	return style
}
