package render

import (
	"errors"
	"image/color"
	"math"
)

// ErrSurfaceUnavailable is returned when there is nothing to draw on.
var ErrSurfaceUnavailable = errors.New("render surface unavailable")

// Surface is an immediate-mode 2D drawing target. Coordinates are in
// viewport units; each backend decides what a unit is (pixel, braille dot).
type Surface interface {
	// Available reports whether the surface can be drawn on right now.
	Available() bool
	// Clear wipes the previous frame.
	Clear()
	// Line strokes a segment whose colour runs linearly from one end to the other.
	Line(x0, y0, x1, y1, width float64, from, to color.NRGBA)
	// Glow fills a disc that fades from c at the centre to transparent at radius.
	Glow(cx, cy, radius float64, c color.NRGBA)
	// Disc fills a solid circle.
	Disc(cx, cy, radius float64, c color.NRGBA)
}

const (
	// gradientStep is the length of one solid piece of a gradient line.
	gradientStep = 12.0
	maxSegments  = 24
	glowRings    = 6
)

// GradientSegments splits a gradient line into solid pieces and hands each to
// fn with the colour at its midpoint. Backends without native gradients use it.
func GradientSegments(x0, y0, x1, y1 float64, from, to color.NRGBA, fn func(ax, ay, bx, by float64, c color.NRGBA)) {
	length := math.Hypot(x1-x0, y1-y0)
	n := int(math.Ceil(length / gradientStep))
	if n < 1 {
		n = 1
	}
	if n > maxSegments {
		n = maxSegments
	}
	for i := range n {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)
		fn(
			x0+(x1-x0)*t0, y0+(y1-y0)*t0,
			x0+(x1-x0)*t1, y0+(y1-y0)*t1,
			Lerp(from, to, (t0+t1)/2),
		)
	}
}

// GlowRings approximates a radial fade with concentric discs drawn from the
// outside in. Each disc carries the alpha that, composited source-over
// glowRings times, gives exactly c.A at the centre and 0 at the rim.
func GlowRings(radius float64, c color.NRGBA, fn func(r float64, c color.NRGBA)) {
	if radius <= 0 || c.A == 0 {
		return
	}
	a := float64(c.A) / 255
	ring := 1 - math.Pow(1-a, 1.0/glowRings)
	for i := glowRings; i >= 1; i-- {
		fn(radius*float64(i)/glowRings, WithAlpha(c, ring))
	}
}
