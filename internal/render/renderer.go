package render

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/harmonica"

	"github.com/iburimskiy/node-field/internal/field"
)

// Theme holds the colours and proportions of the backdrop.
type Theme struct {
	Node     color.NRGBA
	EdgeFrom color.NRGBA
	EdgeTo   color.NRGBA

	CoreAlpha      float64
	GlowAlpha      float64
	GlowScale      float64 // glow radius as a multiple of the node radius
	PulseAmplitude float64 // relative size swing driven by the pulse
	LineWidth      float64
}

// DefaultTheme is teal nodes with teal-to-blue edges.
func DefaultTheme() Theme {
	return Theme{
		Node:           color.NRGBA{R: 0, G: 200, B: 150, A: 255},
		EdgeFrom:       color.NRGBA{R: 0, G: 200, B: 150, A: 255},
		EdgeTo:         color.NRGBA{R: 58, G: 134, B: 255, A: 255},
		CoreAlpha:      0.95,
		GlowAlpha:      0.8,
		GlowScale:      3,
		PulseAmplitude: 0.3,
		LineWidth:      1,
	}
}

// Renderer draws a node field onto a Surface. Besides the backdrop fade it
// keeps no state, and it never writes to the nodes it is given.
type Renderer struct {
	theme   Theme
	opacity float64

	fade     harmonica.Spring
	level    float64
	velocity float64
}

// NewRenderer returns a renderer whose backdrop fades in to opacity over the
// first frames at the given refresh rate.
func NewRenderer(theme Theme, opacity float64, fps int) *Renderer {
	if fps <= 0 {
		fps = 60
	}
	return &Renderer{
		theme:   theme,
		opacity: clamp01(opacity),
		fade:    harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// SkipFade jumps straight to full backdrop opacity.
func (r *Renderer) SkipFade() {
	r.level, r.velocity = r.opacity, 0
}

// Opacity returns the backdrop opacity used by the last Draw.
func (r *Renderer) Opacity() float64 {
	return r.level
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Draw clears s and paints the edges, then the nodes on top.
func (r *Renderer) Draw(s Surface, nodes []field.Node, edges []field.Edge) error {
	if s == nil || !s.Available() {
		return ErrSurfaceUnavailable
	}

	r.level, r.velocity = r.fade.Update(r.level, r.velocity, r.opacity)
	if r.level < 0 {
		r.level = 0
	}
	if r.level > r.opacity {
		r.level = r.opacity
	}

	s.Clear()

	t := r.theme
	for _, e := range edges {
		if e.A < 0 || e.B >= len(nodes) {
			return fmt.Errorf("edge %d-%d out of range for %d nodes", e.A, e.B, len(nodes))
		}
		a, b := nodes[e.A], nodes[e.B]
		alpha := e.Opacity * r.level
		s.Line(a.X, a.Y, b.X, b.Y, t.LineWidth, WithAlpha(t.EdgeFrom, alpha), WithAlpha(t.EdgeTo, alpha))
	}

	for _, n := range nodes {
		pulse := n.Pulse()
		scale := 1 + t.PulseAmplitude*(2*pulse-1)
		radius := n.Radius * scale
		s.Glow(n.X, n.Y, t.GlowScale*radius, WithAlpha(t.Node, t.GlowAlpha*r.level*(0.6+0.4*pulse)))
		s.Disc(n.X, n.Y, radius, WithAlpha(t.Node, t.CoreAlpha*r.level*(0.75+0.25*pulse)))
	}
	return nil
}
