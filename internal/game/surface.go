package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/node-field/internal/render"
)

// surface draws onto whichever screen image ebiten handed to the current
// Draw call. Outside Draw it is unavailable.
type surface struct {
	screen     *ebiten.Image
	background color.NRGBA
}

func (s *surface) bind(screen *ebiten.Image) {
	s.screen = screen
}

func (s *surface) Available() bool { return s.screen != nil }

func (s *surface) Clear() {
	s.screen.Fill(s.background)
}

func (s *surface) Line(x0, y0, x1, y1, width float64, from, to color.NRGBA) {
	render.GradientSegments(x0, y0, x1, y1, from, to, func(ax, ay, bx, by float64, c color.NRGBA) {
		vector.StrokeLine(s.screen, float32(ax), float32(ay), float32(bx), float32(by), float32(width), c, true)
	})
}

func (s *surface) Glow(cx, cy, radius float64, c color.NRGBA) {
	render.GlowRings(radius, c, func(r float64, rc color.NRGBA) {
		vector.DrawFilledCircle(s.screen, float32(cx), float32(cy), float32(r), rc, true)
	})
}

func (s *surface) Disc(cx, cy, radius float64, c color.NRGBA) {
	vector.DrawFilledCircle(s.screen, float32(cx), float32(cy), float32(radius), c, true)
}
