package term

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iburimskiy/node-field/internal/render"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// dotThreshold is the accumulated alpha at which a dot is drawn.
const dotThreshold = 0.08

type dot struct {
	alpha float64
	c     color.NRGBA
}

// Canvas is a Surface made of braille cells. Each cell holds 2x4 dots and
// one unit of the viewport is one dot.
type Canvas struct {
	cols, rows int
	dots       []dot
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the grid. A canvas with no cells is unavailable.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols, c.rows = cols, rows
	c.dots = make([]dot, cols*2*rows*4)
}

// DotSize returns the canvas size in dots.
func (c *Canvas) DotSize() (int, int) {
	return c.cols * 2, c.rows * 4
}

func (c *Canvas) Available() bool { return c.cols > 0 && c.rows > 0 }

func (c *Canvas) Clear() {
	for i := range c.dots {
		c.dots[i] = dot{}
	}
}

func (c *Canvas) Line(x0, y0, x1, y1, _ float64, from, to color.NRGBA) {
	render.GradientSegments(x0, y0, x1, y1, from, to, func(ax, ay, bx, by float64, col color.NRGBA) {
		steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
		if steps < 1 {
			steps = 1
		}
		for i := 0; i <= steps; i++ {
			t := float64(i) / float64(steps)
			c.blend(int(math.Floor(ax+(bx-ax)*t)), int(math.Floor(ay+(by-ay)*t)), col)
		}
	})
}

func (c *Canvas) Glow(cx, cy, radius float64, col color.NRGBA) {
	render.GlowRings(radius, col, func(r float64, rc color.NRGBA) {
		c.fillCircle(cx, cy, r, rc)
	})
}

func (c *Canvas) Disc(cx, cy, radius float64, col color.NRGBA) {
	c.fillCircle(cx, cy, radius, col)
}

func (c *Canvas) fillCircle(cx, cy, r float64, col color.NRGBA) {
	if r <= 0 {
		return
	}
	if r < 0.75 {
		c.blend(int(math.Floor(cx)), int(math.Floor(cy)), col)
		return
	}
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				c.blend(x, y, col)
			}
		}
	}
}

// blend composites col over the dot at (x, y); points off the grid are dropped.
func (c *Canvas) blend(x, y int, col color.NRGBA) {
	w, h := c.DotSize()
	if x < 0 || y < 0 || x >= w || y >= h || col.A == 0 {
		return
	}
	d := &c.dots[y*w+x]
	a := float64(col.A) / 255
	out := a + d.alpha*(1-a)
	opaque := col
	opaque.A = 255
	if d.alpha == 0 {
		d.c = opaque
	} else {
		d.c = render.Lerp(d.c, opaque, a/out)
	}
	d.alpha = out
}

// View renders the grid as braille text. Each cell takes the colour of its
// brightest dot, dimmed by that dot's alpha; runs of equal colour share one
// lipgloss style.
func (c *Canvas) View() string {
	w, _ := c.DotSize()
	black := color.NRGBA{A: 255}

	var out strings.Builder
	for row := range c.rows {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				out.WriteString(run.String())
			} else {
				out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
			}
			run.Reset()
		}

		for col := range c.cols {
			var pattern uint
			var best dot
			for dx := range 2 {
				for dy := range 4 {
					d := c.dots[(row*4+dy)*w+col*2+dx]
					if d.alpha < dotThreshold {
						continue
					}
					pattern |= 1 << brailleBits[dx][dy]
					if d.alpha > best.alpha {
						best = d
					}
				}
			}

			cellColor := ""
			ch := ' '
			if pattern != 0 {
				ch = rune(0x2800 + pattern)
				cellColor = render.Hex(render.Lerp(black, best.c, math.Min(1, 0.35+best.alpha)))
			}
			if cellColor != runColor {
				flush()
				runColor = cellColor
			}
			run.WriteRune(ch)
		}
		flush()
	}
	return out.String()
}
