package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

const circleSides = 32

// Raster is a Surface backed by an in-memory RGBA image. One unit is one pixel.
type Raster struct {
	img        *image.RGBA
	background color.NRGBA
	z          *vector.Rasterizer
}

// NewRaster allocates a width x height image cleared to background.
func NewRaster(width, height int, background color.NRGBA) *Raster {
	r := &Raster{background: background}
	r.Resize(width, height)
	return r
}

// Resize reallocates the image. Non-positive sizes leave the raster unavailable.
func (r *Raster) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		r.img, r.z = nil, nil
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.z = vector.NewRasterizer(width, height)
	r.Clear()
}

// Image returns the current frame.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Available() bool { return r.img != nil }

func (r *Raster) Clear() {
	if r.img == nil {
		return
	}
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

func (r *Raster) Line(x0, y0, x1, y1, width float64, from, to color.NRGBA) {
	if r.img == nil {
		return
	}
	GradientSegments(x0, y0, x1, y1, from, to, func(ax, ay, bx, by float64, c color.NRGBA) {
		r.segment(ax, ay, bx, by, width, c)
	})
}

func (r *Raster) Glow(cx, cy, radius float64, c color.NRGBA) {
	if r.img == nil {
		return
	}
	GlowRings(radius, c, func(rr float64, rc color.NRGBA) {
		r.circle(cx, cy, rr, rc)
	})
}

func (r *Raster) Disc(cx, cy, radius float64, c color.NRGBA) {
	if r.img == nil {
		return
	}
	r.circle(cx, cy, radius, c)
}

// WritePNG encodes the current frame.
func (r *Raster) WritePNG(w io.Writer) error {
	if r.img == nil {
		return ErrSurfaceUnavailable
	}
	return png.Encode(w, r.img)
}

func (r *Raster) segment(ax, ay, bx, by, width float64, c color.NRGBA) {
	length := math.Hypot(bx-ax, by-ay)
	if length == 0 || c.A == 0 {
		return
	}
	nx := -(by - ay) / length * width / 2
	ny := (bx - ax) / length * width / 2

	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.MoveTo(float32(ax+nx), float32(ay+ny))
	r.z.LineTo(float32(bx+nx), float32(by+ny))
	r.z.LineTo(float32(bx-nx), float32(by-ny))
	r.z.LineTo(float32(ax-nx), float32(ay-ny))
	r.z.ClosePath()
	r.z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

func (r *Raster) circle(cx, cy, radius float64, c color.NRGBA) {
	if radius <= 0 || c.A == 0 {
		return
	}
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.MoveTo(float32(cx+radius), float32(cy))
	for i := 1; i < circleSides; i++ {
		a := 2 * math.Pi * float64(i) / circleSides
		r.z.LineTo(float32(cx+radius*math.Cos(a)), float32(cy+radius*math.Sin(a)))
	}
	r.z.ClosePath()
	r.z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}
