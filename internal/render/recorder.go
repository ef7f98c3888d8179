package render

import "image/color"

// OpKind identifies a recorded draw call.
type OpKind uint8

const (
	OpClear OpKind = iota
	OpLine
	OpGlow
	OpDisc
)

// Op is one recorded draw call.
type Op struct {
	Kind           OpKind
	X0, Y0, X1, Y1 float64
	Radius, Width  float64
	From, To       color.NRGBA
}

// Recorder is a Surface that keeps the calls of the current frame. It backs
// the dry-run host and the tests.
type Recorder struct {
	Ops         []Op
	Unavailable bool
	Frames      int
}

func (r *Recorder) Available() bool { return !r.Unavailable }

func (r *Recorder) Clear() {
	r.Ops = r.Ops[:0]
	r.Ops = append(r.Ops, Op{Kind: OpClear})
	r.Frames++
}

func (r *Recorder) Line(x0, y0, x1, y1, width float64, from, to color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Width: width, From: from, To: to})
}

func (r *Recorder) Glow(cx, cy, radius float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpGlow, X0: cx, Y0: cy, Radius: radius, From: c})
}

func (r *Recorder) Disc(cx, cy, radius float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpDisc, X0: cx, Y0: cy, Radius: radius, From: c})
}

// Count returns how many calls of kind the current frame holds.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
