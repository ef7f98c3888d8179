package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidConfiguration is returned when a field cannot be built from the
// given options. Callers must not start a loop after seeing it.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const twoPi = 2 * math.Pi

// Node is a single point mass drifting inside the viewport.
type Node struct {
	X, Y       float64
	VX, VY     float64
	Radius     float64
	Phase      float64
	PhaseSpeed float64
}

// Pulse returns the render intensity derived from the node's phase, in [0,1].
func (n Node) Pulse() float64 {
	return (math.Sin(n.Phase) + 1) / 2
}

// Options describes a field. Velocity components are sampled from [-Speed, Speed].
type Options struct {
	Count  int
	Width  float64
	Height float64
	Speed  float64

	RadiusMin, RadiusMax         float64
	PhaseSpeedMin, PhaseSpeedMax float64

	MaxDistance float64
	MaxLinks    int
	MaxOpacity  float64
	Topology    Topology
}

// Field owns the node set. It is not safe for concurrent use; the animator
// serialises every call.
type Field struct {
	opts   Options
	width  float64
	height float64
	nodes  []Node

	// static topology only
	links []link

	candidates []Edge
	degree     []int
}

type link struct{ a, b int }

func (o Options) validate() error {
	switch {
	case o.Count <= 0:
		return fmt.Errorf("%w: node count must be positive, got %d", ErrInvalidConfiguration, o.Count)
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: viewport must be positive, got %gx%g", ErrInvalidConfiguration, o.Width, o.Height)
	case o.Speed < 0:
		return fmt.Errorf("%w: speed must not be negative", ErrInvalidConfiguration)
	case o.MaxDistance <= 0:
		return fmt.Errorf("%w: max distance must be positive", ErrInvalidConfiguration)
	case o.MaxLinks <= 0:
		return fmt.Errorf("%w: max links must be positive", ErrInvalidConfiguration)
	case o.RadiusMin < 0 || o.RadiusMax < o.RadiusMin:
		return fmt.Errorf("%w: radius range [%g,%g] is invalid", ErrInvalidConfiguration, o.RadiusMin, o.RadiusMax)
	case o.PhaseSpeedMax < o.PhaseSpeedMin:
		return fmt.Errorf("%w: phase speed range [%g,%g] is invalid", ErrInvalidConfiguration, o.PhaseSpeedMin, o.PhaseSpeedMax)
	}
	return nil
}

// New allocates opts.Count nodes spread uniformly over the viewport. All
// randomness comes from rng, so the same seed yields the same field.
func New(opts Options, rng *rand.Rand) (*Field, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfiguration)
	}

	f := &Field{
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		nodes:  make([]Node, opts.Count),
		degree: make([]int, opts.Count),
	}
	for i := range f.nodes {
		f.nodes[i] = Node{
			X:          rng.Float64() * opts.Width,
			Y:          rng.Float64() * opts.Height,
			VX:         (rng.Float64()*2 - 1) * opts.Speed,
			VY:         (rng.Float64()*2 - 1) * opts.Speed,
			Radius:     between(rng, opts.RadiusMin, opts.RadiusMax),
			Phase:      rng.Float64() * twoPi,
			PhaseSpeed: between(rng, opts.PhaseSpeedMin, opts.PhaseSpeedMax),
		}
	}

	if opts.Topology == Static {
		f.links = f.nearestLinks()
	}
	return f, nil
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Step advances every node by one frame.
func (f *Field) Step() {
	for i := range f.nodes {
		n := &f.nodes[i]
		n.X += n.VX
		n.Y += n.VY
		n.X, n.VX = bounce(n.X, n.VX, f.width)
		n.Y, n.VY = bounce(n.Y, n.VY, f.height)

		n.Phase += n.PhaseSpeed
		if n.Phase >= twoPi || n.Phase < 0 {
			n.Phase = math.Mod(n.Phase, twoPi)
			if n.Phase < 0 {
				n.Phase += twoPi
			}
		}
	}
}

// bounce clamps p into [0, limit] and turns v back toward the inside when p
// left the range. Only the sign of v changes.
func bounce(p, v, limit float64) (float64, float64) {
	switch {
	case p < 0:
		return 0, math.Abs(v)
	case p > limit:
		return limit, -math.Abs(v)
	}
	return p, v
}

// Resize changes the bounds used by the next Step. Node positions are left as
// they are and get pulled back in by the normal bounce check.
func (f *Field) Resize(width, height float64) error {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return fmt.Errorf("%w: viewport must be positive, got %gx%g", ErrInvalidConfiguration, width, height)
	}
	f.width, f.height = width, height
	return nil
}

// Bounds returns the current viewport size.
func (f *Field) Bounds() (float64, float64) {
	return f.width, f.height
}

// Nodes returns the live node slice. Callers must treat it as read-only.
func (f *Field) Nodes() []Node {
	return f.nodes
}

// Topology reports which connection policy the field uses.
func (f *Field) Topology() Topology {
	return f.opts.Topology
}

// Options returns the options the field was built with.
func (f *Field) Options() Options {
	return f.opts
}

func (f *Field) distance(a, b int) float64 {
	na, nb := f.nodes[a], f.nodes[b]
	return math.Hypot(na.X-nb.X, na.Y-nb.Y)
}
