package field

import (
	"fmt"
	"sort"
	"strings"
)

// Topology selects how connections are derived.
type Topology uint8

const (
	// Dynamic recomputes edges from current positions every frame.
	Dynamic Topology = iota
	// Static picks edges once from the initial positions and keeps them.
	Static
)

func (t Topology) String() string {
	switch t {
	case Static:
		return "static"
	default:
		return "dynamic"
	}
}

// ParseTopology accepts "dynamic" or "static" (case-insensitive). An empty
// string means Dynamic.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dynamic":
		return Dynamic, nil
	case "static":
		return Static, nil
	}
	return Dynamic, fmt.Errorf("%w: unknown topology %q", ErrInvalidConfiguration, s)
}

// Edge is a connection to draw this frame. A is always less than B.
type Edge struct {
	A, B     int
	Distance float64
	Opacity  float64
}

// Connections appends this frame's edges to dst[:0] and returns it. No node
// appears in more than MaxLinks edges and every unordered pair at most once.
func (f *Field) Connections(dst []Edge) []Edge {
	dst = dst[:0]
	if f.opts.Topology == Static {
		for _, l := range f.links {
			dst = append(dst, Edge{
				A:        l.a,
				B:        l.b,
				Distance: f.distance(l.a, l.b),
				Opacity:  f.opts.MaxOpacity,
			})
		}
		return dst
	}

	d := f.opts.MaxDistance
	f.candidates = f.candidates[:0]
	for i := 0; i < len(f.nodes); i++ {
		for j := i + 1; j < len(f.nodes); j++ {
			dist := f.distance(i, j)
			if dist < d {
				f.candidates = append(f.candidates, Edge{A: i, B: j, Distance: dist})
			}
		}
	}
	sortNearest(f.candidates)

	f.resetDegree()
	for _, e := range f.candidates {
		if f.degree[e.A] >= f.opts.MaxLinks || f.degree[e.B] >= f.opts.MaxLinks {
			continue
		}
		f.degree[e.A]++
		f.degree[e.B]++
		e.Opacity = (d - e.Distance) / d * f.opts.MaxOpacity
		dst = append(dst, e)
	}
	return dst
}

// nearestLinks builds the static edge set from the initial positions.
func (f *Field) nearestLinks() []link {
	var candidates []Edge
	for i := 0; i < len(f.nodes); i++ {
		for j := i + 1; j < len(f.nodes); j++ {
			if dist := f.distance(i, j); dist < f.opts.MaxDistance {
				candidates = append(candidates, Edge{A: i, B: j, Distance: dist})
			}
		}
	}
	sortNearest(candidates)

	f.resetDegree()
	var links []link
	for _, e := range candidates {
		if f.degree[e.A] >= f.opts.MaxLinks || f.degree[e.B] >= f.opts.MaxLinks {
			continue
		}
		f.degree[e.A]++
		f.degree[e.B]++
		links = append(links, link{a: e.A, b: e.B})
	}
	return links
}

func (f *Field) resetDegree() {
	for i := range f.degree {
		f.degree[i] = 0
	}
}

// sortNearest orders candidates by distance, breaking ties by index so the
// result does not depend on the sort implementation.
func sortNearest(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.A != b.A {
			return a.A < b.A
		}
		return a.B < b.B
	})
}
