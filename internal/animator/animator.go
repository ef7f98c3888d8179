package animator

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/config"
	"github.com/iburimskiy/node-field/internal/field"
	"github.com/iburimskiy/node-field/internal/render"
)

var (
	// ErrAlreadyStarted is returned by Start on an animator that already ran.
	ErrAlreadyStarted = errors.New("animator already started")

	errFramePanic = errors.New("frame panicked")
)

// Halt reasons reported to the Observer.
const (
	ReasonStopped     = "stopped"
	ReasonUnavailable = "surface_unavailable"
	ReasonPanic       = "panic"
	ReasonError       = "error"
)

// Observer receives frame loop events. metrics.Registry implements it.
type Observer interface {
	ObserveFrame(d time.Duration, nodes, edges int)
	ObserveHalt(reason string)
	ObserveResize()
}

type nopObserver struct{}

func (nopObserver) ObserveFrame(time.Duration, int, int) {}
func (nopObserver) ObserveHalt(string)                   {}
func (nopObserver) ObserveResize()                       {}

type state uint8

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Stats is a snapshot of loop progress.
type Stats struct {
	Frames uint64
	Edges  int
	Width  float64
	Height float64
}

// Animator owns one node field and drives it from a Scheduler: each frame
// advances the simulation and then renders it. One Animator corresponds to
// one mount; once stopped it cannot be restarted.
type Animator struct {
	// loop
	mu      sync.Mutex
	state   state
	frameID FrameID
	sched   *Scheduler
	surface render.Surface
	done    chan struct{}
	err     error

	// viewport
	pendingW, pendingH int
	resizePending      bool

	// simulation
	field    *field.Field
	renderer *render.Renderer
	edges    []field.Edge

	// stats
	frames    uint64
	lastEdges int

	logger   *zap.Logger
	observer Observer
	rng      *rand.Rand
}

// Option customises an Animator.
type Option func(*Animator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver sets the frame loop observer.
func WithObserver(o Observer) Option {
	return func(a *Animator) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithRand overrides the random source used to build the field.
func WithRand(r *rand.Rand) Option {
	return func(a *Animator) {
		a.rng = r
	}
}

// New validates cfg and builds the node field for a width x height viewport.
// A zero cfg.Seed picks a time-based seed.
func New(cfg config.Config, width, height int, opts ...Option) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: viewport must be positive, got %dx%d", field.ErrInvalidConfiguration, width, height)
	}

	a := &Animator{
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		a.rng = rand.New(rand.NewSource(seed))
	}

	fieldOpts, err := cfg.FieldOptions(float64(width), float64(height))
	if err != nil {
		return nil, err
	}
	theme, err := cfg.Theme()
	if err != nil {
		return nil, err
	}
	f, err := field.New(fieldOpts, a.rng)
	if err != nil {
		return nil, err
	}
	a.field = f
	a.renderer = render.NewRenderer(theme, cfg.Opacity, cfg.FPS)
	return a, nil
}

// Start binds the surface and schedules the first frame. The loop is not
// entered when the surface is unavailable.
func (a *Animator) Start(surface render.Surface, sched *Scheduler) error {
	if surface == nil || !surface.Available() {
		a.logger.Warn("Render surface unavailable, not starting frame loop")
		return fmt.Errorf("start: %w", render.ErrSurfaceUnavailable)
	}
	if sched == nil {
		return errors.New("start: nil scheduler")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != stateIdle {
		return ErrAlreadyStarted
	}
	a.state = stateRunning
	a.surface = surface
	a.sched = sched
	a.frameID = sched.Request(a.frame)

	w, h := a.field.Bounds()
	opts := a.field.Options()
	a.logger.Info("Frame loop started",
		zap.Int("nodes", opts.Count),
		zap.Stringer("topology", a.field.Topology()),
		zap.Float64("max_distance", opts.MaxDistance),
		zap.Int("max_links", opts.MaxLinks),
		zap.Float64("width", w),
		zap.Float64("height", h))
	return nil
}

// Stop cancels the pending frame and guarantees no further frame runs,
// including one the scheduler has already dequeued. It is safe to call more
// than once and from any goroutine.
func (a *Animator) Stop() {
	a.mu.Lock()
	if a.state == stateStopped {
		a.mu.Unlock()
		return
	}
	wasRunning := a.state == stateRunning
	a.state = stateStopped
	if a.sched != nil {
		a.sched.Cancel(a.frameID)
	}
	a.frameID = 0
	close(a.done)
	frames := a.frames
	a.mu.Unlock()

	if wasRunning {
		a.observer.ObserveHalt(ReasonStopped)
		a.logger.Info("Frame loop stopped", zap.Uint64("frames", frames))
	}
}

// Resize records a new viewport size for the next frame. Non-positive sizes
// (a minimised window, say) are ignored.
func (a *Animator) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		a.logger.Debug("Ignoring empty viewport", zap.Int("width", width), zap.Int("height", height))
		return
	}
	a.mu.Lock()
	a.pendingW, a.pendingH = width, height
	a.resizePending = true
	a.mu.Unlock()
}

// Running reports whether frames are still being scheduled.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateRunning
}

// Done is closed once the loop has stopped for any reason.
func (a *Animator) Done() <-chan struct{} {
	return a.done
}

// Err returns why the loop halted on its own, or nil after a plain Stop.
func (a *Animator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stats returns loop progress.
func (a *Animator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, h := a.field.Bounds()
	return Stats{Frames: a.frames, Edges: a.lastEdges, Width: w, Height: h}
}

// Field exposes the simulation. Only read it between frames.
func (a *Animator) Field() *field.Field {
	return a.field
}

// Renderer exposes the renderer, e.g. to skip the fade-in for still frames.
func (a *Animator) Renderer() *render.Renderer {
	return a.renderer
}

func (a *Animator) frame(now time.Time) {
	a.mu.Lock()
	if a.state != stateRunning {
		a.mu.Unlock()
		return
	}
	a.frameID = 0
	w, h, resize := a.pendingW, a.pendingH, a.resizePending
	a.resizePending = false
	a.mu.Unlock()

	start := time.Now()
	edges, err := a.step(w, h, resize)
	if err != nil {
		a.halt(err)
		return
	}
	a.observer.ObserveFrame(time.Since(start), len(a.field.Nodes()), edges)

	a.mu.Lock()
	a.frames++
	a.lastEdges = edges
	if a.state == stateRunning {
		a.frameID = a.sched.Request(a.frame)
	}
	a.mu.Unlock()
}

// step runs one update-then-render pass. A panic is turned into an error so
// that it never reaches the host's refresh callback.
func (a *Animator) step(w, h int, resize bool) (edges int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errFramePanic, r)
		}
	}()

	if resize {
		if rerr := a.field.Resize(float64(w), float64(h)); rerr == nil {
			a.observer.ObserveResize()
			a.logger.Debug("Viewport resized", zap.Int("width", w), zap.Int("height", h))
		}
	}

	a.field.Step()
	a.edges = a.field.Connections(a.edges)
	if err := a.renderer.Draw(a.surface, a.field.Nodes(), a.edges); err != nil {
		return 0, err
	}
	return len(a.edges), nil
}

func (a *Animator) halt(err error) {
	a.mu.Lock()
	if a.state != stateRunning {
		a.mu.Unlock()
		return
	}
	a.state = stateStopped
	a.err = err
	a.sched.Cancel(a.frameID)
	a.frameID = 0
	close(a.done)
	a.mu.Unlock()

	reason := ReasonError
	switch {
	case errors.Is(err, render.ErrSurfaceUnavailable):
		reason = ReasonUnavailable
	case errors.Is(err, errFramePanic):
		reason = ReasonPanic
	}
	a.observer.ObserveHalt(reason)
	a.logger.Error("Frame loop halted", zap.String("reason", reason), zap.Error(err))
}
