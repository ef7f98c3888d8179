package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/node-field/internal/animator"
	"github.com/iburimskiy/node-field/internal/config"
	"github.com/iburimskiy/node-field/internal/field"
	"github.com/iburimskiy/node-field/internal/render"
)

func testConfig(bounds string) config.Config {
	cfg := config.Default()
	cfg.Nodes = 12
	cfg.Seed = 11
	cfg.Width, cfg.Height = 800, 600
	cfg.Bounds = bounds
	return cfg
}

func newTestGame(t *testing.T, ctx context.Context, cfg config.Config) *Game {
	t.Helper()
	g, err := NewGame(ctx, cfg, nil)
	require.NoError(t, err)
	g.quitPressed = func() bool { return false }
	return g
}

// startHeadless starts the animator on a recorder so frames can run without
// a window.
func startHeadless(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.anim.Start(&render.Recorder{}, g.sched))
	g.started = true
}

func TestNewGameRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(config.BoundsWindow)
	cfg.Nodes = 0
	_, err := NewGame(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, field.ErrInvalidConfiguration)
}

func TestLayoutWindowModeResizesField(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))
	startHeadless(t, g)
	defer g.anim.Stop()

	w, h := g.Layout(640, 360)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	g.sched.Run(time.Now())
	st := g.anim.Stats()
	assert.Equal(t, 640.0, st.Width)
	assert.Equal(t, 360.0, st.Height)

	w, h = g.Layout(0, 0)
	assert.Equal(t, 640, w, "a minimised window keeps the last size")
	assert.Equal(t, 360, h)
}

func TestLayoutStopsForwardingAfterStop(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))
	startHeadless(t, g)
	g.anim.Stop()

	w, h := g.Layout(640, 360)
	assert.Equal(t, 800, w, "a stopped loop keeps the last size")
	assert.Equal(t, 600, h)
	assert.Equal(t, 800.0, g.anim.Stats().Width)
}

func TestLayoutBeforeStartIsForwarded(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))

	w, h := g.Layout(640, 360)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	startHeadless(t, g)
	defer g.anim.Stop()
	g.sched.Run(time.Now())
	assert.Equal(t, 640.0, g.anim.Stats().Width)
}

func TestLayoutContainerModeKeepsSize(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsContainer))
	startHeadless(t, g)
	defer g.anim.Stop()

	w, h := g.Layout(1920, 1080)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	g.sched.Run(time.Now())
	assert.Equal(t, 800.0, g.anim.Stats().Width)
}

func TestUpdateQuitKeyStopsAnimator(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))
	startHeadless(t, g)
	assert.NoError(t, g.Update())

	g.quitPressed = func() bool { return true }

	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.False(t, g.anim.Running())
	assert.Equal(t, 0, g.sched.Pending())
}

func TestUpdateContextCancelStopsAnimator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := newTestGame(t, ctx, testConfig(config.BoundsWindow))
	startHeadless(t, g)

	cancel()

	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.False(t, g.anim.Running())
}

func TestUpdateTerminatesAfterHalt(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))
	startHeadless(t, g)
	g.anim.Stop()

	assert.ErrorIs(t, g.Update(), ebiten.Termination)
}

func TestUpdateReportsStartFailure(t *testing.T) {
	g := newTestGame(t, context.Background(), testConfig(config.BoundsWindow))
	g.lastErr = errors.New("boom")

	assert.EqualError(t, g.Update(), "boom")
}

func TestSurfaceUnavailableOutsideDraw(t *testing.T) {
	s := &surface{}
	assert.False(t, s.Available())

	a, err := animator.New(testConfig(config.BoundsWindow), 800, 600)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Start(s, animator.NewScheduler()), render.ErrSurfaceUnavailable)
}

func TestStatusLine(t *testing.T) {
	line := statusLine(animator.Stats{Frames: 120, Edges: 33, Width: 800, Height: 600}, 59.6)
	assert.Equal(t, "800x600  frames 120  edges 33  60 fps", line)
}
