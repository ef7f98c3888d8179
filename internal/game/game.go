package game

import (
	"context"
	"errors"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/animator"
	"github.com/iburimskiy/node-field/internal/config"
)

const windowTitle = "node-field"

var background = color.NRGBA{R: 10, G: 12, B: 20, A: 255}

// Game hosts an animator in an ebiten window. Every Draw is one display
// refresh and runs the scheduler once.
type Game struct {
	cfg    config.Config
	ctx    context.Context
	logger *zap.Logger

	// loop
	anim    *animator.Animator
	sched   *animator.Scheduler
	surface *surface
	started bool

	// viewport
	width, height int

	// overlay
	showStatus bool
	lastErr    error

	quitPressed func() bool
}

// NewGame builds the animator for the configured window size. The loop starts
// on the first Draw, when a screen exists.
func NewGame(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...animator.Option) (*Game, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]animator.Option{animator.WithLogger(logger)}, opts...)
	anim, err := animator.New(cfg, cfg.Width, cfg.Height, opts...)
	if err != nil {
		return nil, err
	}
	return &Game{
		cfg:         cfg,
		ctx:         ctx,
		logger:      logger,
		anim:        anim,
		sched:       animator.NewScheduler(),
		surface:     &surface{background: background},
		width:       cfg.Width,
		height:      cfg.Height,
		quitPressed: quitKeyPressed,
	}, nil
}

// ShowStatus toggles the debug overlay.
func (g *Game) ShowStatus(on bool) {
	g.showStatus = on
}

// Animator returns the hosted animator.
func (g *Game) Animator() *animator.Animator {
	return g.anim
}

func quitKeyPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
}

func (g *Game) Update() error {
	if g.lastErr != nil {
		return g.lastErr
	}
	if g.quitPressed() {
		g.anim.Stop()
		return ebiten.Termination
	}
	if g.ctx != nil {
		select {
		case <-g.ctx.Done():
			g.anim.Stop()
			return ebiten.Termination
		default:
		}
	}
	if g.started && !g.anim.Running() {
		if err := g.anim.Err(); err != nil {
			return err
		}
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.bind(screen)
	defer g.surface.bind(nil)

	if !g.started {
		if err := g.anim.Start(g.surface, g.sched); err != nil {
			g.lastErr = err
			return
		}
		g.started = true
	}

	g.sched.Run(time.Now())

	if g.showStatus {
		ebitenutil.DebugPrintAt(screen, statusLine(g.anim.Stats(), ebiten.ActualFPS()), 12, 12)
	}
}

// Layout follows the window in window bounds mode while the loop runs and
// keeps the configured container size otherwise, letting ebiten scale it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Bounds != config.BoundsWindow {
		return g.cfg.Width, g.cfg.Height
	}
	if g.done() {
		return g.width, g.height
	}
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		g.anim.Resize(outsideWidth, outsideHeight)
	}
	return g.width, g.height
}

// done reports whether the animator has stopped for good.
func (g *Game) done() bool {
	select {
	case <-g.anim.Done():
		return true
	default:
		return false
	}
}

// Run opens the window and blocks until it closes, ctx is cancelled or the
// loop halts.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger, showStatus bool, opts ...animator.Option) error {
	g, err := NewGame(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	g.ShowStatus(showStatus)
	defer g.anim.Stop()

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(windowTitle)
	if cfg.Bounds == config.BoundsWindow {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
