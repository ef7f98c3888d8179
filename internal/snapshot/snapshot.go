// Package snapshot runs a node field offscreen, either writing the last frame
// as a PNG or only reporting frame statistics.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/animator"
	"github.com/iburimskiy/node-field/internal/config"
	"github.com/iburimskiy/node-field/internal/render"
)

var background = color.NRGBA{R: 10, G: 12, B: 20, A: 255}

// Render runs frames frames of cfg on a Raster with a fixed frame clock and
// encodes the final image to w. The backdrop fade is skipped so the image
// shows the settled opacity. Nothing is written when ctx is cancelled first.
func Render(ctx context.Context, cfg config.Config, frames int, w io.Writer, logger *zap.Logger, opts ...animator.Option) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	raster := render.NewRaster(cfg.Width, cfg.Height, background)
	st, err := run(ctx, cfg, frames, raster, logger, opts)
	if err != nil {
		return err
	}

	logger.Info("Snapshot rendered",
		zap.Uint64("frames", st.Frames),
		zap.Int("edges", st.Edges),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))

	if err := raster.WritePNG(w); err != nil {
		return fmt.Errorf("snapshot: encode png: %w", err)
	}
	return nil
}

// DryRun drives the same frames against a Recorder and returns the loop
// statistics together with the draw calls of the last frame.
func DryRun(ctx context.Context, cfg config.Config, frames int, logger *zap.Logger, opts ...animator.Option) (animator.Stats, *render.Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rec := &render.Recorder{}
	st, err := run(ctx, cfg, frames, rec, logger, opts)
	if err != nil {
		return animator.Stats{}, nil, err
	}

	logger.Info("Dry run finished",
		zap.Uint64("frames", st.Frames),
		zap.Int("edges", st.Edges),
		zap.Int("lines", rec.Count(render.OpLine)),
		zap.Int("glows", rec.Count(render.OpGlow)))
	return st, rec, nil
}

func run(ctx context.Context, cfg config.Config, frames int, surface render.Surface, logger *zap.Logger, opts []animator.Option) (animator.Stats, error) {
	if frames <= 0 {
		return animator.Stats{}, fmt.Errorf("snapshot: frames must be positive, got %d", frames)
	}

	opts = append([]animator.Option{animator.WithLogger(logger)}, opts...)
	anim, err := animator.New(cfg, cfg.Width, cfg.Height, opts...)
	if err != nil {
		return animator.Stats{}, err
	}
	anim.Renderer().SkipFade()

	sched := animator.NewScheduler()
	if err := anim.Start(surface, sched); err != nil {
		return animator.Stats{}, err
	}
	defer anim.Stop()

	interval := time.Second / time.Duration(cfg.FPS)
	now := time.Unix(0, 0)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			anim.Stop()
			return animator.Stats{}, fmt.Errorf("snapshot: interrupted after %d frames: %w", i, err)
		}
		if sched.Run(now) == 0 {
			break
		}
		now = now.Add(interval)
	}
	if !anim.Running() {
		if err := anim.Err(); err != nil {
			return animator.Stats{}, fmt.Errorf("snapshot: %w", err)
		}
		return animator.Stats{}, errors.New("snapshot: frame loop stopped early")
	}
	return anim.Stats(), nil
}
