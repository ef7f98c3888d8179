package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/animator"
	"github.com/iburimskiy/node-field/internal/game"
	"github.com/iburimskiy/node-field/internal/metrics"
	"github.com/iburimskiy/node-field/internal/render"
	"github.com/iburimskiy/node-field/internal/snapshot"
	"github.com/iburimskiy/node-field/internal/term"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the field in a window",
	Long: `Window opens a desktop window and animates the field in it. In window bounds
mode the field follows the window size; in container mode the configured size
is kept and scaled. Press Esc or Q to close.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetBool("status")
		obs, shutdown := serveMetrics()
		defer shutdown()
		return game.Run(cmd.Context(), cfg, logger, status, obs)
	},
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Draw the field in the terminal",
	Long: `Term draws the field with braille characters, eight dots per cell. In window
bounds mode the field fills the terminal; in container mode it is drawn in a
fixed box. Press q, Esc or Ctrl+C to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetBool("status")
		obs, shutdown := serveMetrics()
		defer shutdown()
		return term.Run(cmd.Context(), cfg, logger, status, obs)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render the field offscreen to a PNG",
	Long: `Snapshot runs the animation for a number of frames without a display and
writes the final frame as a PNG. Use a fixed --seed for reproducible images.
With --dry-run nothing is drawn; frame, edge and draw-call counts are printed
instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		frames, _ := cmd.Flags().GetInt("frames")
		out, _ := cmd.Flags().GetString("out")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		obs, shutdown := serveMetrics()
		defer shutdown()

		if dryRun {
			st, rec, err := snapshot.DryRun(cmd.Context(), cfg, frames, logger, obs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "frames %d  edges %d  lines %d  glows %d  discs %d\n",
				st.Frames, st.Edges, rec.Count(render.OpLine), rec.Count(render.OpGlow), rec.Count(render.OpDisc))
			return nil
		}

		var w io.Writer = cmd.OutOrStdout()
		if out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := snapshot.Render(cmd.Context(), cfg, frames, w, logger, obs); err != nil {
			if out != "-" {
				_ = os.Remove(out)
			}
			return err
		}
		if out != "-" {
			logger.Info("Snapshot written", zap.String("path", out))
		}
		return nil
	},
}

func init() {
	windowCmd.Flags().Bool("status", false, "show a frame and edge counter overlay")
	termCmd.Flags().Bool("status", false, "show a frame and edge counter line")
	snapshotCmd.Flags().Int("frames", 120, "frames to simulate before capturing")
	snapshotCmd.Flags().StringP("out", "o", "node-field.png", "output file, - for stdout")
	snapshotCmd.Flags().Bool("dry-run", false, "print frame statistics instead of writing a PNG")

	rootCmd.AddCommand(windowCmd, termCmd, snapshotCmd)
}

// serveMetrics returns the observer option for the animator. When a metrics
// address is configured the registry is also served over HTTP until shutdown
// is called.
func serveMetrics() (animator.Option, func()) {
	reg := metrics.NewRegistry()
	if cfg.MetricsAddr == "" {
		return animator.WithObserver(reg), func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))

	return animator.WithObserver(reg), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown", zap.Error(err))
		}
	}
}
