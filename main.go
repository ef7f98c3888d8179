// Package main is the entry point for the node-field CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/config"
	"github.com/iburimskiy/node-field/internal/logging"
)

var (
	v      *viper.Viper
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "node-field",
	Short: "Animated backdrop of drifting, linked nodes",
	Long: `node-field animates a set of slowly drifting nodes that bounce off the edges
of their viewport. Nearby nodes are linked with gradient lines that fade with
distance, and every node pulses with a soft glow.

The field can be shown in a window, drawn in the terminal with braille
characters, or rendered offscreen to a PNG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		c, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = c

		logPath, _ := cmd.Flags().GetString("log-file")
		if cmd == termCmd && logPath == "" {
			// stdout and stderr belong to the TUI
			logger = zap.NewNop()
			return nil
		}
		logger, err = logging.New(cfg.LogLevel, logPath)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			logger.Info("Using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var boundFlags = []string{
	"nodes", "width", "height", "bounds", "topology", "max-distance", "max-links",
	"speed", "opacity", "fps", "seed", "log-level", "metrics-addr",
}

func init() {
	d := config.Default()

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./node-field.yaml or ~/.config/node-field/node-field.yaml)")
	pf.String("log-file", "", "write logs to this file instead of stderr")

	pf.Int("nodes", d.Nodes, "number of nodes")
	pf.Int("width", d.Width, "viewport width in pixels")
	pf.Int("height", d.Height, "viewport height in pixels")
	pf.String("bounds", d.Bounds, "bounds mode: container or window")
	pf.String("topology", d.Topology, "link topology: dynamic or static")
	pf.Float64("max-distance", d.MaxDistance, "link distance threshold in pixels")
	pf.Int("max-links", d.MaxLinks, "maximum links per node")
	pf.Float64("speed", d.Speed, "maximum speed per axis in pixels per frame")
	pf.Float64("opacity", d.Opacity, "backdrop opacity")
	pf.Int("fps", d.FPS, "target frames per second")
	pf.Int64("seed", d.Seed, "random seed, 0 for time based")
	pf.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	pf.String("metrics-addr", d.MetricsAddr, "serve Prometheus metrics on this address")

	v = newViper()
}

// newViper layers env and the root flags over the defaults.
func newViper() *viper.Viper {
	nv := viper.New()
	config.SetDefaults(nv)
	for _, name := range boundFlags {
		_ = nv.BindPFlag(flagKey(name), rootCmd.PersistentFlags().Lookup(name))
	}
	nv.SetEnvPrefix("NODEFIELD")
	nv.AutomaticEnv()
	return nv
}

// flagKey maps a kebab-case flag name to its config key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// loadConfig reads the config file, if any, and merges env and flags over the
// defaults.
func loadConfig(cfgFile string) (config.Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("node-field")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "node-field"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return config.Load(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
