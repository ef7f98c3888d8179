package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/node-field/internal/field"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero nodes":      func(c *Config) { c.Nodes = 0 },
		"negative width":  func(c *Config) { c.Width = -10 },
		"zero height":     func(c *Config) { c.Height = 0 },
		"bounds":          func(c *Config) { c.Bounds = "page" },
		"topology":        func(c *Config) { c.Topology = "mesh" },
		"distance":        func(c *Config) { c.MaxDistance = 0 },
		"links":           func(c *Config) { c.MaxLinks = 0 },
		"edge opacity":    func(c *Config) { c.EdgeOpacity = 1.5 },
		"radius order":    func(c *Config) { c.RadiusMax = c.RadiusMin - 1 },
		"phase order":     func(c *Config) { c.PhaseSpeedMax = c.PhaseSpeedMin - 0.01 },
		"colour":          func(c *Config) { c.NodeColor = "teal" },
		"colour alpha":    func(c *Config) { c.EdgeFrom = "#00c89680" },
		"short alpha":     func(c *Config) { c.EdgeTo = "#0c98" },
		"opacity":         func(c *Config) { c.Opacity = 0 },
		"fps":             func(c *Config) { c.FPS = 0 },
		"log level":       func(c *Config) { c.LogLevel = "loud" },
		"metrics address": func(c *Config) { c.MetricsAddr = "nowhere" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, field.ErrInvalidConfiguration)
		})
	}
}

func TestValidColoursBuildTheme(t *testing.T) {
	for _, hex := range []string{"#0c9", "#00C896", "#3a86ff"} {
		c := Default()
		c.NodeColor = hex
		require.NoError(t, c.Validate(), hex)
		_, err := c.Theme()
		assert.NoError(t, err, hex)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node-field.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nodes: 20
topology: STATIC
bounds: container
width: 800
height: 600
seed: 42
metrics_addr: ":9464"
`), 0o644))

	t.Setenv("NODEFIELD_MAX_LINKS", "2")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("NODEFIELD")
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Nodes)
	assert.Equal(t, "static", cfg.Topology)
	assert.Equal(t, BoundsContainer, cfg.Bounds)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.MaxLinks)
	assert.Equal(t, ":9464", cfg.MetricsAddr)
	assert.Equal(t, Opacity, cfg.Opacity, "unset keys keep their defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("nodes", -1)

	_, err := Load(v)
	assert.ErrorIs(t, err, field.ErrInvalidConfiguration)
}

func TestFieldOptions(t *testing.T) {
	c := Default()
	c.Topology = "static"

	opts, err := c.FieldOptions(320, 200)
	require.NoError(t, err)
	assert.Equal(t, field.Static, opts.Topology)
	assert.Equal(t, c.Nodes, opts.Count)
	assert.Equal(t, 320.0, opts.Width)
	assert.Equal(t, 200.0, opts.Height)
	assert.Equal(t, c.EdgeOpacity, opts.MaxOpacity)
}

func TestTheme(t *testing.T) {
	c := Default()
	c.EdgeTo = "#ff0000"

	theme, err := c.Theme()
	require.NoError(t, err)
	assert.Equal(t, uint8(200), theme.Node.G)
	assert.Equal(t, uint8(255), theme.EdgeTo.R)

	c.EdgeFrom = "#abcd"
	_, err = c.Theme()
	assert.ErrorIs(t, err, field.ErrInvalidConfiguration)
}
