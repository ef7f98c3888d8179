package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/iburimskiy/node-field/internal/field"
	"github.com/iburimskiy/node-field/internal/render"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Field parameters
	NodeCount     = 40
	MaxDistance   = 150
	MaxLinks      = 3
	EdgeOpacity   = 0.3
	Speed         = 0.25
	RadiusMin     = 2.0
	RadiusMax     = 3.5
	PhaseSpeedMin = 0.02
	PhaseSpeedMax = 0.06

	// Backdrop
	Opacity   = 0.6
	NodeColor = "#00c896"
	EdgeFrom  = "#00c896"
	EdgeTo    = "#3a86ff"
	FPS       = 60

	BoundsContainer = "container"
	BoundsWindow    = "window"
)

// Config is everything the animator and its hosts read.
type Config struct {
	Nodes  int    `mapstructure:"nodes" validate:"gt=0"`
	Width  int    `mapstructure:"width" validate:"gt=0"`
	Height int    `mapstructure:"height" validate:"gt=0"`
	Bounds string `mapstructure:"bounds" validate:"oneof=container window"`

	Topology    string  `mapstructure:"topology" validate:"oneof=dynamic static"`
	MaxDistance float64 `mapstructure:"max_distance" validate:"gt=0"`
	MaxLinks    int     `mapstructure:"max_links" validate:"gt=0"`
	EdgeOpacity float64 `mapstructure:"edge_opacity" validate:"gt=0,lte=1"`

	Speed         float64 `mapstructure:"speed" validate:"gte=0"`
	RadiusMin     float64 `mapstructure:"radius_min" validate:"gt=0"`
	RadiusMax     float64 `mapstructure:"radius_max" validate:"gtefield=RadiusMin"`
	PhaseSpeedMin float64 `mapstructure:"phase_speed_min" validate:"gte=0"`
	PhaseSpeedMax float64 `mapstructure:"phase_speed_max" validate:"gtefield=PhaseSpeedMin"`

	NodeColor string  `mapstructure:"node_color" validate:"hexcolor,rgbhex"`
	EdgeFrom  string  `mapstructure:"edge_from" validate:"hexcolor,rgbhex"`
	EdgeTo    string  `mapstructure:"edge_to" validate:"hexcolor,rgbhex"`
	Opacity   float64 `mapstructure:"opacity" validate:"gt=0,lte=1"`

	FPS         int    `mapstructure:"fps" validate:"gt=0,lte=240"`
	Seed        int64  `mapstructure:"seed"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	MetricsAddr string `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`
}

var validate = newValidator()

// newValidator adds rgbhex, which limits hex colours to the forms the
// renderer reads: #rgb and #rrggbb.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		_, err := render.ParseHex(fl.Field().String())
		return err == nil
	})
	return v
}

// Default returns the stock backdrop settings.
func Default() Config {
	return Config{
		Nodes:         NodeCount,
		Width:         WindowWidth,
		Height:        WindowHeight,
		Bounds:        BoundsWindow,
		Topology:      field.Dynamic.String(),
		MaxDistance:   MaxDistance,
		MaxLinks:      MaxLinks,
		EdgeOpacity:   EdgeOpacity,
		Speed:         Speed,
		RadiusMin:     RadiusMin,
		RadiusMax:     RadiusMax,
		PhaseSpeedMin: PhaseSpeedMin,
		PhaseSpeedMax: PhaseSpeedMax,
		NodeColor:     NodeColor,
		EdgeFrom:      EdgeFrom,
		EdgeTo:        EdgeTo,
		Opacity:       Opacity,
		FPS:           FPS,
		LogLevel:      "info",
	}
}

// SetDefaults registers Default() on v so that file, env and flags only
// need to override what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("nodes", d.Nodes)
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("bounds", d.Bounds)
	v.SetDefault("topology", d.Topology)
	v.SetDefault("max_distance", d.MaxDistance)
	v.SetDefault("max_links", d.MaxLinks)
	v.SetDefault("edge_opacity", d.EdgeOpacity)
	v.SetDefault("speed", d.Speed)
	v.SetDefault("radius_min", d.RadiusMin)
	v.SetDefault("radius_max", d.RadiusMax)
	v.SetDefault("phase_speed_min", d.PhaseSpeedMin)
	v.SetDefault("phase_speed_max", d.PhaseSpeedMax)
	v.SetDefault("node_color", d.NodeColor)
	v.SetDefault("edge_from", d.EdgeFrom)
	v.SetDefault("edge_to", d.EdgeTo)
	v.SetDefault("opacity", d.Opacity)
	v.SetDefault("fps", d.FPS)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// Load reads a validated Config out of v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", field.ErrInvalidConfiguration, err)
	}
	cfg.Bounds = strings.ToLower(cfg.Bounds)
	cfg.Topology = strings.ToLower(cfg.Topology)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field. Failures wrap field.ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", field.ErrInvalidConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", field.ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

// FieldOptions maps the config onto a field of the given size.
func (c Config) FieldOptions(width, height float64) (field.Options, error) {
	topology, err := field.ParseTopology(c.Topology)
	if err != nil {
		return field.Options{}, err
	}
	return field.Options{
		Count:         c.Nodes,
		Width:         width,
		Height:        height,
		Speed:         c.Speed,
		RadiusMin:     c.RadiusMin,
		RadiusMax:     c.RadiusMax,
		PhaseSpeedMin: c.PhaseSpeedMin,
		PhaseSpeedMax: c.PhaseSpeedMax,
		MaxDistance:   c.MaxDistance,
		MaxLinks:      c.MaxLinks,
		MaxOpacity:    c.EdgeOpacity,
		Topology:      topology,
	}, nil
}

// Theme builds the render theme from the configured colours.
func (c Config) Theme() (render.Theme, error) {
	t := render.DefaultTheme()
	var err error
	if t.Node, err = render.ParseHex(c.NodeColor); err != nil {
		return t, fmt.Errorf("%w: node_color: %v", field.ErrInvalidConfiguration, err)
	}
	if t.EdgeFrom, err = render.ParseHex(c.EdgeFrom); err != nil {
		return t, fmt.Errorf("%w: edge_from: %v", field.ErrInvalidConfiguration, err)
	}
	if t.EdgeTo, err = render.ParseHex(c.EdgeTo); err != nil {
		return t, fmt.Errorf("%w: edge_to: %v", field.ErrInvalidConfiguration, err)
	}
	return t, nil
}
