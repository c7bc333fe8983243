// Package config loads runtime settings with viper.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
)

// Config holds every setting the binary reads from file, env or flags.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Field      FieldConfig      `mapstructure:"field" yaml:"field"`
	Physics    PhysicsConfig    `mapstructure:"physics" yaml:"physics"`
	Frame      FrameConfig      `mapstructure:"frame" yaml:"frame"`
	Window     WindowConfig     `mapstructure:"window" yaml:"window"`
	Terminal   TerminalConfig   `mapstructure:"terminal" yaml:"terminal"`
	Soundtrack SoundtrackConfig `mapstructure:"soundtrack" yaml:"soundtrack"`
}

// LoggerConfig configures zap and the optional rotating log file.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// FieldConfig sizes the population.
type FieldConfig struct {
	Count   int      `mapstructure:"count" yaml:"count"`
	Palette []string `mapstructure:"palette" yaml:"palette"`
}

// PhysicsConfig tunes the pointer force and the proximity edges.
type PhysicsConfig struct {
	RepelRadius   float64 `mapstructure:"repel_radius" yaml:"repel_radius"`
	RepelStrength float64 `mapstructure:"repel_strength" yaml:"repel_strength"`
	LinkRadius    float64 `mapstructure:"link_radius" yaml:"link_radius"`
	LinkAlpha     float64 `mapstructure:"link_alpha" yaml:"link_alpha"`
	LinkWidth     float64 `mapstructure:"link_width" yaml:"link_width"`
	LinkColor     string  `mapstructure:"link_color" yaml:"link_color"`
}

// FrameConfig controls the fade overlay and the self-paced loop interval.
type FrameConfig struct {
	FadeColor string        `mapstructure:"fade_color" yaml:"fade_color"`
	FadeAlpha float64       `mapstructure:"fade_alpha" yaml:"fade_alpha"`
	Interval  time.Duration `mapstructure:"interval" yaml:"interval"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	HUD    bool   `mapstructure:"hud" yaml:"hud"`
}

type TerminalConfig struct {
	CellWidth  int `mapstructure:"cell_width" yaml:"cell_width"`
	CellHeight int `mapstructure:"cell_height" yaml:"cell_height"`
}

type SoundtrackConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "particle-field")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	v.SetDefault("field.count", ParticleCount)
	v.SetDefault("field.palette", Palette)

	v.SetDefault("physics.repel_radius", RepelRadius)
	v.SetDefault("physics.repel_strength", RepelStrength)
	v.SetDefault("physics.link_radius", LinkRadius)
	v.SetDefault("physics.link_alpha", LinkAlpha)
	v.SetDefault("physics.link_width", LinkWidth)
	v.SetDefault("physics.link_color", LinkColor)

	v.SetDefault("frame.fade_color", FadeColor)
	v.SetDefault("frame.fade_alpha", FadeAlpha)
	v.SetDefault("frame.interval", time.Second/60)

	v.SetDefault("window.width", WindowWidth)
	v.SetDefault("window.height", WindowHeight)
	v.SetDefault("window.title", WindowTitle)
	v.SetDefault("window.hud", false)

	v.SetDefault("terminal.cell_width", CellWidth)
	v.SetDefault("terminal.cell_height", CellHeight)

	v.SetDefault("soundtrack.path", "")
}

// NewConfigFromViper unmarshals and validates the settings held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the validated defaults without reading any file.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	var errs []error
	if c.Field.Count <= 0 {
		errs = append(errs, errors.New("field.count must be a positive integer"))
	}
	if len(c.Field.Palette) == 0 {
		errs = append(errs, errors.New("field.palette must name at least one color"))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	if c.Physics.RepelRadius <= 0 {
		errs = append(errs, errors.New("physics.repel_radius must be positive"))
	}
	if c.Physics.LinkRadius <= 0 {
		errs = append(errs, errors.New("physics.link_radius must be positive"))
	}
	if c.Physics.LinkAlpha < 0 || c.Physics.LinkAlpha > 1 {
		errs = append(errs, errors.New("physics.link_alpha must be within [0, 1]"))
	}
	if _, err := ParseColor(c.Physics.LinkColor); err != nil {
		errs = append(errs, fmt.Errorf("physics.link_color: %w", err))
	}
	if c.Frame.FadeAlpha <= 0 || c.Frame.FadeAlpha > 1 {
		errs = append(errs, errors.New("frame.fade_alpha must be within (0, 1]"))
	}
	if _, err := ParseColor(c.Frame.FadeColor); err != nil {
		errs = append(errs, fmt.Errorf("frame.fade_color: %w", err))
	}
	if c.Frame.Interval <= 0 {
		errs = append(errs, errors.New("frame.interval must be positive"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, errors.New("window.width and window.height must be positive"))
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, errors.New("terminal.cell_width and terminal.cell_height must be positive"))
	}
	return errors.Join(errs...)
}

// Palette parses the configured particle colors.
func (c *Config) Palette() ([]color.NRGBA, error) {
	out := make([]color.NRGBA, 0, len(c.Field.Palette))
	for i, hex := range c.Field.Palette {
		col, err := ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("field.palette[%d]: %w", i, err)
		}
		out = append(out, col)
	}
	return out, nil
}

// ParseColor reads a "#rrggbb" string as an opaque color.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
