package bramble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config gathers the tunables of the clock, loop, renderer and logger. Load
// one from disk with LoadConfig or start from DefaultConfig.
type Config struct {
	Time   TimeConfig   `toml:"time" yaml:"time"`
	Loop   LoopConfig   `toml:"loop" yaml:"loop"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// TimeConfig configures the TimeManager. Durations are milliseconds.
type TimeConfig struct {
	FixedDelta     float64 `toml:"fixed_delta_ms" yaml:"fixed_delta_ms"`
	MaxAccumulator float64 `toml:"max_accumulator_ms" yaml:"max_accumulator_ms"`
	TimeScale      float64 `toml:"time_scale" yaml:"time_scale"`
	StatsWindow    int     `toml:"stats_window" yaml:"stats_window"`
}

// LoopConfig configures the GameLoop scheduling mode.
type LoopConfig struct {
	VSync     bool    `toml:"vsync" yaml:"vsync"`
	TargetFPS float64 `toml:"target_fps" yaml:"target_fps"`
}

// RenderConfig configures the Renderer and its viewport.
type RenderConfig struct {
	MaxBatchSize int    `toml:"max_batch_size" yaml:"max_batch_size"`
	ClearColor   Color  `toml:"clear_color" yaml:"clear_color"`
	DesignWidth  int    `toml:"design_width" yaml:"design_width"`
	DesignHeight int    `toml:"design_height" yaml:"design_height"`
	ViewportMode string `toml:"viewport_mode" yaml:"viewport_mode"`
}

// LogConfig configures NewLogger.
type LogConfig struct {
	Level    string `toml:"level" yaml:"level"`
	Format   string `toml:"format" yaml:"format"` // "json" or "console"
	Sampling bool   `toml:"sampling" yaml:"sampling"`
}

// DefaultConfig returns the settings used when nothing is configured:
// 60 Hz simulation, vsync scheduling, 250 ms catch-up ceiling.
func DefaultConfig() Config {
	return Config{
		Time: TimeConfig{
			FixedDelta:     DefaultFixedDelta,
			MaxAccumulator: DefaultMaxAccumulator,
			TimeScale:      1,
			StatsWindow:    DefaultStatsWindow,
		},
		Loop: LoopConfig{
			VSync:     true,
			TargetFPS: 60,
		},
		Render: RenderConfig{
			MaxBatchSize: DefaultMaxBatchSize,
			ClearColor:   Color{0, 0, 0, 1},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file on top of
// DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("bramble: read config: %w", err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes data in the format named by ext (".toml", ".yaml" or
// ".yml") on top of DefaultConfig and validates the result.
func ParseConfig(data []byte, ext string) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("bramble: parse toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("bramble: parse yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("bramble: unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Time.FixedDelta <= 0 {
		return fmt.Errorf("%w: fixed_delta_ms must be positive, got %v", ErrInvalidArgument, c.Time.FixedDelta)
	}
	if c.Time.MaxAccumulator < c.Time.FixedDelta {
		return fmt.Errorf("%w: max_accumulator_ms %v is below fixed_delta_ms %v",
			ErrInvalidArgument, c.Time.MaxAccumulator, c.Time.FixedDelta)
	}
	if c.Time.TimeScale < 0 {
		return fmt.Errorf("%w: time_scale must not be negative, got %v", ErrInvalidArgument, c.Time.TimeScale)
	}
	if !c.Loop.VSync && c.Loop.TargetFPS <= 0 {
		return fmt.Errorf("%w: target_fps must be positive in timed mode, got %v", ErrInvalidArgument, c.Loop.TargetFPS)
	}
	if c.Render.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max_batch_size must be positive, got %d", ErrInvalidArgument, c.Render.MaxBatchSize)
	}
	if c.Render.ViewportMode != "" {
		if _, err := ParseViewportMode(c.Render.ViewportMode); err != nil {
			return err
		}
	}
	return nil
}

// NewTimeManager builds a TimeManager from the time section.
func (c Config) NewTimeManager() *TimeManager {
	tm := NewTimeManager(TimeOptions{
		FixedDelta:     c.Time.FixedDelta,
		MaxAccumulator: c.Time.MaxAccumulator,
		StatsWindow:    c.Time.StatsWindow,
	})
	_ = tm.SetTimeScale(c.Time.TimeScale)
	return tm
}

// LoopOptions converts the loop section.
func (c Config) LoopOptions() LoopOptions {
	return LoopOptions{VSync: c.Loop.VSync, TargetFPS: c.Loop.TargetFPS}
}

// Viewport returns the configured viewport, or nil when no design
// resolution is set.
func (c Config) Viewport() *Viewport {
	if c.Render.DesignWidth <= 0 || c.Render.DesignHeight <= 0 {
		return nil
	}
	mode, _ := ParseViewportMode(c.Render.ViewportMode)
	return NewViewport(float64(c.Render.DesignWidth), float64(c.Render.DesignHeight), mode)
}
