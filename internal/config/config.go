// Package config loads lectern's settings: defaults, then the TOML file,
// then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jwulff/lectern/internal/annotation"
)

// Config is the full application configuration.
type Config struct {
	DBPath    string `toml:"db_path"`
	MPVSocket string `toml:"mpv_socket"`
	FPS       int    `toml:"fps"`
	LogPath   string `toml:"log_path"`

	Engine EngineConfig `toml:"engine"`
	Watch  WatchConfig  `toml:"watch"`
}

// EngineConfig mirrors annotation.Settings in file form.
type EngineConfig struct {
	Tolerance       float64 `toml:"tolerance"`
	TimeTravel      float64 `toml:"time_travel_margin"`
	DisplayDuration float64 `toml:"display_duration"`
	MoveRate        float64 `toml:"move_rate"`
	ArrivalEpsilon  float64 `toml:"arrival_epsilon"`
	PoolSize        int     `toml:"pool_size"`
	StackLeftOffset float64 `toml:"stack_left_offset"`
	StackTopOffset  float64 `toml:"stack_top_offset"`
	StackSpacing    float64 `toml:"stack_spacing"`
	PanelOffsetX    float64 `toml:"panel_offset_x"`
	PanelOffsetY    float64 `toml:"panel_offset_y"`
	HitRadius       float64 `toml:"hit_radius"`
	PauseOnAppear   bool    `toml:"pause_on_appear"`
	PulseInterval   float64 `toml:"pulse_interval"`
	PulseLifetime   float64 `toml:"pulse_lifetime"`
	PulseScale      float64 `toml:"pulse_scale"`
}

// WatchConfig controls reloading a lesson file when it changes on disk.
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Debounce returns the watch debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// DefaultFPS is the frame rate of the playback loop.
const DefaultFPS = 30

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if env := os.Getenv("LECTERN_CONFIG"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lectern", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "lectern", "config.toml")
}

// Default returns the built-in configuration.
func Default() *Config {
	s := annotation.DefaultSettings()
	return &Config{
		FPS:     DefaultFPS,
		LogPath: filepath.Join(os.TempDir(), "lectern.log"),
		Engine: EngineConfig{
			Tolerance:       s.Tolerance,
			TimeTravel:      s.TimeTravelMargin,
			DisplayDuration: s.DisplayDuration,
			MoveRate:        s.MoveRate,
			ArrivalEpsilon:  s.ArrivalEpsilon,
			PoolSize:        s.PoolSize,
			StackLeftOffset: s.StackLeftOffset,
			StackTopOffset:  s.StackTopOffset,
			StackSpacing:    s.StackSpacing,
			PanelOffsetX:    s.PanelOffset.X,
			PanelOffsetY:    s.PanelOffset.Y,
			HitRadius:       s.HitRadius,
			PauseOnAppear:   s.PauseOnAppear,
			PulseInterval:   s.PulseInterval,
			PulseLifetime:   s.PulseLifetime,
			PulseScale:      s.PulseScale,
		},
		Watch: WatchConfig{DebounceMS: 250},
	}
}

// Load reads the config at path, or DefaultPath when path is empty. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv("LECTERN_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LECTERN_MPV_SOCKET"); v != "" {
		cfg.MPVSocket = v
	}
	if v := os.Getenv("LECTERN_FPS"); v != "" {
		if fps, err := strconv.Atoi(v); err == nil && fps > 0 {
			cfg.FPS = fps
		}
	}
	if v := os.Getenv("LECTERN_PAUSE_ON_APPEAR"); v != "" {
		cfg.Engine.PauseOnAppear = v == "1" || strings.EqualFold(v, "true")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value.
func (c *Config) Validate() error {
	var errs []error
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be in 1..240, got %d", c.FPS))
	}
	e := c.Engine
	if e.DisplayDuration <= 0 {
		errs = append(errs, fmt.Errorf("engine.display_duration must be positive, got %v", e.DisplayDuration))
	}
	if e.MoveRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.move_rate must be positive, got %v", e.MoveRate))
	}
	if e.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("engine.tolerance must not be negative, got %v", e.Tolerance))
	}
	if e.TimeTravel < 0 {
		errs = append(errs, fmt.Errorf("engine.time_travel_margin must not be negative, got %v", e.TimeTravel))
	}
	if e.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("engine.pool_size must not be negative, got %d", e.PoolSize))
	}
	if e.ArrivalEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("engine.arrival_epsilon must be positive, got %v", e.ArrivalEpsilon))
	}
	if e.PulseInterval <= 0 || e.PulseLifetime <= 0 {
		errs = append(errs, errors.New("engine.pulse_interval and engine.pulse_lifetime must be positive"))
	}
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// EngineSettings converts the engine section for the annotation package.
func (c *Config) EngineSettings() annotation.Settings {
	e := c.Engine
	return annotation.Settings{
		Tolerance:        e.Tolerance,
		TimeTravelMargin: e.TimeTravel,
		DisplayDuration:  e.DisplayDuration,
		MoveRate:         e.MoveRate,
		ArrivalEpsilon:   e.ArrivalEpsilon,
		PoolSize:         e.PoolSize,
		StackLeftOffset:  e.StackLeftOffset,
		StackTopOffset:   e.StackTopOffset,
		StackSpacing:     e.StackSpacing,
		PanelOffset:      annotation.Vec2{X: e.PanelOffsetX, Y: e.PanelOffsetY},
		HitRadius:        e.HitRadius,
		PulseInterval:    e.PulseInterval,
		PulseLifetime:    e.PulseLifetime,
		PulseScale:       e.PulseScale,
		PauseOnAppear:    e.PauseOnAppear,
	}
}

// FrameInterval is the wall-clock time between frames.
func (c *Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}
