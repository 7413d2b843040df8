// Package config loads game settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/basebuilder/internal/world"
)

// Environment variables read by FromEnv.
const (
	EnvConfig = "BASEBUILDER_CONFIG"
	EnvSeed   = "BASEBUILDER_SEED"
	EnvLog    = "BASEBUILDER_LOG"
)

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation. Used for reproducible world generation.
	// A seed of 0 means a random seed will be generated.
	Seed int64 `yaml:"seed"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Diagonals lets characters move between diagonal neighbours.
	Diagonals bool `yaml:"diagonals"`

	// FireMultiplier scales the movement cost of burning furniture.
	FireMultiplier float64 `yaml:"fire_multiplier"`
	// BurnTime is the fuel given to furniture ignited without a fuel parameter.
	BurnTime float64 `yaml:"burn_time"`

	TickInterval time.Duration `yaml:"tick_interval"`

	Characters     int     `yaml:"characters"`
	CharacterSpeed float64 `yaml:"character_speed"`
	MaxJobAttempts int     `yaml:"max_job_attempts"`

	// TileCosts overrides the base movement cost of tile types, keyed by type name ("floor", "rough").
	TileCosts map[string]float64 `yaml:"tile_costs,omitempty"`

	SnapshotPath string `yaml:"snapshot_path"`
	LogPath      string `yaml:"log_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:          world.DefaultWidth,
		Height:         world.DefaultHeight,
		FireMultiplier: world.DefaultFireMultiplier,
		BurnTime:       world.DefaultBurnTime,
		TickInterval:   100 * time.Millisecond,
		Characters:     3,
		CharacterSpeed: 4,
		MaxJobAttempts: 3,
		SnapshotPath:   "basebuilder.save",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by BASEBUILDER_CONFIG and applies the remaining environment overrides.
func FromEnv() (Config, error) {
	cfg, err := Load(os.Getenv(EnvConfig))
	if err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if s := strings.TrimSpace(getenv(EnvSeed)); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if s := strings.TrimSpace(getenv(EnvLog)); s != "" {
		c.LogPath = s
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("world size must be > 0, got %dx%d", c.Width, c.Height)
	}
	if c.FireMultiplier < 0 {
		return errors.New("fire_multiplier must be >= 0")
	}
	if c.BurnTime <= 0 {
		return errors.New("burn_time must be > 0")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick_interval must be > 0")
	}
	if c.Characters < 0 {
		return errors.New("characters must be >= 0")
	}
	if c.CharacterSpeed <= 0 {
		return errors.New("character_speed must be > 0")
	}
	if c.MaxJobAttempts <= 0 {
		return errors.New("max_job_attempts must be > 0")
	}
	for name, cost := range c.TileCosts {
		typ, err := world.ParseTileType(name)
		if err != nil {
			return fmt.Errorf("tile_costs: %w", err)
		}
		if typ == world.TileEmpty {
			return errors.New("tile_costs: empty tiles are never walkable")
		}
		if cost < 0 {
			return fmt.Errorf("tile_costs: %s cost must be >= 0", name)
		}
	}
	return nil
}

// Apply configures w with the world-level settings.
func (c Config) Apply(w *world.World) {
	w.SetFireMultiplier(c.FireMultiplier)
	w.SetBurnTime(c.BurnTime)
	for name, cost := range c.TileCosts {
		if typ, err := world.ParseTileType(name); err == nil {
			w.SetTypeCost(typ, cost)
		}
	}
}
