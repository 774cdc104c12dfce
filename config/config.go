// Package config provides configuration loading and access for the scrapyard engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Drag        DragConfig        `yaml:"drag"`
	Manipulator ManipulatorConfig `yaml:"manipulator"`
	Scrap       ScrapConfig       `yaml:"scrap"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Bin         BinConfig         `yaml:"bin"`
	Fields      FieldsConfig      `yaml:"fields"`
	Barriers    BarriersConfig    `yaml:"barriers"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the demo front-end.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the fixed simulation space dimensions in world units.
// The world is resolution-independent; the camera letterboxes it into the viewport.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds airborne integration and contact parameters.
type PhysicsConfig struct {
	DT            float64 `yaml:"dt"`             // fixed tick length for headless runs
	Gravity       float64 `yaml:"gravity"`        // wu/s^2, negative = downward
	MaxUpSpeed    float64 `yaml:"max_up_speed"`   // vy clamp, wu/s
	MaxDownSpeed  float64 `yaml:"max_down_speed"` // vy clamp magnitude, wu/s
	MaxLaunchVX   float64 `yaml:"max_launch_vx"`  // |vx| clamp at launch, wu/s
	RestThreshold float64 `yaml:"rest_threshold"` // normal speed below this is resting contact, wu/s
	TangentDamp   float64 `yaml:"tangent_damp"`   // tangential damping on resting contact
}

// DragConfig holds spring-damper drag controller parameters.
type DragConfig struct {
	Stiffness      float64 `yaml:"stiffness"`          // base spring stiffness
	Damping        float64 `yaml:"damping"`            // per-tick velocity multiplier, <1
	MaxSpeed       float64 `yaml:"max_speed"`          // drag speed clamp, wu/s
	SnapDistance   float64 `yaml:"snap_distance"`      // wu
	SnapPointerSpd float64 `yaml:"snap_pointer_speed"` // wu/s
	SnapObjectSpd  float64 `yaml:"snap_object_speed"`  // wu/s
	MinThrowSpeed  float64 `yaml:"min_throw_speed"`    // release below this is a "place", wu/s
}

// ManipulatorConfig holds the load model's manipulator parameters.
type ManipulatorConfig struct {
	Strength float64 `yaml:"strength"` // load moved at full effectiveness
	MaxLoad  float64 `yaml:"max_load"` // load at which effectiveness reaches zero
}

// ScrapConfig holds per-scrap geometry parameters.
type ScrapConfig struct {
	Radius        float64 `yaml:"radius"`          // collision radius, wu
	ElementSizePx float64 `yaml:"element_size_px"` // fallback rendered size when unknown
	MaxMutators   int     `yaml:"max_mutators"`    // cap on sampled mutators per scrap
}

// SpawnConfig holds scrap spawning parameters.
type SpawnConfig struct {
	Interval  float64 `yaml:"interval"`   // seconds between spawns
	MaxActive int     `yaml:"max_active"` // spawning pauses above this count
}

// BinConfig holds the collection bin rectangle in world units.
type BinConfig struct {
	X      float64 `yaml:"x"` // center x
	Y      float64 `yaml:"y"` // center height above baseline
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FieldsConfig holds ambient force field definitions.
type FieldsConfig struct {
	Global []GlobalFieldConfig `yaml:"global"`
	Point  []PointFieldConfig  `yaml:"point"`
}

// GlobalFieldConfig defines a uniform directional field (gravity-like).
type GlobalFieldConfig struct {
	DirX     float64 `yaml:"dir_x"`
	DirY     float64 `yaml:"dir_y"`
	Strength float64 `yaml:"strength"`
}

// PointFieldConfig defines a point-source field (magnet-like).
type PointFieldConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Strength float64 `yaml:"strength"`
	Falloff  float64 `yaml:"falloff"`
	MaxRange float64 `yaml:"max_range"` // 0 = unlimited
}

// BarriersConfig holds barrier layout loading options.
type BarriersConfig struct {
	Path      string `yaml:"path"`       // optional layout file; empty = embedded default
	HotReload bool   `yaml:"hot_reload"` // watch the layout file for changes
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Scrap.MaxMutators <= 0 {
		c.Scrap.MaxMutators = 3
	}
	if c.Physics.DT <= 0 {
		c.Physics.DT = 1.0 / 60.0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
