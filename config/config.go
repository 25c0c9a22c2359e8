// Package config provides configuration loading and access for the flame renderer.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Emitter   EmitterConfig   `yaml:"emitter"`
	Particle  ParticleConfig  `yaml:"particle"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// EmitterConfig holds flame emitter geometry.
// X and BaseY of 0 mean "derive from screen size" (centered, near the bottom).
type EmitterConfig struct {
	X      float64 `yaml:"x"`      // Base emission point, world X (0 = screen center)
	BaseY  float64 `yaml:"base_y"` // Base emission point, world Y (0 = lower screen edge minus margin)
	Radius float64 `yaml:"radius"` // Spawn disk radius around the base point
	Height float64 `yaml:"height"` // Vertical extent of the flame body above the base
}

// ParticleConfig holds per-particle motion and lifetime parameters.
type ParticleConfig struct {
	SpeedMin        float64 `yaml:"speed_min"` // Launch speed range
	SpeedMax        float64 `yaml:"speed_max"`
	LaunchAngleDeg  float64 `yaml:"launch_angle_deg"` // Near-vertical launch direction
	LaunchJitterDeg float64 `yaml:"launch_jitter_deg"`
	LifeMin         float64 `yaml:"life_min"` // Lifetime range in seconds
	LifeMax         float64 `yaml:"life_max"`
	Lift            float64 `yaml:"lift"`          // Constant upward acceleration
	Turbulence      float64 `yaml:"turbulence"`    // Random per-axis velocity jitter per second
	WindStrength    float64 `yaml:"wind_strength"` // Coherent lateral wind from the noise field
	Damping         float64 `yaml:"damping"`       // Velocity retained per step (<1)
	SizeClasses     int     `yaml:"size_classes"`
	WidenFactor     float64 `yaml:"widen_factor"` // Horizontal scale gain toward the flame tip
}

// SpawnConfig holds spawn admission control parameters.
// The interval widens as the visible sprite count approaches the budget.
type SpawnConfig struct {
	Interval      float64 `yaml:"interval"`       // Base seconds between spawns
	IntervalMax   float64 `yaml:"interval_max"`   // Interval at full budget pressure
	PressureStart float64 `yaml:"pressure_start"` // Fraction of budget where widening begins
}

// ClusterConfig holds the budget-constrained clustering parameters.
type ClusterConfig struct {
	Budget           int       `yaml:"budget"`             // Cap on simultaneously visible sprites
	BaseDistance     float64   `yaml:"base_distance"`      // Base merge distance in world units
	Multipliers      []float64 `yaml:"multipliers"`        // Escalating threshold multipliers, ascending
	CohesionFactor   float64   `yaml:"cohesion_factor"`    // Centroid admission radius factor
	HeightScaleFloor float64   `yaml:"height_scale_floor"` // Merge radius scale at the flame base
	HeightScaleGain  float64   `yaml:"height_scale_gain"`  // Added scale at the flame tip
	BottomBiasGain   float64   `yaml:"bottom_bias_gain"`   // Extra cohesion radius for low centroids
}

// CatalogConfig holds texture catalog selection thresholds.
type CatalogConfig struct {
	ScatterChance   float64 `yaml:"scatter_chance"`   // Chance to substitute a scattered/asymmetric archetype
	OverlapDistance float64 `yaml:"overlap_distance"` // Pair distance below which the overlapping family wins
	NearDistance    float64 `yaml:"near_distance"`    // Pair distance buckets
	FarDistance     float64 `yaml:"far_distance"`
}

// PhysicsConfig holds simulation step parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	ScreenW32      float32
	ScreenH32      float32
	EmitterX32     float32 // Resolved base emission point
	EmitterBaseY32 float32
	EmitterR32     float32
	EmitterH32     float32
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

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Emitter base defaults to the horizontal center, a little above the lower edge
	x := c.Emitter.X
	if x == 0 {
		x = float64(c.Screen.Width) / 2
	}
	baseY := c.Emitter.BaseY
	if baseY == 0 {
		baseY = float64(c.Screen.Height) - 60
	}
	c.Derived.EmitterX32 = float32(x)
	c.Derived.EmitterBaseY32 = float32(baseY)
	c.Derived.EmitterR32 = float32(c.Emitter.Radius)
	c.Derived.EmitterH32 = float32(c.Emitter.Height)

	// The escalation loop needs a non-empty ascending multiplier list
	if len(c.Cluster.Multipliers) == 0 {
		c.Cluster.Multipliers = []float64{1, 1.12, 1.4, 1.8, 2.0, 2.2}
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
