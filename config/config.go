// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Galaxy    GalaxyConfig    `yaml:"galaxy"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Run       RunConfig       `yaml:"run"`
	Compute   ComputeConfig   `yaml:"compute"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GalaxyConfig holds the initial population parameters.
type GalaxyConfig struct {
	InitialBodyCount  int     `yaml:"initial_body_count"`  // Population capacity, anchor included
	SpaceBorder       int     `yaml:"space_border"`        // Half-width of the bounded region
	PlanetFreeZone    float64 `yaml:"planet_free_zone"`    // Exclusion radius around the anchor
	SunMass           int     `yaml:"sun_mass"`            // Anchor body mass
	GiantPlanetMass   int     `yaml:"giant_planet_mass"`   // Giant tier base mass
	PlanetMass        int     `yaml:"planet_mass"`         // Standard tier base mass
	GiantPlanetCount  int     `yaml:"giant_planet_count"`  // Number of giant-tier bodies after the anchor
	StandardDeviation float64 `yaml:"standard_deviation"`  // Sigma of every normal perturbation
}

// PhysicsConfig holds physical constants.
type PhysicsConfig struct {
	GravitationalConstant float64 `yaml:"gravitational_constant"`
}

// RunConfig holds run length and reporting parameters.
type RunConfig struct {
	Days         int `yaml:"days"`
	ProgressStep int `yaml:"progress_step"` // Percent between progress reports
}

// ComputeConfig selects and tunes the integration backend.
type ComputeConfig struct {
	Backend           string `yaml:"backend"`            // "parallel" or "offload"
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
	WorkGroupSize     int    `yaml:"work_group_size"`    // Offload kernel local size
	ParallelThreshold int    `yaml:"parallel_threshold"` // Below this, single-threaded
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Days per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Days averaged by the perf collector
}

// ViewerConfig holds trajectory viewer display settings.
type ViewerConfig struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	TargetFPS       int `yaml:"target_fps"`
	MaxFrameDelayMS int `yaml:"max_frame_delay_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Workers int     // Effective worker count (Compute.Workers or GOMAXPROCS)
	Border  float64 // Galaxy.SpaceBorder as float64
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Validate reports parameter combinations the simulation cannot run with.
func (c *Config) Validate() error {
	g := c.Galaxy
	var errs []error
	if g.InitialBodyCount < 1 {
		errs = append(errs, fmt.Errorf("galaxy.initial_body_count must be at least 1, got %d", g.InitialBodyCount))
	}
	if g.SpaceBorder <= 0 {
		errs = append(errs, fmt.Errorf("galaxy.space_border must be positive, got %d", g.SpaceBorder))
	}
	if g.PlanetFreeZone < 0 || g.PlanetFreeZone >= float64(g.SpaceBorder) {
		errs = append(errs, fmt.Errorf("galaxy.planet_free_zone must be in [0, %d), got %g", g.SpaceBorder, g.PlanetFreeZone))
	}
	if g.SunMass <= 0 {
		errs = append(errs, fmt.Errorf("galaxy.sun_mass must be positive, got %d", g.SunMass))
	}
	if g.GiantPlanetCount < 0 {
		errs = append(errs, fmt.Errorf("galaxy.giant_planet_count must not be negative, got %d", g.GiantPlanetCount))
	}
	if g.StandardDeviation < 0 {
		errs = append(errs, fmt.Errorf("galaxy.standard_deviation must not be negative, got %g", g.StandardDeviation))
	}
	if c.Physics.GravitationalConstant <= 0 {
		errs = append(errs, fmt.Errorf("physics.gravitational_constant must be positive, got %g", c.Physics.GravitationalConstant))
	}
	if c.Run.Days < 0 {
		errs = append(errs, fmt.Errorf("run.days must not be negative, got %d", c.Run.Days))
	}
	if c.Compute.WorkGroupSize < 1 {
		errs = append(errs, fmt.Errorf("compute.work_group_size must be at least 1, got %d", c.Compute.WorkGroupSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating a loaded config in place.
func (c *Config) ComputeDerived() {
	c.Derived.Workers = c.Compute.Workers
	if c.Derived.Workers <= 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
	c.Derived.Border = float64(c.Galaxy.SpaceBorder)

	if c.Run.ProgressStep <= 0 {
		c.Run.ProgressStep = 5
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 10
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
