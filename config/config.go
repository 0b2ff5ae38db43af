// Package config provides configuration loading and validation for the flock simulation.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed schema.json
var schemaJSON string

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// MaxGridCells bounds the grid so every cell key fits an int32.
const MaxGridCells = math.MaxInt32

var configSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("schema.json", schemaJSON)
})

// Strategy names accepted by the strategy key.
const (
	StrategyNaive     = "naive"
	StrategyScattered = "scattered"
	StrategyCoherent  = "coherent"
)

// Speed limit modes.
const (
	SpeedLimitRescale = "rescale"
	SpeedLimitClamp   = "clamp"
)

// Cell search policies.
const (
	CellSearchCube   = "cube"
	CellSearchRadius = "radius"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Strategy  string          `yaml:"strategy"`
	Agents    AgentsConfig    `yaml:"agents"`
	Scene     SceneConfig     `yaml:"scene"`
	Rules     RulesConfig     `yaml:"rules"`
	Motion    MotionConfig    `yaml:"motion"`
	Grid      GridConfig      `yaml:"grid"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Screen    ScreenConfig    `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// AgentsConfig holds population parameters.
type AgentsConfig struct {
	Count        int     `yaml:"count"`
	InitialSpeed float64 `yaml:"initial_speed"` // 0 = agents start at rest
	TrackIDs     bool    `yaml:"track_ids"`     // carry a stable id through coherent reorders
}

// SceneConfig holds the simulation domain.
type SceneConfig struct {
	Scale float64 `yaml:"scale"` // half-extent of the cube [-scale, +scale]^3
}

// RuleConfig holds one flocking rule's neighborhood radius and weight.
type RuleConfig struct {
	Distance float64 `yaml:"distance"`
	Scale    float64 `yaml:"scale"`
}

// RulesConfig holds the three flocking rules.
type RulesConfig struct {
	Cohesion   RuleConfig `yaml:"cohesion"`
	Separation RuleConfig `yaml:"separation"`
	Alignment  RuleConfig `yaml:"alignment"`
}

// MotionConfig holds integration parameters.
type MotionConfig struct {
	MaxSpeed   float64 `yaml:"max_speed"`
	DT         float64 `yaml:"dt"`
	SpeedLimit string  `yaml:"speed_limit"` // rescale | clamp
}

// GridConfig holds uniform grid parameters.
type GridConfig struct {
	CellWidthMultiplier float64 `yaml:"cell_width_multiplier"` // cell width = multiplier * max rule distance
	CellSearch          string  `yaml:"cell_search"`           // cube | radius
	CellSkip            bool    `yaml:"cell_skip"`             // reject cells whose box misses the search sphere
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers       int `yaml:"workers"`         // 0 = GOMAXPROCS
	LaneBatchSize int `yaml:"lane_batch_size"` // agents per dispatched chunk
	Threshold     int `yaml:"threshold"`       // below this many agents stages run inline
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // frames averaged by the perf collector
	LogEvery   int `yaml:"log_every"`   // frames between perf log lines (0 = never)
}

// ScreenConfig holds viewer settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SceneScale32 float32
	DT32         float32
	MaxSpeed32   float32

	Rule1Distance, Rule2Distance, Rule3Distance float32
	Rule1Scale, Rule2Scale, Rule3Scale          float32
	MaxRuleDistance                             float32

	CellWidth        float32 // multiplier * MaxRuleDistance
	InverseCellWidth float32
	HalfSideCount    int
	GridSideCount    int     // cells per axis
	GridCellCount    int     // GridSideCount^3
	GridMinimum      float32 // lower corner of the grid on every axis
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The merged result is
// validated before it is returned.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

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
	return cfg, nil
}

// Defaults returns the embedded default configuration with derived values filled in.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// Validate checks the config against the embedded schema and the cross-field
// rules the schema cannot express, then recomputes derived values.
func (c *Config) Validate() error {
	doc, err := c.jsonDocument()
	if err != nil {
		return err
	}

	sch, err := configSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Grid.CellSearch == CellSearchCube && c.Grid.CellWidthMultiplier < 1 {
		return fmt.Errorf("%w: cell_search %q needs cell_width_multiplier >= 1, got %g",
			ErrInvalidConfig, CellSearchCube, c.Grid.CellWidthMultiplier)
	}

	c.ComputeDerived()
	if c.Derived.CellWidth <= 0 || math.IsInf(float64(c.Derived.InverseCellWidth), 0) {
		return fmt.Errorf("%w: cell width must be positive", ErrInvalidConfig)
	}
	if side := gridSide(c.Scene.Scale, c.Derived.CellWidth); side*side*side > MaxGridCells {
		return fmt.Errorf("%w: grid of %.0f cells per axis exceeds %d cells, raise the rule distances or cell_width_multiplier or lower scene.scale",
			ErrInvalidConfig, side, MaxGridCells)
	}
	return nil
}

// jsonDocument converts the config into the generic JSON value the schema validator expects.
func (c *Config) jsonDocument() (any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("re-reading config: %w", err)
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encoding config as json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding config json: %w", err)
	}
	return doc, nil
}

// ComputeDerived calculates values derived from loaded config. Callers that
// build a Config in code must call it after changing any field.
func (c *Config) ComputeDerived() {
	d := &c.Derived
	d.SceneScale32 = float32(c.Scene.Scale)
	d.DT32 = float32(c.Motion.DT)
	d.MaxSpeed32 = float32(c.Motion.MaxSpeed)

	d.Rule1Distance = float32(c.Rules.Cohesion.Distance)
	d.Rule2Distance = float32(c.Rules.Separation.Distance)
	d.Rule3Distance = float32(c.Rules.Alignment.Distance)
	d.Rule1Scale = float32(c.Rules.Cohesion.Scale)
	d.Rule2Scale = float32(c.Rules.Separation.Scale)
	d.Rule3Scale = float32(c.Rules.Alignment.Scale)
	d.MaxRuleDistance = max(d.Rule1Distance, d.Rule2Distance, d.Rule3Distance)

	d.CellWidth = float32(c.Grid.CellWidthMultiplier) * d.MaxRuleDistance
	if d.CellWidth <= 0 {
		d.InverseCellWidth = 0
		d.HalfSideCount, d.GridSideCount, d.GridCellCount = 0, 0, 0
		d.GridMinimum = 0
		return
	}
	d.InverseCellWidth = 1 / d.CellWidth

	side := gridSide(c.Scene.Scale, d.CellWidth)
	if side*side*side > MaxGridCells {
		// rejected by Validate; keep the counts from overflowing
		d.HalfSideCount, d.GridSideCount, d.GridCellCount = 0, 0, 0
		d.GridMinimum = 0
		return
	}
	d.HalfSideCount = int(side) / 2
	d.GridSideCount = int(side)
	d.GridCellCount = d.GridSideCount * d.GridSideCount * d.GridSideCount
	d.GridMinimum = -d.CellWidth * float32(d.HalfSideCount)
}

// gridSide returns the cells per axis for a scene of half-size scale: at
// least one full cell of padding beyond the scene on every side.
func gridSide(scale float64, cellWidth float32) float64 {
	return 2 * (math.Ceil(scale/float64(cellWidth)) + 1)
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
