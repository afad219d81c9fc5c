// Package config loads the YAML configuration of the orbital viewer.
// User files are merged over embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/field"
	"github.com/soypat/orbital/mesh"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalid = errors.New("invalid config")

const (
	kindHydrogen = "hydrogen"
	kindSolid    = "solid"
)

// Config holds every configuration section.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Orbital   OrbitalConfig   `yaml:"orbital"`
	Solid     SolidConfig     `yaml:"solid"`
	View      ViewConfig      `yaml:"view"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// WindowConfig holds interactive window settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// OrbitalConfig selects the displayed field: a hydrogen orbital or, with
// kind solid, the shape of the solid section.
type OrbitalConfig struct {
	Kind   string `yaml:"kind"` // hydrogen or solid.
	Z      int    `yaml:"z"`
	N      int    `yaml:"n"`
	L      int    `yaml:"l"`
	M      int    `yaml:"m"`
	Real   bool   `yaml:"real"`
	Diff   bool   `yaml:"diff"`
	Square bool   `yaml:"square"`
	Phase  bool   `yaml:"phase"`
}

// SolidConfig describes a solid density field built from distance primitives.
type SolidConfig struct {
	Shape  string    `yaml:"shape"`
	Radius float64   `yaml:"radius"`
	Size   []float64 `yaml:"size"`
	Height float64   `yaml:"height"`
	Round  float64   `yaml:"round"`
	Blend  string    `yaml:"blend"`
	Smooth float64   `yaml:"smooth"`
	Wall   float64   `yaml:"wall"`
	Skin   float64   `yaml:"skin"`
}

// ViewConfig holds the initial scene controls.
type ViewConfig struct {
	Detail     int     `yaml:"detail"`
	Brightness float64 `yaml:"brightness"`
	Distance   float64 `yaml:"distance"`
	FovY       float64 `yaml:"fovy"`
}

type MeshConfig struct {
	Seed            string `yaml:"seed"`  // kuhn or bcc.
	Split           string `yaml:"split"` // star or bisect.
	SampleDivisions int    `yaml:"sample_divisions"`
	MaxDepth        int    `yaml:"max_depth"`
}

// RenderConfig holds orchestrator and headless rendering settings.
type RenderConfig struct {
	PullThreshold int     `yaml:"pull_threshold"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Supersample   int     `yaml:"supersample"`
	Exposure      float64 `yaml:"exposure"`
	Output        string  `yaml:"output"`
}

type TelemetryConfig struct {
	SampleInterval time.Duration `yaml:"sample_interval"`
	CSV            string        `yaml:"csv"`
	Plot           string        `yaml:"plot"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DerivedConfig holds values computed from the loaded sections.
type DerivedConfig struct {
	Quantum field.Quantum
	Shape   field.Shape
	Seed    mesh.SeedKind
	Split   mesh.SplitKind
	Target  int // Vertex target of View.Detail.
	Level   zapcore.Level
}

// Load parses the embedded defaults and merges the file at path over them.
// An empty path loads only the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) computeDerived() error {
	o := c.Orbital
	c.Derived.Quantum = field.Quantum{
		Z: o.Z, N: o.N, L: o.L, M: o.M,
		Real: o.Real, Diff: o.Diff, Square: o.Square, Phase: o.Phase,
	}
	switch c.Orbital.Kind {
	case kindHydrogen, kindSolid:
	default:
		return fmt.Errorf("%w: orbital kind %q", ErrInvalid, c.Orbital.Kind)
	}
	so := c.Solid
	c.Derived.Shape = field.Shape{
		Kind: so.Shape, Radius: so.Radius, Height: so.Height, Round: so.Round,
		Blend: so.Blend, Smooth: so.Smooth, Wall: so.Wall, Skin: so.Skin,
	}
	if len(so.Size) != 3 {
		return fmt.Errorf("%w: solid size needs 3 values, got %d", ErrInvalid, len(so.Size))
	}
	c.Derived.Shape.Size = r3.Vec{X: so.Size[0], Y: so.Size[1], Z: so.Size[2]}
	seed, err := mesh.ParseSeedKind(c.Mesh.Seed)
	if err != nil {
		return fmt.Errorf("%w: mesh: %w", ErrInvalid, err)
	}
	c.Derived.Seed = seed
	split, err := mesh.ParseSplitKind(c.Mesh.Split)
	if err != nil {
		return fmt.Errorf("%w: mesh: %w", ErrInvalid, err)
	}
	c.Derived.Split = split
	c.Derived.Target = orbital.TargetVertices(c.View.Detail)
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: log: %w", ErrInvalid, err)
	}
	c.Derived.Level = lvl
	return nil
}

// Validate checks every section. Derived values must be computed.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	case c.Render.PullThreshold < 1:
		return fmt.Errorf("%w: pull threshold %d", ErrInvalid, c.Render.PullThreshold)
	case c.View.Detail < 0:
		return fmt.Errorf("%w: negative detail %d", ErrInvalid, c.View.Detail)
	case c.View.FovY <= 0 || c.View.FovY >= 180:
		return fmt.Errorf("%w: fovy %g", ErrInvalid, c.View.FovY)
	case c.Telemetry.SampleInterval <= 0:
		return fmt.Errorf("%w: telemetry sample interval %v", ErrInvalid, c.Telemetry.SampleInterval)
	}
	if c.Orbital.Kind == kindSolid {
		if _, err := field.NewShape(c.Derived.Shape); err != nil {
			return fmt.Errorf("%w: solid: %w", ErrInvalid, err)
		}
	} else if err := c.Derived.Quantum.Validate(); err != nil {
		return fmt.Errorf("%w: orbital: %w", ErrInvalid, err)
	}
	if err := c.MeshConfig().Validate(); err != nil {
		return fmt.Errorf("%w: mesh: %w", ErrInvalid, err)
	}
	return nil
}

// Field builds the configured field.
func (c *Config) Field() (orbital.Field, error) {
	if c.Orbital.Kind == kindSolid {
		f, err := field.NewShape(c.Derived.Shape)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := field.NewHydrogen(c.Derived.Quantum)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FieldName describes the configured field for logs and reports.
func (c *Config) FieldName() string {
	if c.Orbital.Kind == kindSolid {
		return c.Derived.Shape.String()
	}
	return c.Derived.Quantum.String()
}

// MeshConfig returns the subdivision engine configuration.
func (c *Config) MeshConfig() mesh.Config {
	return mesh.Config{
		Seed:            c.Derived.Seed,
		Split:           c.Derived.Split,
		SampleDivisions: c.Mesh.SampleDivisions,
		MaxDepth:        c.Mesh.MaxDepth,
	}
}

// NewLogger builds a zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.Derived.Level)
	return zc.Build()
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
