package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soypat/orbital/field"
	"github.com/soypat/orbital/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Derived.Quantum.N)
	assert.Equal(t, mesh.SeedKuhn, cfg.Derived.Seed)
	assert.Equal(t, 2101, cfg.Derived.Target)
	assert.Equal(t, zapcore.InfoLevel, cfg.Derived.Level)
	assert.Equal(t, 5*time.Millisecond, cfg.Telemetry.SampleInterval)

	f, err := cfg.Field()
	require.NoError(t, err)
	hyd, ok := f.(*field.Hydrogen)
	require.True(t, ok, "default field is %T", f)
	assert.Equal(t, cfg.Derived.Quantum, hyd.Quantum)
	assert.Equal(t, cfg.Derived.Quantum.String(), cfg.FieldName())
	mc := cfg.MeshConfig()
	assert.Equal(t, 11, mc.SampleDivisions)
	assert.NoError(t, mc.Validate())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbital.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverride(t *testing.T) {
	path := writeFile(t, `
orbital:
  n: 2
  l: 1
  m: 0
mesh:
  seed: bcc
  split: bisect
view:
  detail: 0
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Derived.Quantum.N)
	assert.Equal(t, 1, cfg.Derived.Quantum.Z, "unset keys keep defaults")
	assert.Equal(t, mesh.SeedBCC, cfg.Derived.Seed)
	assert.Equal(t, mesh.SplitBisect, cfg.MeshConfig().Split)
	assert.Equal(t, 307, cfg.Derived.Target)
	assert.Equal(t, zapcore.DebugLevel, cfg.Derived.Level)
	assert.Equal(t, 1024, cfg.Window.Width)
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"quantum": "orbital:\n  n: 1\n  l: 2\n",
		"seed":    "mesh:\n  seed: octree\n",
		"split":   "mesh:\n  split: halve\n",
		"level":   "log:\n  level: loud\n",
		"window":  "window:\n  width: 0\n",
		"fovy":    "view:\n  fovy: 190\n",
		"divs":    "mesh:\n  sample_divisions: 2\n",
		"kind":    "orbital:\n  kind: lattice\n",
		"shape":   "orbital:\n  kind: solid\nsolid:\n  shape: torus\n",
		"size":    "solid:\n  size: [1, 2]\n",
		"skin":    "orbital:\n  kind: solid\nsolid:\n  skin: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = Load(writeFile(t, "window: [1, 2"))
	assert.Error(t, err)
}

func TestLoadSolid(t *testing.T) {
	path := writeFile(t, `
orbital:
  kind: solid
  n: 1
  l: 3
solid:
  shape: cored
  size: [4, 4, 4]
  radius: 2.5
  wall: 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err, "quantum numbers are not checked for solids")
	assert.Equal(t, r3.Vec{X: 4, Y: 4, Z: 4}, cfg.Derived.Shape.Size)
	assert.Equal(t, "poly", cfg.Derived.Shape.Blend, "unset keys keep defaults")
	f, err := cfg.Field()
	require.NoError(t, err)
	solid, ok := f.(*field.Solid)
	require.True(t, ok, "solid field is %T", f)
	g, err := cfg.Field()
	require.NoError(t, err)
	assert.True(t, solid.Equal(g), "equal shapes share a mesh")
	assert.Contains(t, cfg.FieldName(), "cored")
	// Carved center and wall hollowed box both leave the origin empty.
	assert.Less(t, real(f.Evaluate(r3.Vec{})), 0.01)
}

func TestWriteYAML(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Orbital.N = 4
	cfg.Telemetry.SampleInterval = 20 * time.Millisecond
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Orbital.N)
	assert.Equal(t, 20*time.Millisecond, got.Telemetry.SampleInterval)
}

func TestNewLogger(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	l, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
