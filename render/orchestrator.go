// Package render draws a progressively refined field mesh. The Orchestrator
// pulls snapshots from a background mesh engine once per frame and only
// reruns the expensive render passes when something visible changed.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/orbital"
	"github.com/soypat/orbital/mesh"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNoField  = errors.New("frame has no field")
	ErrNoCamera = errors.New("frame has no camera")
)

// Subdivider is the part of mesh.Engine the Orchestrator consumes.
type Subdivider interface {
	RunUntil(target int)
	Kill()
	IsRunning() bool
	IsFinished() bool
	NumVertices() int
	Vertices() []mesh.Vertex
	TetrahedronVertexIndices() [][4]int
}

var _ Subdivider = (*mesh.Engine)(nil)

// EngineFactory creates a fresh engine for a field.
type EngineFactory func(f orbital.Field) (Subdivider, error)

// MeshEngineFactory returns a factory that meshes each field over its bounds.
func MeshEngineFactory(cfg mesh.Config) EngineFactory {
	return func(f orbital.Field) (Subdivider, error) {
		e, err := mesh.New(f, f.Bounds(), cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

const (
	DefaultPullThreshold = 100
	DefaultFovY          = 45
	nearPlane            = 1.0
)

type OrchestratorConfig struct {
	// PullThreshold is how many new vertices a running engine must produce
	// before the next frame copies its mesh.
	PullThreshold int
	// FovY is the vertical field of view in degrees.
	FovY float64
}

// FrameInput is the scene state of one frame.
type FrameInput struct {
	Field  orbital.Field
	Detail int
	Camera Camera
	// Brightness is the exponent of the 1.618 based brightness control.
	Brightness    float64
	Width, Height int
}

// Stats counts Orchestrator activity.
type Stats struct {
	Frames      int
	Engines     int
	Pulls       int
	FullRedraws int
	Composites  int
	// Vertices and Tetrahedra of the last pulled mesh.
	Vertices   int
	Tetrahedra int
}

// Orchestrator sequences the per frame work between an engine and a Backend.
// It is not safe for concurrent use.
type Orchestrator struct {
	backend   Backend
	newEngine EngineFactory
	cfg       OrchestratorConfig

	engine      Subdivider
	field       orbital.Field
	detail      int
	consumed    int
	finalPulled bool

	mvp            fauxgl.Matrix
	brightness     float64
	width, height  int
	needFullRedraw bool
	stats          Stats
}

func NewOrchestrator(b Backend, newEngine EngineFactory, cfg OrchestratorConfig) (*Orchestrator, error) {
	if b == nil || newEngine == nil {
		return nil, errors.New("nil backend or engine factory")
	}
	if cfg.PullThreshold == 0 {
		cfg.PullThreshold = DefaultPullThreshold
	}
	if cfg.FovY == 0 {
		cfg.FovY = DefaultFovY
	}
	if cfg.PullThreshold < 0 || cfg.FovY <= 0 || cfg.FovY >= 180 {
		return nil, fmt.Errorf("invalid orchestrator config %+v", cfg)
	}
	return &Orchestrator{
		backend:        b,
		newEngine:      newEngine,
		cfg:            cfg,
		needFullRedraw: true,
	}, nil
}

// Frame performs one frame: it replaces the engine if the field or detail
// level changed, pulls the mesh when enough progress was made, reruns the
// opaque and volume passes if anything they depend on changed, and always composites.
func (o *Orchestrator) Frame(in FrameInput) error {
	switch {
	case in.Field == nil:
		return ErrNoField
	case in.Camera == nil:
		return ErrNoCamera
	}
	log := Logger()
	justStarted := false
	if o.engine == nil || !o.field.Equal(in.Field) || o.detail != in.Detail {
		if err := o.swapEngine(in.Field, in.Detail); err != nil {
			return err
		}
		justStarted = true
	}

	finished := o.engine.IsFinished()
	progressed := o.engine.IsRunning() && o.engine.NumVertices()-o.consumed >= o.cfg.PullThreshold
	if justStarted || (finished && !o.finalPulled) || progressed {
		// Indices first: vertices only grow so every index stays valid.
		s := mesh.Snapshot{Tetrahedra: o.engine.TetrahedronVertexIndices()}
		s.Vertices = o.engine.Vertices()
		if err := o.backend.SetMesh(s); err != nil {
			return fmt.Errorf("set mesh: %w", err)
		}
		o.finalPulled = finished
		o.consumed = len(s.Vertices)
		o.needFullRedraw = true
		o.stats.Pulls++
		o.stats.Vertices = len(s.Vertices)
		o.stats.Tetrahedra = len(s.Tetrahedra)
		log.Debug("mesh pulled",
			zap.Int("vertices", len(s.Vertices)),
			zap.Int("tetrahedra", len(s.Tetrahedra)),
			zap.Bool("final", finished),
		)
	}

	aspect := 1.0
	if in.Height > 0 && in.Width > 0 {
		aspect = float64(in.Width) / float64(in.Height)
	}
	far := in.Camera.Distance() + math.Max(1, orbital.Radius(in.Field))*math.Sqrt(3)
	view := in.Camera.ViewMatrix()
	mvp := fauxgl.Perspective(o.cfg.FovY, aspect, nearPlane, far).Mul(view)
	eye := view.Inverse().MulPosition(fauxgl.Vector{})
	if mvp != o.mvp {
		o.needFullRedraw = true
	}
	o.mvp = mvp

	brightness := math.Pow(1.618, in.Brightness)
	if orbital.IsSquared(in.Field) {
		brightness *= brightness
	}
	if brightness != o.brightness {
		o.needFullRedraw = true
	}
	o.brightness = brightness

	if in.Width != o.width || in.Height != o.height {
		o.needFullRedraw = true
		if err := o.backend.Resize(in.Width, in.Height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}
	o.width, o.height = in.Width, in.Height

	if o.needFullRedraw {
		v := View{MVP: mvp, Eye: r3.Vec{X: eye.X, Y: eye.Y, Z: eye.Z}, Near: nearPlane, Far: far}
		if err := o.backend.DrawOpaque(v); err != nil {
			return fmt.Errorf("opaque pass: %w", err)
		}
		if err := o.backend.DrawVolume(v, brightness); err != nil {
			return fmt.Errorf("volume pass: %w", err)
		}
		o.needFullRedraw = false
		o.stats.FullRedraws++
	}
	if err := o.backend.Composite(in.Width, in.Height); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	o.stats.Composites++
	o.stats.Frames++
	return nil
}

func (o *Orchestrator) swapEngine(f orbital.Field, detail int) error {
	if o.engine != nil {
		o.engine.Kill()
		o.engine = nil
	}
	e, err := o.newEngine(f)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	target := orbital.TargetVertices(detail)
	o.engine = e
	o.field = f
	o.detail = detail
	o.consumed = 0
	o.finalPulled = false
	o.stats.Engines++
	e.RunUntil(target)
	Logger().Debug("engine started", zap.Int("detail", detail), zap.Int("target", target))
	return nil
}

// Converged reports whether the final mesh of a finished engine has been pulled.
func (o *Orchestrator) Converged() bool {
	return o.engine != nil && o.finalPulled
}

// NeedsFullRedraw reports whether the next frame reruns the draw passes
// regardless of camera, brightness and viewport.
func (o *Orchestrator) NeedsFullRedraw() bool { return o.needFullRedraw }

func (o *Orchestrator) Stats() Stats { return o.stats }

// Close kills the live engine. The Orchestrator may be reused afterwards.
func (o *Orchestrator) Close() error {
	if o.engine != nil {
		o.engine.Kill()
		o.engine = nil
		o.field = nil
	}
	return nil
}
