package main

import (
	"fmt"
	"math"
	"time"

	"github.com/fogleman/fauxgl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/orbital"
	"github.com/soypat/orbital/camera"
	"github.com/soypat/orbital/field"
	"github.com/soypat/orbital/internal/cli"
	"github.com/soypat/orbital/render"
	"github.com/soypat/orbital/render/glgpu"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newViewCommand(rootOpts *cli.RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open an interactive window",
		Long: `Open an interactive window showing the configured orbital.

Keys: up/down detail, +/- brightness, n/l/m/z raise a quantum number
(shift lowers it), r real, d diff, s square, p phase, F12 screenshot, esc quit.
Drag to orbit, shift-drag to spin, scroll to zoom.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts)
		},
	}
}

// viewer is the interactive scene state mutated by window callbacks.
type viewer struct {
	log        *zap.Logger
	q          field.Quantum
	f          orbital.Field
	label      string
	solid      bool // quantum number keys are ignored for solids.
	detail     int
	brightness float64
	cam        *camera.Orbit

	dragging bool
	lastX    float64
	lastY    float64
	shot     bool
}

func runView(rootOpts *cli.RootOptions) error {
	cfg := rootOpts.Config
	window, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   cfg.Window.Title,
		Version: [2]int{3, 3},
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
	})
	if err != nil {
		return fmt.Errorf("starting GLFW: %w", err)
	}
	defer terminate()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	}

	backend, err := glgpu.New(glgpu.Options{})
	if err != nil {
		return err
	}
	defer backend.Delete()
	orch, err := render.NewOrchestrator(backend, render.MeshEngineFactory(cfg.MeshConfig()), render.OrchestratorConfig{
		PullThreshold: cfg.Render.PullThreshold,
		FovY:          cfg.View.FovY,
	})
	if err != nil {
		return err
	}
	defer orch.Close()

	v := &viewer{
		log:        rootOpts.Logger,
		q:          cfg.Derived.Quantum,
		detail:     cfg.View.Detail,
		brightness: cfg.View.Brightness,
		cam:        camera.NewOrbit(cfg.View.Distance),
	}
	if cfg.Orbital.Kind == "solid" {
		v.solid, v.label = true, cfg.FieldName()
		if v.f, err = cfg.Field(); err != nil {
			return err
		}
	} else if err := v.setQuantum(v.q); err != nil {
		return err
	}
	window.SetKeyCallback(v.onKey)
	window.SetMouseButtonCallback(v.onMouseButton)
	window.SetCursorPosCallback(v.onCursor)
	window.SetScrollCallback(v.onScroll)

	lastTitle := time.Now()
	for !window.ShouldClose() {
		w, h := window.GetFramebufferSize()
		if w > 0 && h > 0 {
			err = orch.Frame(render.FrameInput{
				Field:      v.f,
				Detail:     v.detail,
				Camera:     v.cam,
				Brightness: v.brightness,
				Width:      w,
				Height:     h,
			})
			if err != nil {
				return err
			}
			if v.shot {
				v.shot = false
				v.screenshot(backend, w, h)
			}
		}
		if time.Since(lastTitle) > 250*time.Millisecond {
			st := orch.Stats()
			window.SetTitle(fmt.Sprintf("%s  %s  detail %d  %d vertices  %d tetrahedra",
				cfg.Window.Title, v.label, v.detail, st.Vertices, st.Tetrahedra))
			lastTitle = time.Now()
		}
		window.SwapBuffers()
		if orch.Converged() && !orch.NeedsFullRedraw() {
			glfw.WaitEventsTimeout(0.1)
		} else {
			glfw.PollEvents()
		}
	}
	return nil
}

func (v *viewer) setQuantum(q field.Quantum) error {
	q = q.Clamp()
	f, err := field.NewHydrogen(q)
	if err != nil {
		return err
	}
	v.q, v.f = q, f
	v.label = fmt.Sprintf("%s E=%.3feV", q, q.Energy())
	v.log.Info("orbital selected", zap.Stringer("quantum", q), zap.Float64("energy_ev", q.Energy()))
	return nil
}

func (v *viewer) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	step := 1
	if mods&glfw.ModShift != 0 {
		step = -1
	}
	q := v.q
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyUp:
		v.detail++
	case glfw.KeyDown:
		v.detail = max(0, v.detail-1)
	case glfw.KeyEqual, glfw.KeyKPAdd:
		v.brightness += 0.5
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		v.brightness -= 0.5
	case glfw.KeyN:
		q.N += step
	case glfw.KeyL:
		q.L += step
	case glfw.KeyM:
		q.M += step
	case glfw.KeyZ:
		q.Z += step
	case glfw.KeyR:
		q.Real = !q.Real
	case glfw.KeyD:
		q.Diff = !q.Diff
	case glfw.KeyS:
		q.Square = !q.Square
	case glfw.KeyP:
		q.Phase = !q.Phase
	case glfw.KeyF12:
		v.shot = true
	}
	if q != v.q && !v.solid {
		if err := v.setQuantum(q); err != nil {
			v.log.Warn("quantum numbers rejected", zap.Error(err))
		}
	}
}

func (v *viewer) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	v.dragging = action == glfw.Press
	v.lastX, v.lastY = w.GetCursorPos()
}

func (v *viewer) onCursor(w *glfw.Window, x, y float64) {
	if !v.dragging {
		return
	}
	_, h := w.GetSize()
	scale := 1 / math.Max(1, float64(h))
	dx, dy := (x-v.lastX)*scale, (y-v.lastY)*scale
	v.lastX, v.lastY = x, y
	if w.GetKey(glfw.KeyLeftShift) == glfw.Press {
		v.cam.Spin(dx)
		return
	}
	v.cam.Rotate(dx, dy)
}

func (v *viewer) onScroll(w *glfw.Window, xoff, yoff float64) {
	v.cam.Zoom(-yoff / 4)
}

func (v *viewer) screenshot(b *glgpu.Backend, width, height int) {
	name := fmt.Sprintf("orbital-%s.png", time.Now().Format("20060102-150405"))
	if err := fauxgl.SavePNG(name, b.ReadImage(width, height)); err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", name))
}
