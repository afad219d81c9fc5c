package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/soypat/orbital/camera"
	"github.com/soypat/orbital/render"
	"github.com/soypat/orbital/render/softgpu"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type renderOptions struct {
	detail  int
	output  string
	timeout time.Duration
}

// NewRenderCommand creates the headless render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames headlessly until refinement converges and save a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rootOpts, opts)
		},
	}
	addDetailFlag(cmd, &opts.detail)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PNG output path (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "give up after this long")
	return cmd
}

func runRender(cmd *cobra.Command, rootOpts *RootOptions, opts *renderOptions) error {
	cfg := rootOpts.Config
	f, err := cfg.Field()
	if err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = cfg.Render.Output
	}
	detail := opts.detail
	if detail < 0 {
		detail = cfg.View.Detail
	}

	backend := softgpu.New(softgpu.Options{
		Supersample: cfg.Render.Supersample,
		Exposure:    cfg.Render.Exposure,
	})
	orch, err := render.NewOrchestrator(backend, render.MeshEngineFactory(cfg.MeshConfig()), render.OrchestratorConfig{
		PullThreshold: cfg.Render.PullThreshold,
		FovY:          cfg.View.FovY,
	})
	if err != nil {
		return err
	}
	defer orch.Close()

	cam := camera.NewOrbit(cfg.View.Distance)
	// Tilt so that the z axis does not project onto a point.
	cam.Rotate(0.15, 0.2)
	in := render.FrameInput{
		Field:      f,
		Detail:     detail,
		Camera:     cam,
		Brightness: cfg.View.Brightness,
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	for !orch.Converged() {
		if err := orch.Frame(in); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("render did not converge: %w", ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
	if err := backend.SavePNG(output); err != nil {
		return err
	}
	st := orch.Stats()
	rootOpts.Logger.Debug("render stats",
		zap.Int("frames", st.Frames),
		zap.Int("pulls", st.Pulls),
		zap.Int("redraws", st.FullRedraws),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s, %d vertices, %d tetrahedra, %d frames\n",
		output, cfg.FieldName(), st.Vertices, st.Tetrahedra, st.Frames)
	return nil
}
