// Package cli implements the orbital command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/config"
	"github.com/soypat/orbital/mesh"
	"github.com/soypat/orbital/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errNoMesh = errors.New("no tetrahedra produced")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// Set before any subcommand runs.
	Config *config.Config
	Logger *zap.Logger
}

// Subcommand builds a command sharing the root options.
type Subcommand func(opts *RootOptions) *cobra.Command

// NewRootCommand creates the root command with the headless subcommands
// plus any extra ones, such as the interactive viewer.
func NewRootCommand(extra ...Subcommand) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "orbital",
		Short: "Progressive tetrahedral rendering of hydrogen orbitals",
		Long: `orbital refines a tetrahedral mesh of an electron probability density
in the background and renders it while refinement is still running.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config merged over the defaults")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewConvergeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewProbeCommand(opts))
	for _, sub := range extra {
		cmd.AddCommand(sub(opts))
	}
	return cmd
}

func (opts *RootOptions) setup() error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Verbose {
		cfg.Derived.Level = zapcore.DebugLevel
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	mesh.SetLogger(logger.Named("mesh"))
	render.SetLogger(logger.Named("render"))
	opts.Config = cfg
	opts.Logger = logger
	return nil
}

// addDetailFlag registers a --detail flag overriding view.detail when set.
func addDetailFlag(cmd *cobra.Command, detail *int) {
	cmd.Flags().IntVarP(detail, "detail", "d", -1, "detail level (default from config)")
}

func (opts *RootOptions) target(detail int) int {
	if detail < 0 {
		return opts.Config.Derived.Target
	}
	return orbital.TargetVertices(detail)
}

// refine runs a new engine for the configured field until it reaches
// target vertices or stops refining.
func (opts *RootOptions) refine(ctx context.Context, target int) (orbital.Field, mesh.Snapshot, error) {
	f, err := opts.Config.Field()
	if err != nil {
		return nil, mesh.Snapshot{}, err
	}
	e, err := mesh.New(f, f.Bounds(), opts.Config.MeshConfig())
	if err != nil {
		return nil, mesh.Snapshot{}, err
	}
	defer e.Close()
	e.RunUntil(target)
	if err := e.Wait(ctx); err != nil {
		return nil, mesh.Snapshot{}, err
	}
	opts.Logger.Info("refinement done",
		zap.String("field", opts.Config.FieldName()),
		zap.Int("vertices", e.NumVertices()),
		zap.Stringer("state", e.State()),
	)
	return f, e.Snapshot(), nil
}
