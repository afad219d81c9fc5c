package cli

import (
	"fmt"

	"github.com/soypat/orbital/mesh"
	"github.com/soypat/orbital/telemetry"
	"github.com/spf13/cobra"
)

type convergeOptions struct {
	detail int
	csv    string
	plot   string
}

// NewConvergeCommand creates the command recording refinement progress.
func NewConvergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &convergeOptions{}
	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Record refinement progress as CSV and a plot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConverge(cmd, rootOpts, opts)
		},
	}
	addDetailFlag(cmd, &opts.detail)
	cmd.Flags().StringVar(&opts.csv, "csv", "", "CSV output path (default from config)")
	cmd.Flags().StringVar(&opts.plot, "plot", "", "plot output path (default from config)")
	return cmd
}

func runConverge(cmd *cobra.Command, rootOpts *RootOptions, opts *convergeOptions) error {
	cfg := rootOpts.Config
	csvPath, plotPath := opts.csv, opts.plot
	if csvPath == "" {
		csvPath = cfg.Telemetry.CSV
	}
	if plotPath == "" {
		plotPath = cfg.Telemetry.Plot
	}
	f, err := cfg.Field()
	if err != nil {
		return err
	}
	e, err := mesh.New(f, f.Bounds(), cfg.MeshConfig())
	if err != nil {
		return err
	}
	defer e.Close()
	e.RunUntil(rootOpts.target(opts.detail))
	samples, err := telemetry.Record(cmd.Context(), e, cfg.Telemetry.SampleInterval)
	if err != nil {
		return err
	}
	if err := telemetry.SaveCSV(csvPath, samples); err != nil {
		return err
	}
	if err := telemetry.SavePlot(plotPath, samples); err != nil {
		return err
	}
	last := samples[len(samples)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "%d samples over %.1fms: %d vertices, %d splits, state %s\n",
		len(samples), last.ElapsedMs, last.Vertices, last.Splits, last.State)
	return nil
}
