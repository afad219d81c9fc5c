package cli

import (
	"fmt"
	"os"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/render"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	detail    int
	output    string
	threshold float64
}

// NewExportCommand creates the STL density shell export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the boundary of the high density tetrahedra as binary STL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, opts)
		},
	}
	addDetailFlag(cmd, &opts.detail)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "orbital.stl", "STL output path")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0.1, "density threshold as a fraction of the peak vertex density")
	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, opts *exportOptions) error {
	if opts.threshold <= 0 || opts.threshold > 1 {
		return fmt.Errorf("threshold %g outside (0,1]", opts.threshold)
	}
	_, s, err := rootOpts.refine(cmd.Context(), rootOpts.target(opts.detail))
	if err != nil {
		return err
	}
	var peak float64
	for _, v := range s.Vertices {
		peak = max(peak, orbital.Density(v.Value))
	}
	n, err := render.StreamSTL(opts.output, render.NewShellReader(s, opts.threshold*peak))
	if err != nil {
		return err
	}
	if n == 0 {
		_ = os.Remove(opts.output)
		return errNoMesh
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d triangles from %d tetrahedra\n", opts.output, n, len(s.Tetrahedra))
	return nil
}
