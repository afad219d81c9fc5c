package cli

import (
	"fmt"
	"strconv"

	"github.com/soypat/orbital"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

type probeOptions struct {
	detail int
}

// NewProbeCommand creates the command sampling the mesh vertex nearest to a point.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe <x> <y> <z>",
		Short: "Print the refined mesh vertex nearest to a point and the field there",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var xyz [3]float64
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("coordinate %d: %w", i, err)
				}
				xyz[i] = v
			}
			return runProbe(cmd, rootOpts, opts, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		},
	}
	addDetailFlag(cmd, &opts.detail)
	return cmd
}

func runProbe(cmd *cobra.Command, rootOpts *RootOptions, opts *probeOptions, p r3.Vec) error {
	f, s, err := rootOpts.refine(cmd.Context(), rootOpts.target(opts.detail))
	if err != nil {
		return err
	}
	idx, ok := s.Nearest(p)
	if !ok {
		return errNoMesh
	}
	v := s.Vertices[idx]
	w := cmd.OutOrStdout()
	exact := f.Evaluate(p)
	fmt.Fprintf(w, "point     (%g, %g, %g) density %.6g phase %.4f\n", p.X, p.Y, p.Z, orbital.Density(exact), orbital.Phase(exact))
	fmt.Fprintf(w, "nearest   #%d (%g, %g, %g) distance %.4g\n", idx, v.Pos.X, v.Pos.Y, v.Pos.Z, r3.Norm(r3.Sub(v.Pos, p)))
	fmt.Fprintf(w, "sampled   density %.6g phase %.4f\n", orbital.Density(v.Value), orbital.Phase(v.Value))
	return nil
}
