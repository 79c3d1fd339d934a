package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

func (a *app) newRavelCmd() *cobra.Command {
	var (
		shapeFlag string
		mode      string
	)
	cmd := &cobra.Command{
		Use:   "ravel FILE OUTPUT",
		Short: "Flatten a tensor file into a rank-1 tensor",
		Long: `Flatten a tensor file into a rank-1 tensor in row-major order.

With --shape, coordinates are flattened against that shape instead of the
tensor's own. Components outside it are handled by --mode: error rejects
them, clip clamps them to the last position, wrap takes them modulo the
axis length.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}

			opts, err := a.cfg.Ravel.Options()
			if err != nil {
				return err
			}
			if mode != "" {
				if opts.Mode, err = sparse.ParseOverflowMode(mode); err != nil {
					return err
				}
			}

			shape := t.Shape()
			if shapeFlag != "" {
				if shape, err = parseShape(shapeFlag); err != nil {
					return err
				}
			}

			flat, err := sparse.RavelTo[float64](t, shape, opts)
			if err != nil {
				return err
			}
			a.logger.Debug("ravelled", "shape", shape.String(), "mode", opts.Mode.String(), "nnz_in", t.NNZ(), "nnz_out", flat.NNZ())

			dtype, _ := tensor.ParseDataType(h.DType)
			if err := a.writeTensor(args[1], flat, dtype, h.Name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: shape %v, nnz %d\n", args[1], flat.Shape(), flat.NNZ())
			return nil
		},
	}
	cmd.Flags().StringVar(&shapeFlag, "shape", "", "shape to flatten against (default: the tensor's shape)")
	cmd.Flags().StringVar(&mode, "mode", "", "out-of-range handling: error, clip or wrap (default from config)")
	return cmd
}

func (a *app) newUnravelCmd() *cobra.Command {
	var shapeFlag string
	cmd := &cobra.Command{
		Use:   "unravel FILE OUTPUT",
		Short: "Expand a rank-1 tensor file into --shape",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}
			shape, err := parseShape(shapeFlag)
			if err != nil {
				return err
			}
			opts, err := a.cfg.Ravel.Options()
			if err != nil {
				return err
			}

			out, err := sparse.UnravelWith[float64](t, shape, opts.Parallel)
			if err != nil {
				return err
			}

			dtype, _ := tensor.ParseDataType(h.DType)
			if err := a.writeTensor(args[1], out, dtype, h.Name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: shape %v, nnz %d\n", args[1], out.Shape(), out.NNZ())
			return nil
		},
	}
	cmd.Flags().StringVar(&shapeFlag, "shape", "", "target shape, e.g. 4,2,3")
	_ = cmd.MarkFlagRequired("shape")
	return cmd
}
