package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

func (a *app) newCreateCmd() *cobra.Command {
	var (
		entries []string
		dtype   string
		name    string
	)
	cmd := &cobra.Command{
		Use:   "create SHAPE OUTPUT",
		Short: "Create a tensor file from coordinate=value entries",
		Example: `  bornsparse create 4,2,3 t.bcoo --entry 0,0,2=1 --entry 3,1,0=9
  bornsparse create 3 empty.bcoo --dtype int32`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := parseShape(args[0])
			if err != nil {
				return err
			}
			dt, err := parseDType(dtype)
			if err != nil {
				return err
			}

			values := make([]float64, 0, len(entries))
			coords := make([][]int, 0, len(entries))
			for _, e := range entries {
				c, v, err := parseEntry(e)
				if err != nil {
					return err
				}
				coords = append(coords, c)
				values = append(values, v)
			}

			t, err := sparse.NewCOO(values, coords, shape)
			if err != nil {
				return err
			}
			if err := a.writeTensor(args[1], t, dt, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: shape %v, nnz %d\n", args[1], t.Shape(), t.NNZ())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&entries, "entry", "e", nil, "entry as c0,c1,...=value (repeatable; later entries win)")
	cmd.Flags().StringVar(&dtype, "dtype", "float32", "element type: float32, float64, int32, int64, uint8")
	cmd.Flags().StringVar(&name, "name", "", "tensor name recorded in the header")
	return cmd
}

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show the header and statistics of a tensor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"FIELD", "VALUE"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)

			table.Append([]string{"name", h.Name})
			table.Append([]string{"dtype", h.DType})
			table.Append([]string{"shape", t.Shape().String()})
			table.Append([]string{"nnz", strconv.Itoa(t.NNZ())})
			table.Append([]string{"density", strconv.FormatFloat(t.Density(), 'g', 6, 64)})
			table.Append([]string{"sum", strconv.FormatFloat(sparse.Sum[float64](t), 'g', -1, 64)})
			table.Append([]string{"l2", strconv.FormatFloat(sparse.Norm[float64](t, 2), 'g', -1, 64)})
			table.Append([]string{"max", strconv.FormatFloat(sparse.Max[float64](t), 'g', -1, 64)})
			table.Append([]string{"half_precision", strconv.FormatBool(h.HasFlag(serialization.FlagHalfPrecision))})
			table.Append([]string{"created", h.CreatedAt.Format("2006-01-02 15:04:05")})
			for _, k := range slices.Sorted(maps.Keys(h.Metadata)) {
				table.Append([]string{"meta." + k, h.Metadata[k]})
			}
			table.Render()
			return nil
		},
	}
}

func (a *app) newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every stored entry in row-major order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := readTensor(args[0])
			if err != nil {
				return err
			}
			return sparse.Fprint[float64](cmd.OutOrStdout(), t)
		},
	}
}

func (a *app) newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "put FILE COORD VALUE",
		Short:   "Set one entry of a tensor file in place (0 removes it)",
		Example: `  bornsparse put t.bcoo 1,0,2 4.5`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}
			coord, err := parseInts(args[1])
			if err != nil {
				return err
			}
			v, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}
			if err := t.Put(v, coord...); err != nil {
				return err
			}

			dtype, _ := tensor.ParseDataType(h.DType)
			if err := a.writeTensor(args[0], t, dtype, h.Name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: nnz %d\n", args[0], t.NNZ())
			return nil
		},
	}
}

func (a *app) newViewCmd() *cobra.Command {
	var (
		output    string
		translate string
	)
	cmd := &cobra.Command{
		Use:   "view FILE SELECTORS",
		Short: "Select a view of a tensor file",
		Long: `Select a view with a comma-separated selector list:

  3        point (drops the axis)
  1:3      interval
  :        whole axis
  new      insert a length-1 axis
  {0,2}    explicit set of positions

Missing trailing selectors select whole axes.`,
		Example: `  bornsparse view t.bcoo "1:3, 1"
  bornsparse view t.bcoo "new, {0,3}" --translate 0,1,0,2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}
			idx, err := sparse.ParseIndices(args[1])
			if err != nil {
				return err
			}
			opts, err := a.cfg.Ravel.Options()
			if err != nil {
				return err
			}
			v, err := t.GetWith(opts.Parallel, idx...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if translate != "" {
				coord, err := parseInts(translate)
				if err != nil {
					return err
				}
				phys, err := v.TranslateToPhysical(coord)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%v -> %v\n", coord, phys)
				return nil
			}

			fmt.Fprintln(out, v)
			if err := sparse.Fprint[float64](out, v); err != nil {
				return err
			}
			if output != "" {
				dtype, _ := tensor.ParseDataType(h.DType)
				return a.writeTensor(output, v.Materialize(), dtype, h.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the selection to a new tensor file")
	cmd.Flags().StringVar(&translate, "translate", "", "print the physical coordinate of a view coordinate")
	return cmd
}
