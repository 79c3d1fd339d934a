package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/sparse/internal/loader"
	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

func (a *app) newImportCmd() *cobra.Command {
	var (
		threshold float64
		dtypeFlag string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "import FILE.safetensors TENSOR OUTPUT",
		Short: "Sparsify a dense tensor from a SafeTensors file",
		Long: `Sparsify a dense tensor from a SafeTensors file.

Elements whose magnitude is at most --threshold are dropped. F16 and BF16
tensors load as float32.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loader.NewSafeTensorsReader(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			raw, err := r.LoadTensor(args[1])
			if err != nil {
				return err
			}

			dtype := raw.DType()
			if dtypeFlag != "" {
				if dtype, err = parseDType(dtypeFlag); err != nil {
					return err
				}
			}
			if name == "" && serialization.ValidateTensorName(args[1]) == nil {
				name = args[1]
			}

			t, err := loader.Sparsify[float64](raw, threshold)
			if err != nil {
				return err
			}
			a.logger.Debug("sparsified", "tensor", args[1], "elements", raw.NumElements(), "nnz", t.NNZ())

			if err := a.writeTensor(args[2], t, dtype, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: shape %v, nnz %d, density %.4g\n", args[2], t.Shape(), t.NNZ(), t.Density())
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "drop elements with magnitude at or below this value")
	cmd.Flags().StringVar(&dtypeFlag, "dtype", "", "stored dtype (default: the source dtype)")
	cmd.Flags().StringVar(&name, "name", "", "tensor name in the output (default: TENSOR when it is a valid name)")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "export FILE OUTPUT.safetensors",
		Short: "Densify a tensor file into a SafeTensors file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[0])
			if err != nil {
				return err
			}
			if key == "" {
				key = h.Name
			}
			if key == "" {
				key = "tensor"
			}

			meta := map[string]string{"source": "bornsparse " + version}
			dtype, _ := tensor.ParseDataType(h.DType)
			switch dtype {
			case tensor.Float32:
				err = exportAs[float32](args[1], key, t, meta)
			case tensor.Float64:
				err = loader.ExportFile(args[1], map[string]sparse.Tensor[float64]{key: t}, meta)
			case tensor.Int32:
				err = exportAs[int32](args[1], key, t, meta)
			case tensor.Int64:
				err = exportAs[int64](args[1], key, t, meta)
			default:
				err = exportAs[uint8](args[1], key, t, meta)
			}
			if err != nil {
				return err
			}
			a.logger.Debug("tensor exported", "path", args[1], "key", key, "dtype", h.DType)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s %s %v\n", args[1], key, h.DType, t.Shape())
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "tensor key in the output (default: the stored name, or \"tensor\")")
	return cmd
}

func exportAs[T sparse.Numeric](path, key string, t sparse.Tensor[float64], meta map[string]string) error {
	c, err := convert[T](t)
	if err != nil {
		return err
	}
	return loader.ExportFile(path, map[string]sparse.Tensor[T]{key: c}, meta)
}
