package main

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/store"
	"github.com/born-ml/sparse/internal/tensor"
)

func (a *app) newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the named tensor store",
		Long: `Manage the named tensor store.

The store location comes from the store section of the config file or
BORN_SPARSE_STORE_PATH.`,
	}
	cmd.AddCommand(a.newStoreSaveCmd(), a.newStoreLoadCmd(), a.newStoreListCmd(), a.newStoreRmCmd())
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(fn func(s *store.Store) error) (err error) {
	s, err := store.Open(a.cfg.StoreOptions(a.logger, nil))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func saveAs[T sparse.Numeric](ctx context.Context, s *store.Store, name string, t sparse.Tensor[float64]) (string, error) {
	c, err := convert[T](t)
	if err != nil {
		return "", err
	}
	return store.Save[T](ctx, s, name, c)
}

func saveTensor(ctx context.Context, s *store.Store, name string, t sparse.Tensor[float64], dtype tensor.DataType) (string, error) {
	switch dtype {
	case tensor.Float32:
		return saveAs[float32](ctx, s, name, t)
	case tensor.Float64:
		return store.Save(ctx, s, name, t)
	case tensor.Int32:
		return saveAs[int32](ctx, s, name, t)
	case tensor.Int64:
		return saveAs[int64](ctx, s, name, t)
	case tensor.Uint8:
		return saveAs[uint8](ctx, s, name, t)
	default:
		return "", fmt.Errorf("%w: %s", serialization.ErrUnsupportedDType, dtype)
	}
}

func (a *app) newStoreSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME FILE",
		Short: "Save a tensor file under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, h, err := readTensor(args[1])
			if err != nil {
				return err
			}
			dtype, _ := tensor.ParseDataType(h.DType)
			return a.withStore(func(s *store.Store) error {
				rev, err := saveTensor(cmd.Context(), s, args[0], t, dtype)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s (revision %s)\n", args[0], rev)
				return nil
			})
		},
	}
}

func (a *app) newStoreLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load NAME OUTPUT",
		Short: "Write the tensor stored under NAME to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				h, err := s.Stat(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				t, err := store.Load[float64](cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				dtype, _ := tensor.ParseDataType(h.DType)
				if err := a.writeTensor(args[1], t, dtype, h.Name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: shape %v, nnz %d\n", args[1], t.Shape(), t.NNZ())
				return nil
			})
		},
	}
}

func (a *app) newStoreListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List stored tensors",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return a.withStore(func(s *store.Store) error {
				names, err := s.List(cmd.Context(), prefix)
				if err != nil {
					return err
				}

				var data [][]string
				for _, name := range names {
					h, err := s.Stat(cmd.Context(), name)
					if err != nil {
						return err
					}
					data = append(data, []string{
						name,
						h.DType,
						tensor.Shape(h.Shape).String(),
						fmt.Sprint(h.NNZ),
						h.Metadata[store.RevisionKey],
					})
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"NAME", "DTYPE", "SHAPE", "NNZ", "REVISION"})
				table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
				table.SetAlignment(tablewriter.ALIGN_LEFT)
				table.SetHeaderLine(false)
				table.SetBorder(false)
				table.SetNoWhiteSpace(true)
				table.SetTablePadding("    ")
				table.AppendBulk(data)
				table.Render()
				return nil
			})
		},
	}
}

func (a *app) newStoreRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"delete"},
		Short:   "Remove stored tensors",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				for _, name := range args {
					if err := s.Delete(cmd.Context(), name); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
				}
				return nil
			})
		},
	}
}
