package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/sparse/internal/config"
)

// app carries state shared by all commands once the config is loaded.
type app struct {
	cfgPath string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "bornsparse",
		Short:        "Create, inspect and transform sparse COO tensors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newVersionCmd(),
		a.newCreateCmd(),
		a.newInfoCmd(),
		a.newDumpCmd(),
		a.newPutCmd(),
		a.newViewCmd(),
		a.newRavelCmd(),
		a.newUnravelCmd(),
		a.newStoreCmd(),
		a.newImportCmd(),
		a.newExportCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bornsparse %s\n", version)
		},
	}
}
