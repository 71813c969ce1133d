package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildWorkers int

var buildSitesCmd = &cobra.Command{
	Use:   "build-sites <country-id>",
	Short: "Build websites for every discovered SME in a country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		workers := buildWorkers
		if workers == 0 {
			workers = cfg.Discovery.BuildWorkers
		}

		result, err := e.Ctrl.BuildAll(cmd.Context(), args[0], workers, cfg.Discovery.ModelCallRate)
		if err != nil {
			return err
		}
		zap.L().Info("batch build complete",
			zap.Int("built", result.Built),
			zap.Int("failed", result.Failed),
		)
		return nil
	},
}

func init() {
	buildSitesCmd.Flags().IntVar(&buildWorkers, "workers", 0, "concurrent builds (default from config)")
	rootCmd.AddCommand(buildSitesCmd)
}
