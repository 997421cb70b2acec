package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inventory-sim/inventory-sim/sim/calibrate"
	"github.com/inventory-sim/inventory-sim/sim/dataset"
	"github.com/inventory-sim/inventory-sim/sim/policy"
)

var (
	curveDir     string
	curveName    string
	curveWorkers int
)

// --- inventory-sim curve ---

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Sweep a strategy's target level and write per-group efficiency curves",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		creator, err := policy.NewCreator(strategyName, cfg.SimConfig().Costs)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		materials, err := dataset.LoadMaterials(materialsPath, cfg.Simulation.MonthSizeDays)
		if err != nil {
			logrus.Fatalf("Failed to load materials: %v", err)
		}

		curveCfg := cfg.CurveConfig()
		if cmd.Flags().Changed("workers") {
			curveCfg.Workers = curveWorkers
		}
		logrus.Infof("sweeping %d target levels with %s", len(curveCfg.Targets()), strategyName)
		curves, err := calibrate.Sweep(cmd.Context(), creator, cfg.SimConfig(), materials, curveCfg)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}

		name := curveName
		if name == "" {
			name = strategyName
		}
		if err := dataset.WriteCurves(curveDir, name, curves); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	curveCmd.Flags().StringVar(&strategyName, "strategy", "normal-ss", "Policy strategy: "+policy.ValidCreatorNames())
	curveCmd.Flags().StringVar(&curveDir, "dir", "graphs", "Directory for the curve files")
	curveCmd.Flags().StringVar(&curveName, "name", "", "File name prefix (defaults to the strategy name)")
	curveCmd.Flags().IntVar(&curveWorkers, "workers", 0, "Concurrent simulations (0 means one per CPU)")
}
