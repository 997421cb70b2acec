package cmd

import (
	"math"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/calibrate"
	"github.com/inventory-sim/inventory-sim/sim/dataset"
	"github.com/inventory-sim/inventory-sim/sim/policy"
)

// undefinedGroupTarget is used for groups without demand, whose realized
// levels are undefined. Their brackets freeze on the first round.
const undefinedGroupTarget = 0.5

var strategyName string // policy.ValidCreators key

// --- inventory-sim calibrate ---

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Rebuild policies with a strategy, matching the current per-group service levels",
	Long: "Simulates the materials under their imported policies, takes the realized per-group CSL and " +
		"fill rate as targets, then searches per-group strategy targets by bisection until the rebuilt " +
		"policies reach the same fill rate, and the same CSL where it fell short.",
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

		out, err := harmonize(materials, cfg, creator)
		if err != nil {
			logrus.Fatalf("Calibration failed: %v", err)
		}
		logrus.Infof("calibration finished after %d runs (fill rate: %d iterations, CSL: %d iterations)",
			out.Runs, out.FillRate.Iterations, out.CSL.Iterations)

		if err := out.Result.WriteSummary(os.Stdout); err != nil {
			logrus.Fatalf("Failed to print summary: %v", err)
		}
		if err := publish(cmd.Context(), cfg, out.Result, out.Materials, strategyName); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// harmonize takes the realized combined-group service levels of the current
// policies as targets and calibrates creator against them.
func harmonize(materials []sim.Material, cfg Config, creator policy.Creator) (*calibrate.Outcome, error) {
	baseline, err := sim.Run(materials, cfg.SimConfig())
	if err != nil {
		return nil, err
	}
	targetCSL := targetsFrom(baseline.RealizedCSL(sim.DimensionCombined))
	targetFR := targetsFrom(baseline.RealizedFillRate(sim.DimensionCombined))
	for _, g := range sortedKeys(targetCSL) {
		logrus.Debugf("group %s: target CSL %.4f, target fill rate %.4f", g, targetCSL[g], targetFR[g])
	}

	c := calibrate.New(creator, cfg.SimConfig(), cfg.CalibrateConfig())
	return c.Harmonize(materials, targetCSL, targetFR)
}

// targetsFrom replaces undefined realized levels with undefinedGroupTarget.
func targetsFrom(realized map[string]float64) map[string]float64 {
	targets := make(map[string]float64, len(realized))
	for g, v := range realized {
		if math.IsNaN(v) {
			v = undefinedGroupTarget
		}
		targets[g] = v
	}
	return targets
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	calibrateCmd.Flags().StringVar(&strategyName, "strategy", "normal-ss", "Policy strategy: "+policy.ValidCreatorNames())
}
