package calibrate

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/policy"
)

// CurveConfig controls an efficiency-curve sweep. Targets are
// Start+Step, Start+2*Step, ... up to the first value past Stop.
type CurveConfig struct {
	Step    float64
	Start   float64
	Stop    float64
	Workers int // concurrent simulations; <= 0 means runtime.NumCPU()
}

// DefaultCurveConfig sweeps 0.005 to 1.0 in steps of 0.005.
func DefaultCurveConfig() CurveConfig {
	return CurveConfig{Step: 0.005, Start: 0, Stop: 0.995}
}

// Targets lists the target levels visited by the sweep.
func (c CurveConfig) Targets() []float64 {
	if c.Step <= 0 || c.Stop < c.Start {
		return nil
	}
	n := int(math.Floor((c.Stop-c.Start)/c.Step+1e-9)) + 1
	targets := make([]float64, n)
	for k := range targets {
		targets[k] = c.Start + float64(k+1)*c.Step
	}
	return targets
}

// CurvePoint is one sample of a group's efficiency curve.
type CurvePoint struct {
	Target      float64
	RealizedCSL float64
	TotalCost   decimal.Decimal // fixed + holding
}

// Sweep simulates materials once per target level, with every group's
// policies built at that level, and returns each combined group's curve
// ordered by target. Runs are independent and execute on a bounded pool.
func Sweep(ctx context.Context, creator policy.Creator, simCfg sim.SimConfig, materials []sim.Material, cfg CurveConfig) (map[string][]CurvePoint, error) {
	targets := cfg.Targets()
	if len(targets) == 0 {
		return nil, fmt.Errorf("empty sweep: step %v, start %v, stop %v", cfg.Step, cfg.Start, cfg.Stop)
	}
	groups := make(map[string]bool)
	for _, m := range materials {
		groups[m.CombinedClass()] = true
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// each run owns its slot; no locking needed
	results := make([]*sim.Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			levels := make(map[string]float64, len(groups))
			for grp := range groups {
				levels[grp] = target
			}
			withPolicies, err := policy.CreatePolicies(creator, materials, levels)
			if err != nil {
				return err
			}
			r, err := sim.Run(withPolicies, simCfg)
			if err != nil {
				return fmt.Errorf("sweep at target %.3f: %w", target, err)
			}
			results[i] = r
			logrus.Debugf("sweep target %.3f done", target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	curves := make(map[string][]CurvePoint, len(groups))
	for i, r := range results {
		for _, gm := range r.Groups[sim.DimensionCombined] {
			curves[gm.Key] = append(curves[gm.Key], CurvePoint{
				Target:      targets[i],
				RealizedCSL: gm.CSL,
				TotalCost:   gm.Costs.Total(),
			})
		}
	}
	return curves, nil
}
