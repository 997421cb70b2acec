package policy

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/inventory-sim/inventory-sim/sim"
)

// empiricalTolerance absorbs rounding in the summed frequencies.
const empiricalTolerance = 1e-5

// Empirical uses the observed frequencies of lead-time demand: the sums of
// every ceil(L) consecutive periods in the history.
type Empirical struct {
	Form  Form
	Costs sim.CostConfig
}

func (e *Empirical) CreatePolicy(m sim.Material, target float64) sim.ReorderPolicy {
	samples := LeadTimeDemands(m)
	cdf := func(x float64) float64 { return stat.CDF(x, stat.Empirical, samples, nil) }
	return build(e.Form, m, cdf, target, empiricalTolerance, e.Costs)
}

// LeadTimeDemands returns the sorted rolling sums of ceil(L) consecutive
// periods. Sentinel entries count as zero demand. A history shorter than the
// lead time yields a single sample: its total demand.
func LeadTimeDemands(m sim.Material) []float64 {
	window := int(math.Ceil(m.LeadTime))
	if window <= 0 {
		return []float64{0}
	}
	demand := make([]float64, len(m.Demand))
	for i, d := range m.Demand {
		demand[i] = float64(max(d, 0))
	}
	if len(demand) < window {
		sum := 0.0
		for _, d := range demand {
			sum += d
		}
		return []float64{sum}
	}

	samples := make([]float64, 0, len(demand)-window+1)
	sum := 0.0
	for i, d := range demand {
		sum += d
		if i >= window {
			sum -= demand[i-window]
		}
		if i >= window-1 {
			samples = append(samples, sum)
		}
	}
	sort.Float64s(samples)
	return samples
}
