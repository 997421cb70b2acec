package policy

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inventory-sim/inventory-sim/sim"
)

// Poisson models lead-time demand as Poisson(mean*L).
type Poisson struct {
	Form  Form
	Costs sim.CostConfig
}

func (p *Poisson) CreatePolicy(m sim.Material, target float64) sim.ReorderPolicy {
	_, mu, _ := leadTimeMoments(m)
	return build(p.Form, m, poissonCDF(mu), target, 0, p.Costs)
}

func poissonCDF(lambda float64) func(float64) float64 {
	if lambda <= 0 {
		// no demand during the lead time
		return func(x float64) float64 {
			if x >= 0 {
				return 1
			}
			return 0
		}
	}
	return distuv.Poisson{Lambda: lambda}.CDF
}
