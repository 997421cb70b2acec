package policy

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inventory-sim/inventory-sim/sim"
)

// Normal models lead-time demand as N(mean*L, std*sqrt(L)).
type Normal struct {
	Form  Form
	Costs sim.CostConfig
}

func (n *Normal) CreatePolicy(m sim.Material, target float64) sim.ReorderPolicy {
	_, mu, sigma := leadTimeMoments(m)
	if n.Form == FixedQuantity {
		return sim.NewRQPolicy(normalReorderPoint(mu, sigma, clampTarget(target)), quantity(m, n.Costs))
	}
	return build(BaseStock, m, normalCDF(mu, sigma), target, 0, n.Costs)
}

// normalReorderPoint is the closed form ceil(mu + sigma*z_target), at least 1.
func normalReorderPoint(mu, sigma, target float64) int {
	var r float64
	if sigma == 0 {
		r = math.Ceil(mu)
	} else {
		r = math.Ceil(mu + sigma*distuv.UnitNormal.Quantile(target))
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 1 {
		return 1
	}
	return int(r)
}

func normalCDF(mu, sigma float64) func(float64) float64 {
	if sigma == 0 {
		// all mass at mu
		return func(x float64) float64 {
			if x >= mu {
				return 1
			}
			return 0
		}
	}
	return distuv.Normal{Mu: mu, Sigma: sigma}.CDF
}
