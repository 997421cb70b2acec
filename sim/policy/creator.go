// Package policy builds reorder policies from a material's demand history
// and a target service level.
//
// Every strategy models lead-time demand (LTD) with some distribution and
// searches for the smallest stock parameter whose cumulative probability
// reaches the target. Base-stock forms return an (s,S) policy with s = S;
// fixed-quantity forms return an (R,Q) policy whose Q is the economic order
// quantity.
package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inventory-sim/inventory-sim/sim"
)

// Creator turns a material and a target service level in [0,1] into a policy.
type Creator interface {
	CreatePolicy(m sim.Material, target float64) sim.ReorderPolicy
}

// Form selects which policy variant a strategy produces.
type Form int

const (
	// BaseStock yields (s,S) with s = S: the smallest S >= 1 with P(LTD <= S-1) >= target.
	BaseStock Form = iota
	// FixedQuantity yields (R,Q): the smallest R >= 1 with P(LTD <= R) >= target, Q = EOQ.
	FixedQuantity
)

func (f Form) String() string {
	if f == FixedQuantity {
		return "rq"
	}
	return "ss"
}

// ValidCreators is the set of recognized strategy names.
var ValidCreators = map[string]bool{
	"normal-ss":    true,
	"normal-rq":    true,
	"poisson-ss":   true,
	"poisson-rq":   true,
	"empirical-ss": true,
	"empirical-rq": true,
}

// IsValidCreator returns true if name is a recognized strategy.
func IsValidCreator(name string) bool {
	return ValidCreators[name]
}

// ValidCreatorNames returns the strategy names sorted and comma-separated.
func ValidCreatorNames() string {
	names := make([]string, 0, len(ValidCreators))
	for n := range ValidCreators {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// NewCreator returns the strategy registered under name. costs supplies the
// fixed order cost and holding rate used for the EOQ of fixed-quantity forms.
func NewCreator(name string, costs sim.CostConfig) (Creator, error) {
	if !IsValidCreator(name) {
		return nil, fmt.Errorf("unknown policy strategy %q; valid: %s", name, ValidCreatorNames())
	}
	dist, shape, _ := strings.Cut(name, "-")
	form := BaseStock
	if shape == "rq" {
		form = FixedQuantity
	}
	switch dist {
	case "normal":
		return &Normal{Form: form, Costs: costs}, nil
	case "poisson":
		return &Poisson{Form: form, Costs: costs}, nil
	case "empirical":
		return &Empirical{Form: form, Costs: costs}, nil
	default:
		panic(fmt.Sprintf("unhandled policy strategy %q", name))
	}
}

// CreatePolicies returns a copy of materials where each material carries a
// fresh policy built for the target of its combined class.
func CreatePolicies(c Creator, materials []sim.Material, targets map[string]float64) ([]sim.Material, error) {
	out := make([]sim.Material, len(materials))
	for i, m := range materials {
		target, ok := targets[m.CombinedClass()]
		if !ok {
			return nil, fmt.Errorf("no target for group %q of material %s", m.CombinedClass(), m.ID)
		}
		out[i] = m.WithPolicy(c.CreatePolicy(m, target))
	}
	return out, nil
}

// maxTarget is the highest reachable target; 1.0 itself would need infinite stock.
const maxTarget = 1 - 1e-4

func clampTarget(target float64) float64 {
	if math.IsNaN(target) || target < 0 {
		return 0
	}
	return math.Min(target, maxTarget)
}

// maxSearch bounds the stock search for pathological distributions.
const maxSearch = 1 << 24

// smallestReaching returns the smallest k >= 1 with cdf(k) >= target - tol.
func smallestReaching(cdf func(k int) float64, target, tol float64) int {
	k := 1
	for cdf(k)+tol < target {
		if k >= maxSearch {
			logrus.Warnf("stock search stopped at %d without reaching target %.4f", k, target)
			break
		}
		k++
	}
	return k
}

// leadTimeMoments returns mean demand per period and the mean and standard
// deviation of lead-time demand, ignoring sentinel entries.
func leadTimeMoments(m sim.Material) (mean, mu, sigma float64) {
	observed := m.ObservedDemand()
	mean = sim.CalculateMean(observed)
	std := 0.0
	if len(observed) > 1 {
		std = sim.CalculateStdDev(observed)
	}
	return mean, mean * m.LeadTime, std * math.Sqrt(m.LeadTime)
}

func build(form Form, m sim.Material, cdf func(float64) float64, target, tol float64, costs sim.CostConfig) sim.ReorderPolicy {
	target = clampTarget(target)
	if form == BaseStock {
		s := smallestReaching(func(k int) float64 { return cdf(float64(k - 1)) }, target, tol)
		return sim.NewSSPolicy(s, s)
	}
	r := smallestReaching(func(k int) float64 { return cdf(float64(k)) }, target, tol)
	return sim.NewRQPolicy(r, quantity(m, costs))
}

func quantity(m sim.Material, costs sim.CostConfig) int {
	mean, _, _ := leadTimeMoments(m)
	return EOQ(mean, costs.FixedOrderCost, costs.HoldingRate*m.Price)
}
