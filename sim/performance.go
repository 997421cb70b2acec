package sim

import (
	"math"

	"github.com/shopspring/decimal"
)

// Costs groups the cost accumulators kept per material and per group.
type Costs struct {
	Holding  decimal.Decimal
	Fixed    decimal.Decimal
	Marginal decimal.Decimal
}

// Total is fixed plus holding cost. Marginal cost is the purchase value of
// the stock and is reported separately.
func (c Costs) Total() decimal.Decimal {
	return c.Fixed.Add(c.Holding)
}

// TotalWithMarginal is fixed plus holding plus marginal cost.
func (c Costs) TotalWithMarginal() decimal.Decimal {
	return c.Total().Add(c.Marginal)
}

// PerformanceTracker accumulates service and cost counters for one run.
// Materials are addressed by their index in the simulator's material slice.
// Cost rollups are kept for every grouping dimension.
type PerformanceTracker struct {
	materials []Material

	// CSL
	cycles    []int
	stockouts []int

	// fill rate
	totalDemand  []int
	deniedDemand []int

	// costs
	materialCosts []Costs
	groupCosts    map[Dimension]map[string]*Costs
	totalCosts    Costs
	backorder     map[Criticality]decimal.Decimal
}

// NewPerformanceTracker starts every material with one open cycle and all
// other counters at zero.
func NewPerformanceTracker(materials []Material) *PerformanceTracker {
	n := len(materials)
	pt := &PerformanceTracker{
		materials:     materials,
		cycles:        make([]int, n),
		stockouts:     make([]int, n),
		totalDemand:   make([]int, n),
		deniedDemand:  make([]int, n),
		materialCosts: make([]Costs, n),
		groupCosts:    make(map[Dimension]map[string]*Costs, len(Dimensions)),
		backorder:     make(map[Criticality]decimal.Decimal, len(Criticalities)),
	}
	for i := range pt.cycles {
		pt.cycles[i] = 1
	}
	for _, dim := range Dimensions {
		groups := make(map[string]*Costs)
		for _, m := range materials {
			if _, ok := groups[m.Group(dim)]; !ok {
				groups[m.Group(dim)] = &Costs{}
			}
		}
		pt.groupCosts[dim] = groups
	}
	for _, tier := range Criticalities {
		pt.backorder[tier] = decimal.Zero
	}
	return pt
}

func (pt *PerformanceTracker) StartCycle(i int) { pt.cycles[i]++ }

func (pt *PerformanceTracker) Stockout(i int) { pt.stockouts[i]++ }

func (pt *PerformanceTracker) AddDemand(i, quantity int) { pt.totalDemand[i] += quantity }

func (pt *PerformanceTracker) DenyDemand(i, quantity int) { pt.deniedDemand[i] += quantity }

func (pt *PerformanceTracker) AddHoldingCost(i int, c decimal.Decimal) {
	pt.addCost(i, func(acc *Costs) { acc.Holding = acc.Holding.Add(c) })
}

func (pt *PerformanceTracker) AddFixedCost(i int, c decimal.Decimal) {
	pt.addCost(i, func(acc *Costs) { acc.Fixed = acc.Fixed.Add(c) })
}

func (pt *PerformanceTracker) AddMarginalCost(i int, c decimal.Decimal) {
	pt.addCost(i, func(acc *Costs) { acc.Marginal = acc.Marginal.Add(c) })
}

// addCost applies the same update to the material, its four groups and the total.
func (pt *PerformanceTracker) addCost(i int, apply func(*Costs)) {
	apply(&pt.materialCosts[i])
	apply(&pt.totalCosts)
	m := pt.materials[i]
	for _, dim := range Dimensions {
		apply(pt.groupCosts[dim][m.Group(dim)])
	}
}

// AddBackorderCost charges c to the material's criticality tier only.
func (pt *PerformanceTracker) AddBackorderCost(i int, c decimal.Decimal) {
	tier := pt.materials[i].Criticality()
	pt.backorder[tier] = pt.backorder[tier].Add(c)
}

// CSL is 1 - stockouts/cycles. NaN when the material saw no positive demand.
func (pt *PerformanceTracker) CSL(i int) float64 {
	if pt.totalDemand[i] == 0 {
		return math.NaN()
	}
	return 1 - float64(pt.stockouts[i])/float64(pt.cycles[i])
}

// FillRate is 1 - denied/total demand. NaN when the material saw no positive demand.
func (pt *PerformanceTracker) FillRate(i int) float64 {
	if pt.totalDemand[i] == 0 {
		return math.NaN()
	}
	return 1 - float64(pt.deniedDemand[i])/float64(pt.totalDemand[i])
}

func (pt *PerformanceTracker) Cycles(i int) int       { return pt.cycles[i] }
func (pt *PerformanceTracker) Stockouts(i int) int    { return pt.stockouts[i] }
func (pt *PerformanceTracker) TotalDemand(i int) int  { return pt.totalDemand[i] }
func (pt *PerformanceTracker) DeniedDemand(i int) int { return pt.deniedDemand[i] }
func (pt *PerformanceTracker) MaterialCosts(i int) Costs {
	return pt.materialCosts[i]
}

// GroupCosts returns the cost rollup for one group, zero if unknown.
func (pt *PerformanceTracker) GroupCosts(dim Dimension, group string) Costs {
	if c, ok := pt.groupCosts[dim][group]; ok {
		return *c
	}
	return Costs{}
}

func (pt *PerformanceTracker) TotalCosts() Costs { return pt.totalCosts }

// BackorderCosts returns a copy of the per-tier stockout cost totals.
func (pt *PerformanceTracker) BackorderCosts() map[Criticality]decimal.Decimal {
	out := make(map[Criticality]decimal.Decimal, len(pt.backorder))
	for k, v := range pt.backorder {
		out[k] = v
	}
	return out
}
