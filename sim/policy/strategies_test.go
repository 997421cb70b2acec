package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inventory-sim/inventory-sim/sim"
)

func TestEOQ(t *testing.T) {
	tests := []struct {
		name    string
		d, a, h float64
		want    int
	}{
		// sqrt(1440) = 37.95; 38 is cheaper than 37
		{name: "rounds to cheaper neighbour", d: 10, a: 36, h: 0.5, want: 38},
		{name: "exact square", d: 2, a: 1, h: 1, want: 2},
		{name: "below one", d: 1, a: 1, h: 10, want: 1},
		{name: "no demand", d: 0, a: 36, h: 1, want: 1},
		{name: "free holding", d: 3.2, a: 36, h: 0, want: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EOQ(tc.d, tc.a, tc.h))
		})
	}
}

func TestNormal_DeterministicDemand(t *testing.T) {
	// GIVEN constant demand of 2 per period and a lead time of 1
	m := material([]int{2, 2, 2, 2}, 1)

	// WHEN base-stock and fixed-quantity policies are built
	ss := (&Normal{Form: BaseStock}).CreatePolicy(m, 0.95)
	rq := (&Normal{Form: FixedQuantity, Costs: sim.DefaultCostConfig()}).CreatePolicy(m, 0.95)

	// THEN base stock covers the lead-time demand with one unit spare
	assert.Equal(t, 3, ss.ReorderPoint())
	assert.Equal(t, 3, ss.MaxStock())
	// AND the reorder point equals the lead-time demand
	assert.Equal(t, 2, rq.ReorderPoint())
}

func TestNormal_ReorderPoint_ClosedForm(t *testing.T) {
	// GIVEN demand with mean 2 and sample std sqrt(4/3), lead time 4: mu = 8, sigma = 2.309
	m := material([]int{1, 3, 1, 3}, 4)

	// WHEN the 95% (R,Q) policy is built
	p := (&Normal{Form: FixedQuantity, Costs: sim.DefaultCostConfig()}).CreatePolicy(m, 0.95)

	// THEN R = ceil(8 + 2.309*1.645) = ceil(11.80)
	assert.Equal(t, 12, p.ReorderPoint())
	rq, ok := p.(*sim.RQPolicy)
	if assert.True(t, ok) {
		// h = 0.25/12, d = 2, A = 36: sqrt(6912) = 83.14
		assert.Equal(t, 83, rq.Quantity())
	}
}

func TestNormal_TargetOne_Terminates(t *testing.T) {
	m := material([]int{1, 3, 1, 3}, 4)

	p := (&Normal{Form: BaseStock}).CreatePolicy(m, 1.0)

	assert.Greater(t, p.MaxStock(), 8)
	assert.Less(t, p.MaxStock(), 30)
}

func TestPoisson_SearchesCumulativeProbability(t *testing.T) {
	// GIVEN lead-time demand ~ Poisson(2): CDF(3) = 0.857, CDF(4) = 0.947
	m := material([]int{1, 1, 1, 1}, 2)

	tests := []struct {
		form   Form
		target float64
		want   int
	}{
		{BaseStock, 0.9, 5},
		{FixedQuantity, 0.9, 4},
		{BaseStock, 0.5, 3},
		{FixedQuantity, 0.5, 2},
	}
	for _, tc := range tests {
		p := (&Poisson{Form: tc.form, Costs: sim.DefaultCostConfig()}).CreatePolicy(m, tc.target)
		assert.Equal(t, tc.want, p.ReorderPoint(), "%s at %.2f", tc.form, tc.target)
	}
}

func TestPoisson_NoDemand_MinimalStock(t *testing.T) {
	m := material([]int{0, 0, -1}, 3)

	p := (&Poisson{Form: BaseStock}).CreatePolicy(m, 0.99)

	assert.Equal(t, 1, p.ReorderPoint())
	assert.Equal(t, 1, p.MaxStock())
}

func TestEmpirical_UsesRollingLeadTimeSums(t *testing.T) {
	// GIVEN two-period sums 2,3,4,3,2: P(<=2) = 0.4, P(<=3) = 0.8, P(<=4) = 1
	m := material([]int{0, 2, 1, 3, 0, 2}, 2)

	tests := []struct {
		form   Form
		target float64
		want   int
	}{
		{FixedQuantity, 0.8, 3},
		{BaseStock, 0.8, 4},
		{FixedQuantity, 0.3, 2},
		{BaseStock, 0.3, 3},
		{FixedQuantity, 1.0, 4},
	}
	for _, tc := range tests {
		p := (&Empirical{Form: tc.form, Costs: sim.DefaultCostConfig()}).CreatePolicy(m, tc.target)
		assert.Equal(t, tc.want, p.ReorderPoint(), "%s at %.2f", tc.form, tc.target)
	}
}

func TestLeadTimeDemands(t *testing.T) {
	tests := []struct {
		name     string
		demand   []int
		leadTime float64
		want     []float64
	}{
		{name: "sentinel counts as zero", demand: []int{-1, 4, 2}, leadTime: 1.5, want: []float64{4, 6}},
		{name: "zero lead time", demand: []int{5, 5}, leadTime: 0, want: []float64{0}},
		{name: "history shorter than lead time", demand: []int{1, 2}, leadTime: 3, want: []float64{3}},
		{name: "sorted", demand: []int{5, 0, 1}, leadTime: 1, want: []float64{0, 1, 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LeadTimeDemands(material(tc.demand, tc.leadTime)))
		})
	}
}
