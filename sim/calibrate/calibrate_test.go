package calibrate

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-sim/inventory-sim/sim"
)

// stockCreator stocks round(10*target) units, so a single demand of 10
// is served with fill rate S/10.
type stockCreator struct{}

func (stockCreator) CreatePolicy(_ sim.Material, target float64) sim.ReorderPolicy {
	s := int(math.Round(target * 10))
	return sim.NewSSPolicy(0, s)
}

func singleDemandMaterials() []sim.Material {
	return []sim.Material{{
		ID: "m", Price: 1, LeadTime: 1, Demand: []int{10, 0, 0, 0},
		PriceClass: "A", DemandClass: "X",
	}}
}

func TestBracket_Step_HalvesWidthUntilEpsilon(t *testing.T) {
	// GIVEN a bracket whose realized level equals the trial and an unreachable exact target
	cfg := Config{Epsilon: 1e-5, MaxIterations: 300, Neighborhood: 0}
	b := newBracket(0.5)

	// WHEN it is stepped until frozen
	steps := 0
	for !b.Frozen && steps < 100 {
		before := b.Width()
		b.step(0.3, b.Trial, cfg)
		steps++
		// THEN every step halves the width
		assert.InDelta(t, before/2, b.Width(), 1e-15)
	}

	// AND it stops once the width drops below epsilon: 0.5^17 < 1e-5 <= 0.5^16
	assert.True(t, b.Frozen)
	assert.Equal(t, 17, steps)
	assert.Equal(t, 17, b.Iterations)
	assert.InDelta(t, 0.3, b.Trial, 1e-5)
}

func TestBracket_Step_FreezesInNeighborhoodOrOnNaN(t *testing.T) {
	cfg := DefaultConfig()

	near := newBracket(0.5)
	assert.False(t, near.step(0.9, 0.885, cfg))
	assert.True(t, near.Frozen)
	assert.Equal(t, 0.5, near.Trial)

	undefined := newBracket(0.5)
	assert.False(t, undefined.step(0.9, math.NaN(), cfg))
	assert.True(t, undefined.Frozen)
}

func TestBracket_Step_MovesTowardTarget(t *testing.T) {
	cfg := DefaultConfig()

	low := newBracket(0.4)
	require.True(t, low.step(0.9, 0.5, cfg))
	assert.Equal(t, 0.4, low.Lower)
	assert.InDelta(t, 0.7, low.Trial, 1e-12)

	high := newBracket(0.4)
	require.True(t, high.step(0.1, 0.5, cfg))
	assert.Equal(t, 0.4, high.Upper)
	assert.InDelta(t, 0.2, high.Trial, 1e-12)
}

func TestCalibrator_Harmonize_ReachesFillRateThenFreezesOverTargetCSL(t *testing.T) {
	// GIVEN a group whose fill rate is round(10*trial)/10, fill rate target 0.6 and CSL target 0.3
	c := New(stockCreator{}, sim.DefaultSimConfig(), DefaultConfig())

	// WHEN harmonized
	out, err := c.Harmonize(singleDemandMaterials(), map[string]float64{"AX4": 0.3}, map[string]float64{"AX4": 0.6})
	require.NoError(t, err)

	// THEN the fill rate phase walks 0.3 -> 0.65 -> 0.475 -> 0.5625 and lands on fill rate 0.6
	assert.True(t, out.FillRate.Converged())
	assert.InDelta(t, 0.5625, out.Targets["AX4"], 1e-12)
	g, ok := out.Result.Group(sim.DimensionCombined, "AX4")
	require.True(t, ok)
	assert.InDelta(t, 0.6, g.FillRate, 1e-12)

	// AND the CSL phase freezes at once because realized CSL 0.5 is above 0.3
	assert.True(t, out.CSL.Converged())
	assert.Equal(t, 0, out.CSL.Brackets["AX4"].Iterations)
	assert.Equal(t, 4, out.Runs)
	assert.Equal(t, 6, out.Materials[0].Policy.MaxStock())
}

func twoGroupMaterials() []sim.Material {
	return []sim.Material{
		{ID: "a", Price: 1, LeadTime: 1, Demand: []int{10, 0, 0, 0}, PriceClass: "A", DemandClass: "X"},
		{ID: "b", Price: 1, LeadTime: 1, Demand: []int{10, 0, 0, 0}, PriceClass: "B", DemandClass: "X"},
	}
}

func TestCalibrator_Harmonize_CSLPhaseBisectsFromFullBracket(t *testing.T) {
	// GIVEN two groups with stock round(10*trial) against a single demand of 10:
	// AX4 stocks out below 10 units (CSL 0.5) and wants CSL 0.97 and fill rate 0.9,
	// BX4 wants CSL 0.2 and fill rate 0.3
	c := New(stockCreator{}, sim.DefaultSimConfig(), DefaultConfig())
	targetCSL := map[string]float64{"AX4": 0.97, "BX4": 0.2}
	targetFR := map[string]float64{"AX4": 0.9, "BX4": 0.3}

	// WHEN harmonized
	out, err := c.Harmonize(twoGroupMaterials(), targetCSL, targetFR)
	require.NoError(t, err)

	// THEN the fill rate phase walks AX4 0.97 -> 0.485 -> 0.7275 -> 0.84875 -> 0.909375
	// and BX4 0.2 -> 0.6 -> 0.4 -> 0.3 in the same four runs
	require.True(t, out.FillRate.Converged())
	assert.Equal(t, 4, out.FillRate.Iterations)
	phase1A := out.FillRate.Brackets["AX4"]
	assert.InDelta(t, 0.84875, phase1A.Lower, 1e-12)
	assert.InDelta(t, 0.97, phase1A.Upper, 1e-12)
	assert.InDelta(t, 0.909375, phase1A.Trial, 1e-12)

	// AND the CSL phase restarts AX4 from [0, 1] at its fill rate trial, since
	// 9 units still stock out, and one step to 10 units clears CSL 0.97
	cslA := out.CSL.Brackets["AX4"]
	assert.True(t, cslA.Frozen)
	assert.Equal(t, 1, cslA.Iterations)
	assert.Equal(t, phase1A.Trial, cslA.Lower)
	assert.Equal(t, 1.0, cslA.Upper)
	assert.InDelta(t, 0.9546875, cslA.Trial, 1e-12)
	assert.Equal(t, 1, out.CSL.Iterations)
	assert.InDelta(t, 0.9546875, out.Targets["AX4"], 1e-12)

	// AND BX4 is already above its CSL target, so its CSL bracket never moves
	cslB := out.CSL.Brackets["BX4"]
	assert.True(t, cslB.Frozen)
	assert.Equal(t, 0, cslB.Iterations)
	assert.Equal(t, 0.0, cslB.Lower)
	assert.Equal(t, 1.0, cslB.Upper)

	// AND BX4 ends exactly where it ends when calibrated alone
	solo, err := c.Harmonize(twoGroupMaterials()[1:], map[string]float64{"BX4": 0.2}, map[string]float64{"BX4": 0.3})
	require.NoError(t, err)
	assert.Equal(t, solo.FillRate.Brackets["BX4"], out.FillRate.Brackets["BX4"])
	assert.Equal(t, solo.CSL.Brackets["BX4"], cslB)
	assert.Equal(t, solo.Targets["BX4"], out.Targets["BX4"])
	assert.Equal(t, 3, solo.FillRate.Iterations)

	// AND the final run stocks 10 units of a and 3 of b
	assert.Equal(t, 6, out.Runs)
	assert.Equal(t, 10, out.Materials[0].Policy.MaxStock())
	assert.Equal(t, 3, out.Materials[1].Policy.MaxStock())
	g, ok := out.Result.Group(sim.DimensionCombined, "AX4")
	require.True(t, ok)
	assert.InDelta(t, 1.0, g.CSL, 1e-12)
}

func TestCalibrator_Harmonize_IterationCap_ReturnsLastRun(t *testing.T) {
	// GIVEN a fill rate target no trial can hit exactly and a zero neighborhood
	cfg := Config{Epsilon: 1e-5, MaxIterations: 2, Neighborhood: 0}
	c := New(stockCreator{}, sim.DefaultSimConfig(), cfg)

	// WHEN harmonized
	out, err := c.Harmonize(singleDemandMaterials(), map[string]float64{"AX4": 0.3}, map[string]float64{"AX4": 0.55})

	// THEN no error is raised and the phase reports the open group
	require.NoError(t, err)
	assert.False(t, out.FillRate.Converged())
	assert.Equal(t, 2, out.FillRate.Iterations)
	assert.Greater(t, out.FillRate.Brackets["AX4"].Width(), cfg.Epsilon)
	require.NotNil(t, out.Result)
}

func TestCalibrator_Harmonize_MissingFillRateTarget_ReturnsError(t *testing.T) {
	c := New(stockCreator{}, sim.DefaultSimConfig(), DefaultConfig())

	_, err := c.Harmonize(singleDemandMaterials(), map[string]float64{"AX4": 0.3}, map[string]float64{})

	assert.Error(t, err)
}

func TestCurveConfig_Targets(t *testing.T) {
	targets := DefaultCurveConfig().Targets()

	require.Len(t, targets, 200)
	assert.InDelta(t, 0.005, targets[0], 1e-12)
	assert.InDelta(t, 1.0, targets[199], 1e-9)
	assert.Empty(t, CurveConfig{Step: 0}.Targets())
}

func TestSweep_OneOrderedPointPerTarget(t *testing.T) {
	// GIVEN a sweep over 0.25, 0.5, 0.75 and 1.0 on two workers
	cfg := CurveConfig{Step: 0.25, Start: 0, Stop: 0.75, Workers: 2}

	// WHEN swept
	curves, err := Sweep(context.Background(), stockCreator{}, sim.DefaultSimConfig(), singleDemandMaterials(), cfg)
	require.NoError(t, err)

	// THEN the group's curve is ordered by target
	curve := curves["AX4"]
	require.Len(t, curve, 4)
	for i, want := range []float64{0.25, 0.5, 0.75, 1.0} {
		assert.InDelta(t, want, curve[i].Target, 1e-12)
		assert.True(t, curve[i].TotalCost.IsPositive(), "every run pays at least one order")
	}
	// AND only full stock avoids the stockout
	assert.Equal(t, 0.5, curve[0].RealizedCSL)
	assert.Equal(t, 1.0, curve[3].RealizedCSL)
}

func TestSweep_CancelledContext_ReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, stockCreator{}, sim.DefaultSimConfig(), singleDemandMaterials(), DefaultCurveConfig())

	assert.ErrorIs(t, err, context.Canceled)
}
