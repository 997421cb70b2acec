package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Groups_SortedAndComplete(t *testing.T) {
	// GIVEN materials spread over several classes
	materials := []Material{
		{ID: "1", Price: 1, Demand: []int{1, 0}, PriceClass: "C", DemandClass: "X", Policy: NewSSPolicy(0, 3)},
		{ID: "2", Price: 1, Demand: []int{1, 1}, PriceClass: "A", DemandClass: "Y", CritM: 1, Policy: NewSSPolicy(0, 3)},
		{ID: "3", Price: 1, Demand: []int{0, 2}, PriceClass: "B", DemandClass: "X", Policy: NewSSPolicy(0, 3)},
	}

	// WHEN the simulation runs
	result, err := Run(materials, DefaultSimConfig())
	require.NoError(t, err)

	// THEN every dimension lists its groups in key order
	var keys []string
	for _, g := range result.Groups[DimensionPrice] {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"A", "B", "C"}, keys)
	assert.Len(t, result.Groups[DimensionDemand], 2)
	assert.Len(t, result.Groups[DimensionCriticality], 2)

	// AND combined groups carry their key components
	g, ok := result.Group(DimensionCombined, "AY2")
	require.True(t, ok)
	assert.Equal(t, "A", g.PriceClass)
	assert.Equal(t, "Y", g.DemandClass)
	assert.Equal(t, CriticalityMedium, g.Criticality)

	assert.Equal(t, map[string]float64{"X": 1, "Y": 1}, result.RealizedFillRate(DimensionDemand))
	assert.Equal(t, map[string]float64{"X": 1, "Y": 1}, result.RealizedCSL(DimensionDemand))
}

func TestResult_WriteSummary_ContainsSections(t *testing.T) {
	// GIVEN a finished run
	m := Material{ID: "m", Price: 2, LeadTime: 1, CritH: 1, Demand: []int{3, 0, 0, 9, 0}, PriceClass: "A", DemandClass: "X", Policy: NewSSPolicy(2, 10)}
	result, err := Run([]Material{m}, DefaultSimConfig())
	require.NoError(t, err)

	// WHEN the summary is written
	var buf bytes.Buffer
	require.NoError(t, result.WriteSummary(&buf))
	out := buf.String()

	// THEN it has the service, cost and group sections
	for _, want := range []string{
		"SIMULATION SUMMARY",
		"fill rate",
		"cycle service level",
		"total fixed costs:\t\t36.00",
		"total backorder costs (H):\t720000.00",
		"total backorder costs (Z):\t0.00",
		"GROUP",
		"Combined\tCSL",
	} {
		assert.True(t, strings.Contains(out, want), "summary missing %q", want)
	}
}
