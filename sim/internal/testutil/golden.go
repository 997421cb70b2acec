// Package testutil provides shared test infrastructure for the inventory
// simulator. It holds the golden scenario types and assertion helpers used
// across sim/ and its sub-packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is a single-material scenario with hand-checked outcomes.
type GoldenTestCase struct {
	Name           string             `json:"name"`
	Policy         string             `json:"policy"` // "ss" or "rq"
	ReorderPoint   int                `json:"reorder_point"`
	MaxStock       int                `json:"max_stock"` // (s,S) only
	Quantity       int                `json:"quantity"`  // (R,Q) only
	LeadTime       float64            `json:"lead_time"`
	Price          float64            `json:"price"`
	CritH          int                `json:"crit_h"`
	CritM          int                `json:"crit_m"`
	CritL          int                `json:"crit_l"`
	Demand         []int              `json:"demand"`
	HoldingRate    float64            `json:"holding_rate"`
	FixedOrderCost float64            `json:"fixed_order_cost"`
	StockoutCosts  map[string]float64 `json:"stockout_costs"`
	StockoutRule   string             `json:"stockout_rule"`
	Metrics        GoldenMetrics      `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
type GoldenMetrics struct {
	// Exact match counters
	EventsProcessed int `json:"events_processed"`
	Cycles          int `json:"cycles"`
	Stockouts       int `json:"stockouts"`
	TotalDemand     int `json:"total_demand"`
	DeniedDemand    int `json:"denied_demand"`
	FinalLevel      int `json:"final_level"`
	FinalPosition   int `json:"final_position"`

	EndTime       float64 `json:"end_time"`
	CSL           float64 `json:"csl"`
	FillRate      float64 `json:"fill_rate"`
	HoldingCost   float64 `json:"holding_cost"`
	FixedCost     float64 `json:"fixed_cost"`
	MarginalCost  float64 `json:"marginal_cost"`
	BackorderCost float64 `json:"backorder_cost"`
}

// LoadGoldenDataset reads testdata/goldendataset.json at the repository root.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, self, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate testutil source file")
	root := filepath.Join(filepath.Dir(self), "..", "..", "..")
	data, err := os.ReadFile(filepath.Join(root, "testdata", "goldendataset.json"))
	require.NoError(t, err, "reading golden scenarios")

	var ds GoldenDataset
	require.NoError(t, json.Unmarshal(data, &ds), "decoding golden scenarios")
	return &ds
}

// AssertFloat64Equal reports an error when want and got differ by more than
// relTol relative to the larger magnitude. Two zeros always match.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	scale := math.Max(math.Abs(want), math.Abs(got))
	if scale == 0 {
		return
	}
	if rel := math.Abs(want-got) / scale; rel > relTol {
		t.Errorf("%s = %v, expected %v (relative error %.3g > %.3g)", name, got, want, rel, relTol)
	}
}

// Demand builds a demand history of n periods that is zero except at the
// given period:quantity pairs.
func Demand(n int, at map[int]int) []int {
	d := make([]int, n)
	for t, q := range at {
		d[t] = q
	}
	return d
}
