package sim

import "fmt"

// CostConfig groups the cost parameters charged during a run.
type CostConfig struct {
	HoldingRate    float64                 // fraction of unit price per unit per period (default 0.25/12)
	FixedOrderCost float64                 // charged once per order (default 36)
	StockoutCosts  map[Criticality]float64 // charged per event while short, by tier
}

// DefaultCostConfig returns the standard cost parameters: 25% yearly holding
// rate on monthly periods, 36 per order, and stockout costs of 30*24 hours
// at 1000/200/50/0 per hour for tiers H/M/L/none.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		HoldingRate:    0.25 / 12,
		FixedOrderCost: 36.0,
		StockoutCosts: map[Criticality]float64{
			CriticalityHigh:   30 * 24 * 1000.0,
			CriticalityMedium: 30 * 24 * 200.0,
			CriticalityLow:    30 * 24 * 50.0,
			CriticalityNone:   0.0,
		},
	}
}

// StockoutRule selects the predicate that marks a consumption as the start
// of a stockout in the current replenishment cycle.
type StockoutRule string

const (
	// StockoutRuleLevel: demand > level && level > 0.
	StockoutRuleLevel StockoutRule = "level"
	// StockoutRulePosition: demand >= position.
	StockoutRulePosition StockoutRule = "position"
)

// IsValidStockoutRule returns true if the given string names a known rule.
// Empty defaults to StockoutRuleLevel.
func IsValidStockoutRule(rule string) bool {
	switch StockoutRule(rule) {
	case StockoutRuleLevel, StockoutRulePosition, "":
		return true
	}
	return false
}

// SimConfig groups everything a Simulator needs besides the materials.
type SimConfig struct {
	Costs        CostConfig
	StockoutRule StockoutRule
}

// DefaultSimConfig returns DefaultCostConfig with the level stockout rule.
func DefaultSimConfig() SimConfig {
	return SimConfig{Costs: DefaultCostConfig(), StockoutRule: StockoutRuleLevel}
}

func (c SimConfig) validate() error {
	if !IsValidStockoutRule(string(c.StockoutRule)) {
		return fmt.Errorf("unknown stockout rule %q; valid: %s, %s", c.StockoutRule, StockoutRuleLevel, StockoutRulePosition)
	}
	if c.Costs.HoldingRate < 0 || c.Costs.FixedOrderCost < 0 {
		return fmt.Errorf("costs must be non-negative, got holding rate %v and fixed order cost %v",
			c.Costs.HoldingRate, c.Costs.FixedOrderCost)
	}
	for tier, cost := range c.Costs.StockoutCosts {
		if cost < 0 {
			return fmt.Errorf("stockout cost for tier %s must be non-negative, got %v", tier, cost)
		}
	}
	return nil
}
