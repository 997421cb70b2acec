package sim

// Criticality is the severity tier of a material, derived from how many
// components of each criticality class depend on it.
type Criticality string

const (
	CriticalityHigh   Criticality = "1"
	CriticalityMedium Criticality = "2"
	CriticalityLow    Criticality = "3"
	CriticalityNone   Criticality = "4"
)

// Criticalities lists all tiers from most to least severe.
var Criticalities = []Criticality{CriticalityHigh, CriticalityMedium, CriticalityLow, CriticalityNone}

// Material is a spare part with its historical demand and the reorder policy
// that governs it. Materials are values: replacing the policy yields a new
// Material with the same identity and history.
type Material struct {
	ID          string
	Price       float64 // price per unit, > 0
	LeadTime    float64 // in periods, may be fractional
	CritH       int     // number of highly critical components using the material
	CritM       int
	CritL       int
	Demand      []int // per-period demand; negative entries mean "no observation"
	DemandClass string
	PriceClass  string
	Policy      ReorderPolicy
}

// WithPolicy returns a copy of m governed by p. The demand history is shared.
func (m Material) WithPolicy(p ReorderPolicy) Material {
	m.Policy = p
	return m
}

// Criticality returns the highest tier with a non-zero component count.
func (m Material) Criticality() Criticality {
	switch {
	case m.CritH > 0:
		return CriticalityHigh
	case m.CritM > 0:
		return CriticalityMedium
	case m.CritL > 0:
		return CriticalityLow
	default:
		return CriticalityNone
	}
}

// CombinedClass is the grouping key price class + demand class + criticality.
func (m Material) CombinedClass() string {
	return m.PriceClass + m.DemandClass + string(m.Criticality())
}

// Group returns the material's group key along the given dimension.
func (m Material) Group(d Dimension) string {
	switch d {
	case DimensionPrice:
		return m.PriceClass
	case DimensionDemand:
		return m.DemandClass
	case DimensionCriticality:
		return string(m.Criticality())
	default:
		return m.CombinedClass()
	}
}

// Horizon is the number of periods covered by the demand history.
func (m Material) Horizon() int {
	return len(m.Demand)
}

// TotalPositiveDemand sums the strictly positive demand entries. It is the
// weight of the material in group-level service averages.
func (m Material) TotalPositiveDemand() int {
	sum := 0
	for _, d := range m.Demand {
		if d > 0 {
			sum += d
		}
	}
	return sum
}

// ObservedDemand returns the demand entries that are actual observations,
// dropping the negative sentinels.
func (m Material) ObservedDemand() []int {
	observed := make([]int, 0, len(m.Demand))
	for _, d := range m.Demand {
		if d >= 0 {
			observed = append(observed, d)
		}
	}
	return observed
}

// Dimension is one of the four ways materials are grouped for reporting.
type Dimension string

const (
	DimensionPrice       Dimension = "price"
	DimensionDemand      Dimension = "demand"
	DimensionCriticality Dimension = "criticality"
	DimensionCombined    Dimension = "combined"
)

// Dimensions lists the grouping dimensions in report order.
var Dimensions = []Dimension{DimensionDemand, DimensionPrice, DimensionCriticality, DimensionCombined}
