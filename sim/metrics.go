// Aggregates per-material and per-group service levels and costs once a run completes.

package sim

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaterialMetrics is the end-of-run view of one material.
type MaterialMetrics struct {
	ID           string
	PriceClass   string
	DemandClass  string
	Criticality  Criticality
	CSL          float64 // NaN when the material saw no positive demand
	FillRate     float64 // NaN when the material saw no positive demand
	Cycles       int
	Stockouts    int
	TotalDemand  int
	DeniedDemand int
	Weight       int // total positive historical demand
	Costs        Costs

	// policy state at the end of the run
	ReorderPoint int
	MaxStock     int
	Level        int
	Position     int
}

// GroupMetrics rolls up the materials sharing a group key along one dimension.
// CSL and FillRate are weighted by each material's total positive demand.
type GroupMetrics struct {
	Dimension Dimension
	Key       string
	CSL       float64 // NaN when the group has zero total weight
	FillRate  float64
	Costs     Costs
	Weight    int
	Count     int

	// components of the key; only those the dimension uses are set
	PriceClass  string
	DemandClass string
	Criticality Criticality
}

// Result is the read-only outcome of one simulation run.
type Result struct {
	Horizon         int
	EndTime         float64
	EventsProcessed int
	Materials       []MaterialMetrics            // in input order
	Groups          map[Dimension][]GroupMetrics // sorted by key
	Totals          Costs
	BackorderCosts  map[Criticality]decimal.Decimal
}

func (sim *Simulator) result() *Result {
	pt := sim.Performance
	r := &Result{
		Horizon:         sim.Horizon,
		EndTime:         sim.EventQueue.Clock(),
		EventsProcessed: sim.eventsProcessed,
		Materials:       make([]MaterialMetrics, len(sim.Materials)),
		Groups:          make(map[Dimension][]GroupMetrics, len(Dimensions)),
		Totals:          pt.TotalCosts(),
		BackorderCosts:  pt.BackorderCosts(),
	}
	for i, m := range sim.Materials {
		r.Materials[i] = MaterialMetrics{
			ID:           m.ID,
			PriceClass:   m.PriceClass,
			DemandClass:  m.DemandClass,
			Criticality:  m.Criticality(),
			CSL:          pt.CSL(i),
			FillRate:     pt.FillRate(i),
			Cycles:       pt.Cycles(i),
			Stockouts:    pt.Stockouts(i),
			TotalDemand:  pt.TotalDemand(i),
			DeniedDemand: pt.DeniedDemand(i),
			Weight:       m.TotalPositiveDemand(),
			Costs:        pt.MaterialCosts(i),
			ReorderPoint: m.Policy.ReorderPoint(),
			MaxStock:     m.Policy.MaxStock(),
			Level:        m.Policy.InventoryLevel(),
			Position:     m.Policy.InventoryPosition(),
		}
	}
	for _, dim := range Dimensions {
		r.Groups[dim] = aggregate(dim, sim.Materials, r.Materials, pt)
	}
	return r
}

func aggregate(dim Dimension, materials []Material, mm []MaterialMetrics, pt *PerformanceTracker) []GroupMetrics {
	byKey := make(map[string]*GroupMetrics)
	sumCSL := make(map[string]float64)
	sumFR := make(map[string]float64)
	for i, m := range materials {
		key := m.Group(dim)
		g, ok := byKey[key]
		if !ok {
			g = &GroupMetrics{
				Dimension: dim,
				Key:       key,
				Costs:     pt.GroupCosts(dim, key),
			}
			switch dim {
			case DimensionPrice:
				g.PriceClass = m.PriceClass
			case DimensionDemand:
				g.DemandClass = m.DemandClass
			case DimensionCriticality:
				g.Criticality = m.Criticality()
			default:
				g.PriceClass, g.DemandClass, g.Criticality = m.PriceClass, m.DemandClass, m.Criticality()
			}
			byKey[key] = g
		}
		g.Count++
		w := mm[i].Weight
		if w == 0 || math.IsNaN(mm[i].CSL) {
			continue
		}
		g.Weight += w
		sumCSL[key] += float64(w) * mm[i].CSL
		sumFR[key] += float64(w) * mm[i].FillRate
	}

	groups := make([]GroupMetrics, 0, len(byKey))
	for key, g := range byKey {
		if g.Weight == 0 {
			g.CSL, g.FillRate = math.NaN(), math.NaN()
		} else {
			g.CSL = sumCSL[key] / float64(g.Weight)
			g.FillRate = sumFR[key] / float64(g.Weight)
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// Group looks up one group's metrics.
func (r *Result) Group(dim Dimension, key string) (GroupMetrics, bool) {
	for _, g := range r.Groups[dim] {
		if g.Key == key {
			return g, true
		}
	}
	return GroupMetrics{}, false
}

// RealizedCSL maps every group key of dim to its weighted CSL.
func (r *Result) RealizedCSL(dim Dimension) map[string]float64 {
	out := make(map[string]float64, len(r.Groups[dim]))
	for _, g := range r.Groups[dim] {
		out[g.Key] = g.CSL
	}
	return out
}

// RealizedFillRate maps every group key of dim to its weighted fill rate.
func (r *Result) RealizedFillRate(dim Dimension) map[string]float64 {
	out := make(map[string]float64, len(r.Groups[dim]))
	for _, g := range r.Groups[dim] {
		out[g.Key] = g.FillRate
	}
	return out
}

// Material looks up one material's metrics by ID.
func (r *Result) Material(id string) (MaterialMetrics, bool) {
	for _, m := range r.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return MaterialMetrics{}, false
}

// ServiceStats returns min, mean, max and sample std of the per-material
// CSL and fill rate, skipping undefined values.
func (r *Result) ServiceStats() (csl, fillRate Summary) {
	var cs, fr []float64
	for _, m := range r.Materials {
		if !math.IsNaN(m.CSL) {
			cs = append(cs, m.CSL)
		}
		if !math.IsNaN(m.FillRate) {
			fr = append(fr, m.FillRate)
		}
	}
	return Summarize(cs), Summarize(fr)
}

// WriteSummary writes the human-readable run report.
func (r *Result) WriteSummary(w io.Writer) error {
	var b strings.Builder
	csl, fr := r.ServiceStats()

	b.WriteString("SIMULATION SUMMARY\n")
	b.WriteString("==================\n")
	writeStats(&b, "fill rate", fr)
	writeStats(&b, "cycle service level", csl)

	b.WriteString("cost overview\n")
	b.WriteString("-------------\n")
	fmt.Fprintf(&b, "total fixed costs:\t\t%s\n", r.Totals.Fixed.StringFixed(2))
	fmt.Fprintf(&b, "total holding costs:\t\t%s\n", r.Totals.Holding.StringFixed(2))
	fmt.Fprintf(&b, "total marginal costs:\t\t%s\n", r.Totals.Marginal.StringFixed(2))
	for _, tier := range Criticalities {
		fmt.Fprintf(&b, "total backorder costs (%s):\t%s\n", tierLabel(tier), r.BackorderCosts[tier].StringFixed(2))
	}
	b.WriteString("------------------------------------------\n")
	fmt.Fprintf(&b, "TOTAL:\t\t\t\t%s\n\n", r.Totals.Total().StringFixed(2))

	b.WriteString("GROUP\n")
	b.WriteString("-----\n")
	for _, dim := range Dimensions {
		fmt.Fprintf(&b, "%s\tCSL\tFR\tHC\tFC\tMC\n", dimensionTitle(dim))
		var hc, fc, mc decimal.Decimal
		for _, g := range r.Groups[dim] {
			fmt.Fprintf(&b, "\t%s\t%.4f\t%.4f\t%s\t%s\t%s\n", g.Key, g.CSL, g.FillRate,
				g.Costs.Holding.StringFixed(2), g.Costs.Fixed.StringFixed(2), g.Costs.Marginal.StringFixed(2))
			hc = hc.Add(g.Costs.Holding)
			fc = fc.Add(g.Costs.Fixed)
			mc = mc.Add(g.Costs.Marginal)
		}
		fmt.Fprintf(&b, "\t\t\t\t%s\t%s\t%s\n\n", hc.StringFixed(2), fc.StringFixed(2), mc.StringFixed(2))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStats(b *strings.Builder, title string, s Summary) {
	b.WriteString(title + "\n")
	b.WriteString("---------\n")
	fmt.Fprintf(b, "min:\t%.4f\n", s.Min)
	fmt.Fprintf(b, "mean:\t%.4f\n", s.Mean)
	fmt.Fprintf(b, "max:\t%.4f\n", s.Max)
	fmt.Fprintf(b, "std:\t%.4f\n\n", s.StdDev)
}

func tierLabel(c Criticality) string {
	switch c {
	case CriticalityHigh:
		return "H"
	case CriticalityMedium:
		return "M"
	case CriticalityLow:
		return "L"
	default:
		return "Z"
	}
}

func dimensionTitle(d Dimension) string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}
