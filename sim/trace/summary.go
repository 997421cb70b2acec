package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents      int
	Consumptions     int
	Arrivals         int
	Reorders         int
	ShortEvents      int
	UniqueMaterials  int
	UnitsConsumed    int
	UnitsOrdered     int
	EventsByMaterial map[string]int // material ID → count of events
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EventsByMaterial: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for _, r := range st.Events {
		summary.EventsByMaterial[r.MaterialID]++
		switch r.Kind {
		case KindConsumption:
			summary.Consumptions++
			if r.Demand > 0 {
				summary.UnitsConsumed += r.Demand
			}
			if r.Reordered {
				summary.Reorders++
				summary.UnitsOrdered += r.Quantity
			}
		case KindArrival:
			summary.Arrivals++
		}
		if r.Short {
			summary.ShortEvents++
		}
	}

	summary.UniqueMaterials = len(summary.EventsByMaterial)

	return summary
}
