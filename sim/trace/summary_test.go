package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalEvents != 0 || summary.Consumptions != 0 || summary.Arrivals != 0 {
		t.Error("expected zero event counts")
	}
	if summary.UniqueMaterials != 0 {
		t.Errorf("expected 0 unique materials, got %d", summary.UniqueMaterials)
	}
	if len(summary.EventsByMaterial) != 0 {
		t.Error("expected empty material distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalEvents != 0 || summary.EventsByMaterial == nil {
		t.Errorf("unexpected summary for nil trace: %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with consumptions, a reorder and an arrival
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	st.RecordEvent(EventRecord{MaterialID: "A", Kind: KindConsumption, Demand: 3})
	st.RecordEvent(EventRecord{MaterialID: "A", Kind: KindConsumption, Demand: 9, Reordered: true, Quantity: 10, Short: true})
	st.RecordEvent(EventRecord{MaterialID: "B", Kind: KindConsumption, Demand: -1})
	st.RecordEvent(EventRecord{MaterialID: "A", Kind: KindArrival, Quantity: 10})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts reflect the records
	if summary.TotalEvents != 4 {
		t.Errorf("expected 4 events, got %d", summary.TotalEvents)
	}
	if summary.Consumptions != 3 || summary.Arrivals != 1 {
		t.Errorf("expected 3 consumptions and 1 arrival, got %d and %d", summary.Consumptions, summary.Arrivals)
	}
	if summary.Reorders != 1 || summary.UnitsOrdered != 10 {
		t.Errorf("expected 1 reorder of 10 units, got %d of %d", summary.Reorders, summary.UnitsOrdered)
	}
	if summary.UnitsConsumed != 12 {
		t.Errorf("expected 12 units consumed (negatives excluded), got %d", summary.UnitsConsumed)
	}
	if summary.ShortEvents != 1 {
		t.Errorf("expected 1 short event, got %d", summary.ShortEvents)
	}
	if summary.UniqueMaterials != 2 || summary.EventsByMaterial["A"] != 3 {
		t.Errorf("unexpected material distribution: %v", summary.EventsByMaterial)
	}
}
