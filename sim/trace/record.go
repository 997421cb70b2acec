// Package trace provides per-event recording of inventory simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Event kinds as reported in EventRecord.Kind.
const (
	KindConsumption = "consumption"
	KindArrival     = "order arrival"
)

// EventRecord captures one processed event and the stock right after it.
type EventRecord struct {
	Time       float64
	MaterialID string
	Kind       string
	Demand     int // consumption only
	Quantity   int // order arrival only, or the quantity ordered by a consumption
	Level      int
	Position   int
	Short      bool
	Reordered  bool // a consumption that triggered a reorder
}
