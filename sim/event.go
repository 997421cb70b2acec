package sim

import "fmt"

// Event is something that happens to one material at a point in simulated
// time. The set of events is closed: ConsumptionEvent and ReorderEvent.
// Events refer to their material by index into the simulator's material
// slice, never by pointer.
type Event interface {
	// Timestamp returns the execution time in periods.
	Timestamp() float64
	// Material returns the index of the associated material.
	Material() int
	Kind() string
	sealed()
}

// ConsumptionEvent removes Demand units from stock. Demand is never zero;
// negative values come from sentinel entries in the history and add stock back.
type ConsumptionEvent struct {
	time     float64
	material int
	Demand   int
}

// NewConsumptionEvent creates a consumption of demand units at time t.
func NewConsumptionEvent(t float64, material, demand int) *ConsumptionEvent {
	return &ConsumptionEvent{time: t, material: material, Demand: demand}
}

func (e *ConsumptionEvent) Timestamp() float64 { return e.time }
func (e *ConsumptionEvent) Material() int      { return e.material }
func (e *ConsumptionEvent) Kind() string       { return "consumption" }
func (e *ConsumptionEvent) sealed()            {}

func (e *ConsumptionEvent) String() string {
	return fmt.Sprintf("consumption: material=%d, execution=%g, demand=%d", e.material, e.time, e.Demand)
}

// ReorderEvent is the arrival of Quantity units ordered earlier.
type ReorderEvent struct {
	time     float64
	material int
	Quantity int
}

// NewReorderEvent creates an order arrival of quantity units at time t.
func NewReorderEvent(t float64, material, quantity int) *ReorderEvent {
	return &ReorderEvent{time: t, material: material, Quantity: quantity}
}

func (e *ReorderEvent) Timestamp() float64 { return e.time }
func (e *ReorderEvent) Material() int      { return e.material }
func (e *ReorderEvent) Kind() string       { return "order arrival" }
func (e *ReorderEvent) sealed()            {}

func (e *ReorderEvent) String() string {
	return fmt.Sprintf("order arrival: material=%d, execution=%g, quantity=%d", e.material, e.time, e.Quantity)
}
