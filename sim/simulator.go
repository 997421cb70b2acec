// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/inventory-sim/inventory-sim/sim/trace"
)

var (
	// ErrNoMaterials is returned when a simulator is built from an empty material set.
	ErrNoMaterials = errors.New("no materials")
	// ErrHorizonMismatch is returned when materials carry demand histories of different lengths.
	ErrHorizonMismatch = errors.New("demand histories differ in length")
)

// Simulator replays historical demand for a set of materials through their
// reorder policies. It owns private copies of the materials' policies, so the
// caller's materials are never mutated and independent runs can proceed in
// parallel.
type Simulator struct {
	Horizon int
	// Materials are owned by the simulator; events refer to them by index.
	Materials   []Material
	EventQueue  *EventQueue
	Performance *PerformanceTracker

	config SimConfig
	trace  *trace.SimulationTrace

	// lastUpdate[i] is the time holding cost was last charged for material i
	lastUpdate []float64
	// outOfStock[i] is set once a stockout is counted in the current cycle
	outOfStock []bool

	holdingRate    decimal.Decimal
	fixedOrderCost decimal.Decimal
	stockoutCosts  map[Criticality]decimal.Decimal
	prices         []decimal.Decimal

	eventsProcessed int
	ran             bool
}

// NewSimulator validates the materials and clones their policies. All
// materials must have a policy, a unique ID and the same demand length.
func NewSimulator(materials []Material, cfg SimConfig) (*Simulator, error) {
	if len(materials) == 0 {
		return nil, ErrNoMaterials
	}
	if cfg.StockoutRule == "" {
		cfg.StockoutRule = StockoutRuleLevel
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	horizon := materials[0].Horizon()
	owned := make([]Material, len(materials))
	seen := make(map[string]bool, len(materials))
	prices := make([]decimal.Decimal, len(materials))
	for i, m := range materials {
		if m.Policy == nil {
			return nil, fmt.Errorf("material %s has no reorder policy", m.ID)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate material id %q", m.ID)
		}
		seen[m.ID] = true
		if m.Horizon() != horizon {
			return nil, fmt.Errorf("%w: material %s has %d periods, expected %d", ErrHorizonMismatch, m.ID, m.Horizon(), horizon)
		}
		owned[i] = m.WithPolicy(m.Policy.Clone())
		prices[i] = decimal.NewFromFloat(m.Price)
	}

	stockoutCosts := make(map[Criticality]decimal.Decimal, len(Criticalities))
	for _, tier := range Criticalities {
		stockoutCosts[tier] = decimal.NewFromFloat(cfg.Costs.StockoutCosts[tier])
	}

	return &Simulator{
		Horizon:        horizon,
		Materials:      owned,
		EventQueue:     NewEventQueue(),
		Performance:    NewPerformanceTracker(owned),
		config:         cfg,
		lastUpdate:     make([]float64, len(owned)),
		outOfStock:     make([]bool, len(owned)),
		holdingRate:    decimal.NewFromFloat(cfg.Costs.HoldingRate),
		fixedOrderCost: decimal.NewFromFloat(cfg.Costs.FixedOrderCost),
		stockoutCosts:  stockoutCosts,
		prices:         prices,
	}, nil
}

// SetTrace attaches an event trace. Nil disables tracing.
func (sim *Simulator) SetTrace(st *trace.SimulationTrace) {
	sim.trace = st
}

// Run replays the whole horizon once and returns the aggregated result.
// All demand is known up front, so every consumption event is scheduled
// before the loop starts; only order arrivals are created on the fly.
func (sim *Simulator) Run() (*Result, error) {
	if sim.ran {
		return nil, errors.New("simulator has already run; build a new one")
	}
	sim.ran = true

	sim.startup()
	logrus.Infof("Starting simulation of %d materials over %d periods (%d events scheduled)",
		len(sim.Materials), sim.Horizon, sim.EventQueue.Len())

	for sim.EventQueue.HasPending() && sim.EventQueue.Clock() < float64(sim.Horizon) {
		ev := sim.EventQueue.Next()
		now := ev.Timestamp()
		i := ev.Material()
		logrus.Tracef("[t=%g] Executing %s", now, ev)

		var err error
		reordered := 0
		switch e := ev.(type) {
		case *ConsumptionEvent:
			reordered, err = sim.handleConsumption(e)
		case *ReorderEvent:
			err = sim.handleReorder(e)
		default:
			err = fmt.Errorf("unknown event type %T", ev)
		}
		if err != nil {
			return nil, fmt.Errorf("t=%g material %s: %w", now, sim.Materials[i].ID, err)
		}

		sim.accrue(i, now)
		sim.record(ev, reordered)
		sim.eventsProcessed++
	}

	logrus.Infof("[t=%g] Simulation ended after %d events", sim.EventQueue.Clock(), sim.eventsProcessed)
	return sim.result(), nil
}

// startup schedules a consumption event for every non-zero demand entry.
func (sim *Simulator) startup() {
	for i, m := range sim.Materials {
		for t := 0; t < sim.Horizon; t++ {
			if d := m.Demand[t]; d != 0 {
				sim.EventQueue.Add(NewConsumptionEvent(float64(t), i, d))
			}
		}
	}
}

// handleConsumption serves demand from stock and places an order when the
// policy asks for one. Returns the quantity ordered, 0 if none.
func (sim *Simulator) handleConsumption(e *ConsumptionEvent) (int, error) {
	i := e.Material()
	m := &sim.Materials[i]
	p := m.Policy
	demand := e.Demand

	if demand > 0 {
		sim.Performance.AddDemand(i, demand)
	}

	// fill rate: whatever on-hand stock cannot cover is denied
	onHand := max(p.InventoryLevel(), 0)
	if demand > onHand {
		sim.Performance.DenyDemand(i, demand-onHand)
	}

	// CSL: count at most one stockout per replenishment cycle
	if !sim.outOfStock[i] && sim.stocksOut(p, demand) {
		sim.Performance.Stockout(i)
		sim.outOfStock[i] = true
	}

	p.Consume(demand)

	if !p.ShouldReorder() {
		return 0, nil
	}
	quantity, err := p.Reorder()
	if err != nil {
		return 0, err
	}
	arrival := e.Timestamp() + math.Ceil(m.LeadTime)
	sim.EventQueue.Add(NewReorderEvent(arrival, i, quantity))
	logrus.Debugf("[t=%g] material %s reorders %d units, arriving at %g", e.Timestamp(), m.ID, quantity, arrival)

	// new cycle
	sim.Performance.StartCycle(i)
	sim.outOfStock[i] = false

	if _, err := p.ReplenishPosition(quantity); err != nil {
		return 0, err
	}
	sim.Performance.AddFixedCost(i, sim.fixedOrderCost)
	sim.Performance.AddMarginalCost(i, sim.prices[i].Mul(decimal.NewFromInt(int64(quantity))))
	return quantity, nil
}

func (sim *Simulator) stocksOut(p ReorderPolicy, demand int) bool {
	if sim.config.StockoutRule == StockoutRulePosition {
		return demand >= p.InventoryPosition()
	}
	level := p.InventoryLevel()
	return demand > level && level > 0
}

func (sim *Simulator) handleReorder(e *ReorderEvent) error {
	_, err := sim.Materials[e.Material()].Policy.ReplenishLevel(e.Quantity)
	return err
}

// accrue charges holding cost for the time since the material was last
// touched, valued at the current on-hand stock, plus the tier's stockout
// cost if the material is short.
func (sim *Simulator) accrue(i int, now float64) {
	m := sim.Materials[i]
	onHand := max(m.Policy.InventoryLevel(), 0)
	elapsed := now - sim.lastUpdate[i]
	if onHand > 0 && elapsed > 0 {
		cost := sim.holdingRate.
			Mul(decimal.NewFromInt(int64(onHand))).
			Mul(sim.prices[i]).
			Mul(decimal.NewFromFloat(elapsed))
		sim.Performance.AddHoldingCost(i, cost)
	}

	if m.Policy.IsShort() {
		sim.Performance.AddBackorderCost(i, sim.stockoutCosts[m.Criticality()])
	}

	sim.lastUpdate[i] = now
}

func (sim *Simulator) record(ev Event, reordered int) {
	m := sim.Materials[ev.Material()]
	if !sim.trace.Enabled(m.ID) {
		return
	}
	r := trace.EventRecord{
		Time:       ev.Timestamp(),
		MaterialID: m.ID,
		Kind:       ev.Kind(),
		Level:      m.Policy.InventoryLevel(),
		Position:   m.Policy.InventoryPosition(),
		Short:      m.Policy.IsShort(),
	}
	switch e := ev.(type) {
	case *ConsumptionEvent:
		r.Demand = e.Demand
		r.Quantity = reordered
		r.Reordered = reordered > 0
	case *ReorderEvent:
		r.Quantity = e.Quantity
	}
	sim.trace.RecordEvent(r)
}

// Run builds a simulator for materials and runs it once.
func Run(materials []Material, cfg SimConfig) (*Result, error) {
	s, err := NewSimulator(materials, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run()
}
