// Package sim provides the discrete-event inventory simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - material.go: Material records, criticality tiers and grouping dimensions
//   - policy.go: the ReorderPolicy state machine with its (s,S) and (R,Q) variants
//   - event.go: the two event kinds (consumption, order arrival)
//   - simulator.go: the event loop, reorder handling and cost accrual
//   - performance.go: per-material and per-group counters
//   - metrics.go: demand-weighted service levels and the run report
//
// # Architecture
//
// The sim package holds the engine; everything around it lives in sub-packages:
//   - sim/policy/: strategies that turn a demand history and a target level into a ReorderPolicy
//   - sim/calibrate/: bisection search of per-group targets and efficiency-curve sweeps
//   - sim/dataset/: CSV import of materials and export of results
//   - sim/store/: SQLite run history
//   - sim/telemetry/: Prometheus textfile export
//   - sim/trace/: per-event trace recording
//
// A Simulator owns private clones of its materials' policies and refers to
// materials by index, so independent runs share no mutable state and can be
// executed in parallel.
package sim
