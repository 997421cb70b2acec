package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every processed event with the stock after it.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// MaterialID restricts recording to one material; empty records all.
	MaterialID string
}

// SimulationTrace collects event records during a simulation run.
type SimulationTrace struct {
	Config TraceConfig
	Events []EventRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether records for the given material should be kept.
// Safe on a nil trace.
func (st *SimulationTrace) Enabled(materialID string) bool {
	if st == nil || st.Config.Level != TraceLevelEvents {
		return false
	}
	return st.Config.MaterialID == "" || st.Config.MaterialID == materialID
}

// RecordEvent appends an event record.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	st.Events = append(st.Events, record)
}

// ForMaterial returns the records of one material in processing order.
func (st *SimulationTrace) ForMaterial(materialID string) []EventRecord {
	var out []EventRecord
	for _, r := range st.Events {
		if r.MaterialID == materialID {
			out = append(out, r)
		}
	}
	return out
}
