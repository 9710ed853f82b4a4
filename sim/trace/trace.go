package trace

// TraceLevel controls the verbosity of publication tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing; only aggregate statistics are kept.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPublications keeps one record per publication.
	TraceLevelPublications TraceLevel = "publications"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:         true,
	TraceLevelPublications: true,
	"":                     true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether publication records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelPublications
}

// SimulationTrace collects publication records during a simulation run.
type SimulationTrace struct {
	Config       TraceConfig
	Publications []PublicationRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Publications: make([]PublicationRecord, 0),
	}
}

// RecordPublication appends a publication record.
func (st *SimulationTrace) RecordPublication(record PublicationRecord) {
	st.Publications = append(st.Publications, record)
}
