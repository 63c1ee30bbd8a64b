// Package trace provides per-step solve-trace recording for simulation
// analysis. This package has no dependencies on pvps/ and stores pure data
// types.
package trace

// StepRecord captures the solver outcome of a single simulated step.
type StepRecord struct {
	Index      int
	Status     string
	Iterations int
	FlowLpm    float64
	Head       float64
	Power      float64
}

// RunTrace collects step records during one simulation run.
type RunTrace struct {
	Steps []StepRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace() *RunTrace {
	return &RunTrace{Steps: make([]StepRecord, 0)}
}

// Record appends a step record.
func (rt *RunTrace) Record(record StepRecord) {
	rt.Steps = append(rt.Steps, record)
}
