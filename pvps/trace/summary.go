package trace

// Summary aggregates statistics from a RunTrace.
type Summary struct {
	TotalSteps         int
	StatusCounts       map[string]int
	MeanIterations     float64
	MaxIterations      int
	PeakFlowLpm        float64
	PeakHead           float64
	PeakPower          float64
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *Summary {
	summary := &Summary{
		StatusCounts: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.TotalSteps = len(rt.Steps)
	totalIters := 0
	for _, s := range rt.Steps {
		summary.StatusCounts[s.Status]++
		totalIters += s.Iterations
		if s.Iterations > summary.MaxIterations {
			summary.MaxIterations = s.Iterations
		}
		if s.FlowLpm > summary.PeakFlowLpm {
			summary.PeakFlowLpm = s.FlowLpm
		}
		if s.Head > summary.PeakHead {
			summary.PeakHead = s.Head
		}
		if s.Power > summary.PeakPower {
			summary.PeakPower = s.Power
		}
	}
	if summary.TotalSteps > 0 {
		summary.MeanIterations = float64(totalIters) / float64(summary.TotalSteps)
	}
	return summary
}
