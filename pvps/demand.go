package pvps

// DemandProfile yields the water demand, as an average flow rate in liters
// per minute, for each step of the simulation.
type DemandProfile interface {
	// FlowLpm returns the demand for step index i of the run.
	FlowLpm(i int) float64
}

// ConstantDemand draws the same flow rate at every step.
type ConstantDemand float64

func (c ConstantDemand) FlowLpm(int) float64 { return float64(c) }

// RepeatedDemand cycles through a fixed pattern, typically 24 hourly values
// describing one day of consumption.
type RepeatedDemand []float64

func (r RepeatedDemand) FlowLpm(i int) float64 {
	if len(r) == 0 {
		return 0
	}
	return r[i%len(r)]
}

// validateDemand rejects profiles with negative entries. Nil profiles are
// allowed and mean zero demand.
func validateDemand(d DemandProfile, steps int) error {
	if d == nil {
		return nil
	}
	switch p := d.(type) {
	case ConstantDemand:
		if p < 0 {
			return invalidConfigf("demand", "negative constant flow %.2f", float64(p))
		}
	case RepeatedDemand:
		for i, v := range p {
			if v < 0 {
				return invalidConfigf("demand", "negative flow %.2f at pattern index %d", v, i)
			}
		}
	default:
		// custom profiles: spot check the run's indices
		for i := 0; i < steps; i++ {
			if p.FlowLpm(i) < 0 {
				return invalidConfigf("demand", "negative flow at step %d", i)
			}
		}
	}
	return nil
}
