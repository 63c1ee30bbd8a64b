package pvps

import (
	"fmt"
	"time"
)

// StepRecord archives one simulated hour: the solved operating point, the
// demand served, and the reservoir balance after the step.
type StepRecord struct {
	Timestamp  time.Time
	Irradiance float64 // [W/m2]

	Voltage float64 // [V]
	Current float64 // [A]
	Power   float64 // power absorbed by the pump [W]
	PUnused float64 // PV power available but not absorbed [W]
	FlowLpm float64 // pumped flow [L/min]
	Head    float64 // total dynamic head [m]

	DemandLpm float64 // demand flow [L/min]
	Level     float64 // reservoir level after the step [L]
	Overflow  float64 // spilled volume this step [L]
	Deficit   float64 // unserved demand volume this step [L]

	Status StepStatus
}

// SimulationResult is the ordered per-step record sequence plus run-level
// aggregates. Its length always equals the weather series length.
type SimulationResult struct {
	Steps []StepRecord
	DT    float64 // step duration [h]

	// run-level aggregates, filled by the engine at end of run
	PumpedVolume   float64 // [L]
	DemandVolume   float64 // [L]
	DeficitVolume  float64 // [L]
	OverflowVolume float64 // [L]
	EnergyUsed     float64 // pump-side energy [Wh]
	EnergyUnused   float64 // PV energy not absorbed [Wh]

	NonConvergentSteps int
	BelowStartupSteps  int
	DaylightSteps      int // steps with positive irradiance
}

// finalize computes the run-level aggregates from the step records.
func (r *SimulationResult) finalize() {
	for _, s := range r.Steps {
		r.PumpedVolume += s.FlowLpm * 60 * r.DT
		r.DemandVolume += s.DemandLpm * 60 * r.DT
		r.DeficitVolume += s.Deficit
		r.OverflowVolume += s.Overflow
		r.EnergyUsed += s.Power * r.DT
		r.EnergyUnused += s.PUnused * r.DT
		switch s.Status {
		case StatusNonConvergent:
			r.NonConvergentSteps++
		case StatusBelowStartup:
			r.BelowStartupSteps++
		}
		if s.Irradiance > 0 {
			r.DaylightSteps++
		}
	}
}

// NonConvergentRatio returns the fraction of daylight steps the solver
// failed on. Night steps are excluded: they never invoke the solver.
func (r *SimulationResult) NonConvergentRatio() float64 {
	if r.DaylightSteps == 0 {
		return 0
	}
	return float64(r.NonConvergentSteps) / float64(r.DaylightSteps)
}

// Print displays run aggregates at the end of a simulation.
func (r *SimulationResult) Print() {
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Steps                 : %d (%.0f h)\n", len(r.Steps), float64(len(r.Steps))*r.DT)
	fmt.Printf("Pumped volume         : %.1f m3\n", r.PumpedVolume/1000)
	fmt.Printf("Demand volume         : %.1f m3\n", r.DemandVolume/1000)
	fmt.Printf("Deficit volume        : %.1f m3\n", r.DeficitVolume/1000)
	fmt.Printf("Overflow volume       : %.1f m3\n", r.OverflowVolume/1000)
	fmt.Printf("Pump energy           : %.1f kWh\n", r.EnergyUsed/1000)
	fmt.Printf("Unused PV energy      : %.1f kWh\n", r.EnergyUnused/1000)
	fmt.Printf("Below-startup steps   : %d\n", r.BelowStartupSteps)
	fmt.Printf("Non-convergent steps  : %d (%.2f%% of daylight)\n",
		r.NonConvergentSteps, 100*r.NonConvergentRatio())
}
