// Package sizing searches component catalogs for minimum-cost pumping
// system designs that meet a water-shortage requirement. Each candidate is
// evaluated by a full simulation run; candidates are independent and run on
// a worker pool.
package sizing

import (
	"fmt"

	"github.com/pvpump-sim/pvpump-sim/pvps"
)

// Catalog lists the sizable component alternatives. The search space is the
// cartesian product of the four slices.
type Catalog struct {
	PVs        []pvps.PVArrayConfig
	Pumps      []pvps.MotorPumpSpec
	Pipes      []pvps.PipeNetworkSpec
	Reservoirs []pvps.ReservoirSpec
}

// Validate rejects empty catalogs before any simulation work.
func (c Catalog) Validate() error {
	if len(c.PVs) == 0 {
		return pvps.InvalidConfigError{Field: "catalog", Reason: "no PV configurations"}
	}
	if len(c.Pumps) == 0 {
		return pvps.InvalidConfigError{Field: "catalog", Reason: "no pumps"}
	}
	if len(c.Pipes) == 0 {
		return pvps.InvalidConfigError{Field: "catalog", Reason: "no pipe networks"}
	}
	if len(c.Reservoirs) == 0 {
		return pvps.InvalidConfigError{Field: "catalog", Reason: "no reservoirs"}
	}
	return nil
}

// Size returns the number of candidate combinations.
func (c Catalog) Size() int {
	return len(c.PVs) * len(c.Pumps) * len(c.Pipes) * len(c.Reservoirs)
}

// designs enumerates the cartesian product in a fixed order, so candidate
// indices are stable across runs.
func (c Catalog) designs() []CandidateDesign {
	out := make([]CandidateDesign, 0, c.Size())
	idx := 0
	for _, pv := range c.PVs {
		for _, pump := range c.Pumps {
			for _, pipes := range c.Pipes {
				for _, resv := range c.Reservoirs {
					out = append(out, CandidateDesign{
						Index:     idx,
						PV:        pv,
						Pump:      pump,
						Pipes:     pipes,
						Reservoir: resv,
					})
					idx++
				}
			}
		}
	}
	return out
}

// CandidateDesign is one combination of sizable components. Transient:
// created and discarded by the search.
type CandidateDesign struct {
	Index     int
	PV        pvps.PVArrayConfig
	Pump      pvps.MotorPumpSpec
	Pipes     pvps.PipeNetworkSpec
	Reservoir pvps.ReservoirSpec
}

func (d CandidateDesign) String() string {
	return fmt.Sprintf("candidate %d: %s pump=%s h_stat=%.0fm resv=%.0fL",
		d.Index, d.PV, d.Pump.Model, d.Pipes.StaticHead, d.Reservoir.Capacity)
}

// Requirement is the functional requirement a feasible design must meet.
type Requirement struct {
	// MaxLLP is the highest acceptable loss-of-load probability (unserved
	// demand volume over total demand volume).
	MaxLLP float64
}

// Validate checks the requirement.
func (r Requirement) Validate() error {
	if r.MaxLLP < 0 || r.MaxLLP > 1 {
		return pvps.InvalidConfigError{Field: "requirement",
			Reason: fmt.Sprintf("max LLP %.3f outside [0, 1]", r.MaxLLP)}
	}
	return nil
}

// Evaluation is the outcome of simulating one candidate design.
type Evaluation struct {
	Design   CandidateDesign
	Risk     pvps.RiskReport
	Cost     float64 // life-cycle cost [$]
	Feasible bool
	// Err is set when the candidate's simulation failed (for example a
	// run dominated by non-convergence); such candidates are excluded
	// from the ranking rather than aborting the search.
	Err error
}
