package pvps

// ReservoirSpec configures the water storage tank.
type ReservoirSpec struct {
	Capacity      float64 // storage capacity [L]
	StartingLevel float64 // stored volume at run start [L]
	Price         float64 // capital cost [$]
}

// Validate checks the reservoir parameters.
func (s ReservoirSpec) Validate() error {
	if s.Capacity <= 0 {
		return invalidConfigf("reservoir", "capacity must be positive (got %.1f)", s.Capacity)
	}
	if s.StartingLevel < 0 || s.StartingLevel > s.Capacity {
		return invalidConfigf("reservoir", "starting level %.1f outside [0, %.1f]", s.StartingLevel, s.Capacity)
	}
	return nil
}

// Reservoir is the stateful water storage accounting for one run. It is
// owned exclusively by the SimulationEngine while a run is in progress;
// other components read levels only from the archived step records.
type Reservoir struct {
	capacity float64 // [L]
	level    float64 // [L], always within [0, capacity]
}

// NewReservoir builds a reservoir from a validated spec.
func NewReservoir(spec ReservoirSpec) *Reservoir {
	return &Reservoir{capacity: spec.Capacity, level: spec.StartingLevel}
}

// Level returns the stored volume [L].
func (r *Reservoir) Level() float64 { return r.level }

// Capacity returns the storage capacity [L].
func (r *Reservoir) Capacity() float64 { return r.capacity }

// Reset puts the reservoir back to the given starting level.
func (r *Reservoir) Reset(level float64) {
	r.level = clamp(level, 0, r.capacity)
}

// Advance applies one time step of inflow from the pump and outflow demand,
// both average flow rates in L/min over dtHours. It returns the spilled
// volume (overflow) and the unserved demand volume (deficit), in liters.
// The level is clamped to [0, capacity].
func (r *Reservoir) Advance(inflowLpm, demandLpm, dtHours float64) (overflow, deficit float64) {
	in := inflowLpm * 60 * dtHours
	out := demandLpm * 60 * dtHours

	raw := r.level + in - out
	if raw > r.capacity {
		overflow = raw - r.capacity
	}
	if raw < 0 {
		deficit = -raw
	}
	r.level = clamp(raw, 0, r.capacity)
	return overflow, deficit
}
