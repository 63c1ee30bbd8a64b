package pvps

// PVCurve is the electrical characteristic of the PV generator at one
// instant (fixed irradiance and cell temperature). Implementations must be
// pure: the solver probes them repeatedly during its voltage search.
type PVCurve interface {
	// Current returns the array output current [A] at voltage v [V].
	// Must be non-increasing in v and zero at or above OpenCircuitVoltage.
	Current(v float64) float64
	// Power returns v * Current(v) [W].
	Power(v float64) float64
	// OpenCircuitVoltage bounds the solver's voltage search [V].
	OpenCircuitVoltage() float64
	// MaxPower returns the maximum power point (power [W], voltage [V]).
	MaxPower() (float64, float64)
}

// PVModel builds the instantaneous PV curve for a weather record.
// A nil curve means the array produces nothing at that instant.
type PVModel interface {
	CurveAt(w WeatherRecord) PVCurve
}

// PumpDomain is the validity region of a pump characteristic, taken from the
// datasheet points the curve was fitted on. Outside it the curve
// extrapolates poorly and the pump is treated as not running.
type PumpDomain struct {
	MinVoltage, MaxVoltage float64 // [V]
	MinHead, MaxHead       float64 // [m]
	MinPower, MaxPower     float64 // [W]
}

// PumpCurve is the electrical/hydraulic characteristic of a motor-pump.
// Variants: ParametricPump (fitted polynomials) and TabulatedPump
// (interpolated datasheet samples).
type PumpCurve interface {
	// FlowFromPower returns the flow [L/min] when the pump absorbs power
	// p [W] against total head h [m]. Non-positive when the pump cannot
	// start at that power and head.
	FlowFromPower(p, h float64) float64
	// Flow returns the flow [L/min] at terminal voltage v [V] and total
	// head h [m]. Used for direct PV coupling.
	Flow(v, h float64) float64
	// Current returns the current drawn [A] at voltage v and head h.
	Current(v, h float64) float64
	// MinimumPower returns the smallest input power [W] that produces
	// positive flow at head h, i.e. the start-up threshold.
	MinimumPower(h float64) float64
	// Domain returns the validity region of the characteristic.
	Domain() PumpDomain
}

// clamp limits x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
