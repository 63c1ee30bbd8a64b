package pvps

import (
	"math"
)

// CouplingMode selects how the PV generator drives the motor-pump.
type CouplingMode string

const (
	// CouplingMPPT inserts a maximum-power-point tracker: the pump absorbs
	// the array's maximum power scaled by converter efficiency.
	CouplingMPPT CouplingMode = "mppt"
	// CouplingDirect wires the pump straight across the array: the
	// operating voltage settles where array and motor currents match.
	CouplingDirect CouplingMode = "direct"
)

// StepStatus classifies the outcome of one operating-point solve.
type StepStatus string

const (
	StatusConverged      StepStatus = "converged"
	StatusZeroIrradiance StepStatus = "zero_irradiance"
	StatusBelowStartup   StepStatus = "below_startup"
	StatusNonConvergent  StepStatus = "non_convergent"
)

// OperatingPoint is the solved electrical/hydraulic equilibrium for one
// time step. Never mutated after creation.
type OperatingPoint struct {
	Voltage float64 // array terminal voltage [V]
	Current float64 // array current [A]
	Power   float64 // power absorbed by the pump [W]
	FlowLpm float64 // delivered flow [L/min]
	Head    float64 // total dynamic head at the operating point [m]

	PowerAvailable float64 // array maximum power this step [W]
	Status         StepStatus
	Iterations     int // outer iterations spent
}

// SolverConfig carries the explicit tolerances and iteration budgets of the
// nested fixed-point search. Zero values fall back to defaults.
type SolverConfig struct {
	Coupling       CouplingMode
	MPPTEfficiency float64 // converter efficiency for CouplingMPPT

	VoltageTol   float64 // relative tolerance on the outer voltage search
	HeadTol      float64 // relative tolerance on the head<->flow fixed point
	MaxOuterIter int
	MaxInnerIter int
}

const (
	defaultTol       = 1e-4
	defaultOuterIter = 80
	defaultInnerIter = 40
	// headDamping under-relaxes the head update; the loss curve is gentle
	// so the damped iteration contracts even near pump shut-off.
	headDamping = 0.7
)

func (c SolverConfig) withDefaults() SolverConfig {
	if c.Coupling == "" {
		c.Coupling = CouplingMPPT
	}
	if c.MPPTEfficiency == 0 {
		c.MPPTEfficiency = 1.0
	}
	if c.VoltageTol == 0 {
		c.VoltageTol = defaultTol
	}
	if c.HeadTol == 0 {
		c.HeadTol = defaultTol
	}
	if c.MaxOuterIter == 0 {
		c.MaxOuterIter = defaultOuterIter
	}
	if c.MaxInnerIter == 0 {
		c.MaxInnerIter = defaultInnerIter
	}
	return c
}

// Validate checks solver settings.
func (c SolverConfig) Validate() error {
	switch c.Coupling {
	case "", CouplingMPPT, CouplingDirect:
	default:
		return invalidConfigf("solver", "unknown coupling mode %q", c.Coupling)
	}
	if c.MPPTEfficiency < 0 || c.MPPTEfficiency > 1 {
		return invalidConfigf("solver", "mppt efficiency %.2f outside [0, 1]", c.MPPTEfficiency)
	}
	if c.VoltageTol < 0 || c.HeadTol < 0 || c.MaxOuterIter < 0 || c.MaxInnerIter < 0 {
		return invalidConfigf("solver", "negative tolerance or iteration budget")
	}
	return nil
}

// Solver finds the coupled operating point of array, pump and pipes at one
// instant. Stateless apart from its configuration; safe for concurrent use
// by independent candidate simulations.
type Solver struct {
	cfg SolverConfig
}

// NewSolver builds a solver with defaults applied.
func NewSolver(cfg SolverConfig) *Solver {
	return &Solver{cfg: cfg.withDefaults()}
}

// Solve computes the operating point for one step. A nil curve means zero
// irradiance and short-circuits without any iteration. warmFlow is the
// previous step's flow, used to warm-start the head guess.
func (s *Solver) Solve(curve PVCurve, pump PumpCurve, pipes PipeNetworkSpec, warmFlow float64) OperatingPoint {
	if curve == nil {
		return OperatingPoint{Status: StatusZeroIrradiance}
	}

	pAvail, vmp := curve.MaxPower()
	if pAvail <= 0 {
		return OperatingPoint{Status: StatusZeroIrradiance}
	}

	// startup short-circuit: head only grows with flow, so the static-head
	// threshold is a lower bound on the power the pump needs
	startPower := pump.MinimumPower(pipes.TotalHead(0))
	if pAvail*s.effectiveEfficiency() < startPower {
		return OperatingPoint{PowerAvailable: pAvail, Status: StatusBelowStartup}
	}

	switch s.cfg.Coupling {
	case CouplingDirect:
		return s.solveDirect(curve, pump, pipes, warmFlow, pAvail)
	default:
		return s.solveMPPT(pump, pipes, warmFlow, pAvail, vmp, curve)
	}
}

func (s *Solver) effectiveEfficiency() float64 {
	if s.cfg.Coupling == CouplingDirect {
		return 1.0
	}
	return s.cfg.MPPTEfficiency
}

// headFlowFixedPoint iterates the inner head<->flow loop: propose a flow at
// the current head, recompute the head that flow causes, and relax towards
// it until the head residual is below tolerance.
func (s *Solver) headFlowFixedPoint(flowAt func(h float64) float64, pipes PipeNetworkSpec, warmFlow float64) (q, h float64, ok bool) {
	h = pipes.TotalHead(math.Max(warmFlow, 0))
	for i := 0; i < s.cfg.MaxInnerIter; i++ {
		q = math.Max(0, flowAt(h))
		target := pipes.TotalHead(q)
		if math.Abs(target-h) <= s.cfg.HeadTol*math.Max(1, h) {
			return q, target, true
		}
		h += headDamping * (target - h)
	}
	return q, h, false
}

func (s *Solver) solveMPPT(pump PumpCurve, pipes PipeNetworkSpec, warmFlow, pAvail, vmp float64, curve PVCurve) OperatingPoint {
	pIn := pAvail * s.cfg.MPPTEfficiency

	q, h, ok := s.headFlowFixedPoint(func(h float64) float64 {
		return pump.FlowFromPower(pIn, h)
	}, pipes, warmFlow)
	if !ok {
		return OperatingPoint{PowerAvailable: pAvail, Status: StatusNonConvergent}
	}
	if q <= 0 {
		// the head that builds up once the pump turns exceeds what the
		// available power can push against
		return OperatingPoint{PowerAvailable: pAvail, Head: h, Status: StatusBelowStartup}
	}
	// the pump cannot absorb more than its fitted power range
	pUsed := math.Min(pIn, pump.Domain().MaxPower)
	return OperatingPoint{
		Voltage:        vmp,
		Current:        curve.Current(vmp),
		Power:          pUsed,
		FlowLpm:        q,
		Head:           h,
		PowerAvailable: pAvail,
		Status:         StatusConverged,
	}
}

// solveDirect bisects the array voltage for the current-match residual
// I_pv(V) - I_pump(V, H(V)), with the inner fixed point supplying the head
// consistent with the pump flow at each trial voltage.
func (s *Solver) solveDirect(curve PVCurve, pump PumpCurve, pipes PipeNetworkSpec, warmFlow, pAvail float64) OperatingPoint {
	voc := curve.OpenCircuitVoltage()
	warm := warmFlow
	inner := true

	residual := func(v float64) float64 {
		q, h, ok := s.headFlowFixedPoint(func(h float64) float64 {
			return pump.Flow(v, h)
		}, pipes, warm)
		if !ok {
			inner = false
		}
		warm = q
		return curve.Current(v) - pump.Current(v, h)
	}

	lo, hi := 0.0, voc
	fLo := residual(lo)
	if fLo < 0 {
		// the motor draws more than the array can source at any voltage
		return OperatingPoint{PowerAvailable: pAvail, Status: StatusBelowStartup}
	}

	iters := 0
	for ; iters < s.cfg.MaxOuterIter && hi-lo > s.cfg.VoltageTol*voc; iters++ {
		mid := (lo + hi) / 2
		if residual(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	if hi-lo > s.cfg.VoltageTol*voc || !inner {
		return OperatingPoint{PowerAvailable: pAvail, Status: StatusNonConvergent, Iterations: iters}
	}

	v := (lo + hi) / 2
	q, h, ok := s.headFlowFixedPoint(func(h float64) float64 {
		return pump.Flow(v, h)
	}, pipes, warm)
	if !ok {
		return OperatingPoint{PowerAvailable: pAvail, Status: StatusNonConvergent, Iterations: iters}
	}
	if q <= 0 || v < pump.Domain().MinVoltage {
		return OperatingPoint{PowerAvailable: pAvail, Head: h, Status: StatusBelowStartup, Iterations: iters}
	}
	i := curve.Current(v)
	return OperatingPoint{
		Voltage:        v,
		Current:        i,
		Power:          v * i,
		FlowLpm:        q,
		Head:           h,
		PowerAvailable: pAvail,
		Status:         StatusConverged,
		Iterations:     iters,
	}
}
