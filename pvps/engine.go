package pvps

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/pvpump-sim/pvpump-sim/pvps/trace"
)

// SystemConfig assembles one complete pumping installation for simulation.
type SystemConfig struct {
	PV        PVArrayConfig
	Pump      MotorPumpSpec
	Pipes     PipeNetworkSpec
	Reservoir ReservoirSpec
	MPPT      *MPPTSpec // required for CouplingMPPT; ignored for direct

	Solver SolverConfig
	Demand DemandProfile // nil = no demand

	// DT is the step duration in hours. Zero means 1.0 (hourly).
	DT float64

	// MaxNonConvergentRatio aborts a run when the fraction of daylight
	// steps that failed to converge exceeds it. Zero means the default
	// (0.2); values >= 1 disable the safety valve.
	MaxNonConvergentRatio float64
}

const (
	defaultMaxNonConvRatio = 0.2
	// nonConvMinSample delays the ratio check until enough daylight steps
	// exist for the ratio to be meaningful.
	nonConvMinSample = 24
)

// SimulationEngine drives the hourly loop over a weather series. It owns
// the reservoir state for the duration of a run; results are handed to the
// caller on return.
type SimulationEngine struct {
	cfg       SystemConfig
	pvModel   PVModel
	pumpCurve PumpCurve
	solver    *Solver
	reservoir *Reservoir

	// Trace, when non-nil, records one entry per solved step.
	Trace *trace.RunTrace
}

// NewEngine validates the full configuration and builds the engine.
// All structural errors surface here, before any simulation work.
func NewEngine(cfg SystemConfig) (*SimulationEngine, error) {
	if err := cfg.Pipes.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Reservoir.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if cfg.DT < 0 {
		return nil, invalidConfigf("engine", "negative step duration %.2f", cfg.DT)
	}
	solverCfg := cfg.Solver
	if solverCfg.Coupling == "" {
		solverCfg.Coupling = CouplingMPPT
	}
	if solverCfg.Coupling == CouplingMPPT {
		if cfg.MPPT == nil {
			return nil, invalidConfigf("mppt", "mppt coupling requires an MPPT spec")
		}
		if err := cfg.MPPT.Validate(); err != nil {
			return nil, err
		}
		solverCfg.MPPTEfficiency = cfg.MPPT.Efficiency
	}

	pvModel, err := NewPVModel(cfg.PV)
	if err != nil {
		return nil, err
	}
	pumpCurve, err := cfg.Pump.Build()
	if err != nil {
		return nil, fmt.Errorf("pump %q: %w", cfg.Pump.Model, err)
	}

	return &SimulationEngine{
		cfg:       cfg,
		pvModel:   pvModel,
		pumpCurve: pumpCurve,
		solver:    NewSolver(solverCfg),
		reservoir: NewReservoir(cfg.Reservoir),
	}, nil
}

func (e *SimulationEngine) dt() float64 {
	if e.cfg.DT == 0 {
		return 1.0
	}
	return e.cfg.DT
}

func (e *SimulationEngine) maxNonConvRatio() float64 {
	if e.cfg.MaxNonConvergentRatio == 0 {
		return defaultMaxNonConvRatio
	}
	return e.cfg.MaxNonConvergentRatio
}

// Run simulates the whole weather series. Every input record produces
// exactly one step record; non-convergent steps are recorded with zero flow
// and flagged, never omitted. Deterministic: identical inputs give
// bit-identical results.
func (e *SimulationEngine) Run(weather WeatherSeries) (*SimulationResult, error) {
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	if err := validateDemand(e.cfg.Demand, len(weather)); err != nil {
		return nil, err
	}

	dt := e.dt()
	e.reservoir.Reset(e.cfg.Reservoir.StartingLevel)
	result := &SimulationResult{
		Steps: make([]StepRecord, 0, len(weather)),
		DT:    dt,
	}

	warmFlow := 0.0
	daylight, nonConv := 0, 0
	for i, w := range weather {
		demand := 0.0
		if e.cfg.Demand != nil {
			demand = e.cfg.Demand.FlowLpm(i)
		}

		var op OperatingPoint
		if w.Irradiance <= 0 {
			// night step: no solver invocation at all
			op = OperatingPoint{Status: StatusZeroIrradiance}
		} else {
			daylight++
			op = e.solver.Solve(e.pvModel.CurveAt(w), e.pumpCurve, e.cfg.Pipes, warmFlow)
		}
		if op.Status == StatusNonConvergent {
			nonConv++
			logrus.Warnf("[step %05d] operating point did not converge; recording zero flow", i)
		}
		warmFlow = op.FlowLpm

		overflow, deficit := e.reservoir.Advance(op.FlowLpm, demand, dt)
		result.Steps = append(result.Steps, StepRecord{
			Timestamp:  w.Timestamp,
			Irradiance: w.Irradiance,
			Voltage:    op.Voltage,
			Current:    op.Current,
			Power:      op.Power,
			PUnused:    math.Max(0, op.PowerAvailable-op.Power),
			FlowLpm:    op.FlowLpm,
			Head:       op.Head,
			DemandLpm:  demand,
			Level:      e.reservoir.Level(),
			Overflow:   overflow,
			Deficit:    deficit,
			Status:     op.Status,
		})
		if e.Trace != nil {
			e.Trace.Record(trace.StepRecord{
				Index:      i,
				Status:     string(op.Status),
				Iterations: op.Iterations,
				FlowLpm:    op.FlowLpm,
				Head:       op.Head,
				Power:      op.Power,
			})
		}

		if daylight >= nonConvMinSample {
			if ratio := float64(nonConv) / float64(daylight); ratio > e.maxNonConvRatio() {
				return nil, fmt.Errorf("step %d: %.0f%% of %d daylight steps failed: %w",
					i, 100*ratio, daylight, ErrNonConvergenceBudget)
			}
		}
	}

	result.finalize()
	logrus.Infof("simulation finished: %d steps, %.1f m3 pumped, %d non-convergent",
		len(result.Steps), result.PumpedVolume/1000, result.NonConvergentSteps)
	return result, nil
}
