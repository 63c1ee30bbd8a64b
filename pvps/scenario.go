package pvps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioSpec is the YAML description of a complete installation, used by
// the CLI. Loaded via LoadScenario(path) and converted with System().
type ScenarioSpec struct {
	Coupling string        `yaml:"coupling"` // "mppt" (default) or "direct"
	PV       PVSpec        `yaml:"pv"`
	MPPT     *MPPTYAML     `yaml:"mppt,omitempty"`
	Pump     PumpSpec      `yaml:"pump"`
	Pipes    PipesSpec     `yaml:"pipes"`
	Resv     ReservoirYAML `yaml:"reservoir"`
	Demand   DemandSpec    `yaml:"demand"`
	Solver   SolverYAML    `yaml:"solver,omitempty"`
	Engine   EngineYAML    `yaml:"engine,omitempty"`
	Cost     CostYAML      `yaml:"cost,omitempty"`
	Sizing   *SizingYAML   `yaml:"sizing,omitempty"`
}

// SizingYAML describes the catalog and requirement of a sizing search.
// Component lists replace the corresponding single entries of the scenario.
type SizingYAML struct {
	MaxLLP     float64         `yaml:"max_llp"`
	TargetCost float64         `yaml:"target_cost,omitempty"`
	Workers    int             `yaml:"workers,omitempty"`
	PVs        []PVSpec        `yaml:"pvs"`
	Pumps      []PumpSpec      `yaml:"pumps"`
	Pipes      []PipesSpec     `yaml:"pipes"`
	Reservoirs []ReservoirYAML `yaml:"reservoirs"`
}

// PVSpec mirrors PVArrayConfig in YAML form.
type PVSpec struct {
	Module struct {
		VocSTC   float64 `yaml:"voc_stc"`
		IscSTC   float64 `yaml:"isc_stc"`
		VmpSTC   float64 `yaml:"vmp_stc"`
		ImpSTC   float64 `yaml:"imp_stc"`
		BetaVoc  float64 `yaml:"beta_voc"`
		AlphaIsc float64 `yaml:"alpha_isc"`
	} `yaml:"module"`
	SeriesModules   int     `yaml:"series_modules"`
	ParallelStrings int     `yaml:"parallel_strings"`
	Derate          float64 `yaml:"derate,omitempty"`
	Price           float64 `yaml:"price,omitempty"`
}

// MPPTYAML mirrors MPPTSpec in YAML form.
type MPPTYAML struct {
	Efficiency float64 `yaml:"efficiency"`
	Price      float64 `yaml:"price,omitempty"`
}

// PumpSpec mirrors MotorPumpSpec in YAML form.
type PumpSpec struct {
	Model      string          `yaml:"model"`
	Price      float64         `yaml:"price,omitempty"`
	Parametric *ParametricYAML `yaml:"parametric,omitempty"`
	Table      *TableYAML      `yaml:"table,omitempty"`
}

// ParametricYAML carries fitted pump polynomial coefficients.
type ParametricYAML struct {
	CurrentVH PolyVHYAML `yaml:"current_vh"`
	FlowVH    PolyQYAML  `yaml:"flow_vh"`
	FlowPH    PolyQYAML  `yaml:"flow_ph"`
	Domain    DomainYAML `yaml:"domain"`
}

// PolyVHYAML mirrors PumpPolyVH.
type PolyVHYAML struct {
	A  float64 `yaml:"a"`
	V1 float64 `yaml:"v1"`
	V2 float64 `yaml:"v2"`
	V3 float64 `yaml:"v3"`
	H1 float64 `yaml:"h1"`
	H2 float64 `yaml:"h2"`
	H3 float64 `yaml:"h3"`
	VH float64 `yaml:"vh"`
}

// PolyQYAML mirrors PumpPolyQ.
type PolyQYAML struct {
	A  float64 `yaml:"a"`
	X1 float64 `yaml:"x1"`
	X2 float64 `yaml:"x2"`
	H1 float64 `yaml:"h1"`
	H2 float64 `yaml:"h2"`
	XH float64 `yaml:"xh"`
}

// DomainYAML mirrors PumpDomain.
type DomainYAML struct {
	MinVoltage float64 `yaml:"min_voltage"`
	MaxVoltage float64 `yaml:"max_voltage"`
	MinHead    float64 `yaml:"min_head"`
	MaxHead    float64 `yaml:"max_head"`
	MinPower   float64 `yaml:"min_power"`
	MaxPower   float64 `yaml:"max_power"`
}

// TableYAML carries tabulated datasheet samples.
type TableYAML struct {
	Voltages []struct {
		Voltage  float64   `yaml:"voltage"`
		Heads    []float64 `yaml:"heads"`
		Flows    []float64 `yaml:"flows"`
		Currents []float64 `yaml:"currents"`
	} `yaml:"voltages"`
}

// PipesSpec mirrors PipeNetworkSpec in YAML form.
type PipesSpec struct {
	StaticHead float64 `yaml:"static_head"`
	Length     float64 `yaml:"length"`
	Diameter   float64 `yaml:"diameter"`
	Material   string  `yaml:"material,omitempty"`
	FittingsK  float64 `yaml:"fittings_k,omitempty"`
	Price      float64 `yaml:"price,omitempty"`
}

// ReservoirYAML mirrors ReservoirSpec in YAML form.
type ReservoirYAML struct {
	Capacity      float64 `yaml:"capacity"`
	StartingLevel float64 `yaml:"starting_level"`
	Price         float64 `yaml:"price,omitempty"`
}

// DemandSpec selects a demand profile: a constant flow rate or a repeated
// pattern (typically 24 hourly values).
type DemandSpec struct {
	ConstantLpm float64   `yaml:"constant_lpm,omitempty"`
	PatternLpm  []float64 `yaml:"pattern_lpm,omitempty"`
}

// SolverYAML mirrors the solver tolerances.
type SolverYAML struct {
	VoltageTol   float64 `yaml:"voltage_tol,omitempty"`
	HeadTol      float64 `yaml:"head_tol,omitempty"`
	MaxOuterIter int     `yaml:"max_outer_iter,omitempty"`
	MaxInnerIter int     `yaml:"max_inner_iter,omitempty"`
}

// EngineYAML mirrors engine-level settings.
type EngineYAML struct {
	DTHours               float64 `yaml:"dt_hours,omitempty"`
	MaxNonConvergentRatio float64 `yaml:"max_non_convergent_ratio,omitempty"`
}

// CostYAML mirrors CostModel in YAML form.
type CostYAML struct {
	DiscountRate         float64 `yaml:"discount_rate"`
	LifetimeYears        int     `yaml:"lifetime_years"`
	OpexFractionPerYear  float64 `yaml:"opex_fraction_per_year,omitempty"`
	PumpReplacementYears int     `yaml:"pump_replacement_years,omitempty"`
	MPPTReplacementYears int     `yaml:"mppt_replacement_years,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %q: %w", path, err)
	}
	var spec ScenarioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", path, err)
	}
	return &spec, nil
}

// Build converts a PVSpec into the runtime array configuration.
func (p PVSpec) Build() PVArrayConfig {
	return PVArrayConfig{
		Module: PVModuleParams{
			VocSTC:   p.Module.VocSTC,
			IscSTC:   p.Module.IscSTC,
			VmpSTC:   p.Module.VmpSTC,
			ImpSTC:   p.Module.ImpSTC,
			BetaVoc:  p.Module.BetaVoc,
			AlphaIsc: p.Module.AlphaIsc,
		},
		SeriesModules:   p.SeriesModules,
		ParallelStrings: p.ParallelStrings,
		Derate:          p.Derate,
		Price:           p.Price,
	}
}

// Build converts a PipesSpec into the runtime pipe network spec.
func (p PipesSpec) Build() PipeNetworkSpec {
	return PipeNetworkSpec{
		StaticHead: p.StaticHead,
		Length:     p.Length,
		Diameter:   p.Diameter,
		Material:   p.Material,
		FittingsK:  p.FittingsK,
		Price:      p.Price,
	}
}

// Build converts a ReservoirYAML into the runtime reservoir spec.
func (r ReservoirYAML) Build() ReservoirSpec {
	return ReservoirSpec{
		Capacity:      r.Capacity,
		StartingLevel: r.StartingLevel,
		Price:         r.Price,
	}
}

// System converts the YAML spec into the runtime configuration. Structural
// validation happens in NewEngine, not here.
func (s *ScenarioSpec) System() SystemConfig {
	cfg := SystemConfig{
		PV:        s.PV.Build(),
		Pump:      s.Pump.Build(),
		Pipes:     s.Pipes.Build(),
		Reservoir: s.Resv.Build(),
		Solver: SolverConfig{
			Coupling:     CouplingMode(s.Coupling),
			VoltageTol:   s.Solver.VoltageTol,
			HeadTol:      s.Solver.HeadTol,
			MaxOuterIter: s.Solver.MaxOuterIter,
			MaxInnerIter: s.Solver.MaxInnerIter,
		},
		DT:                    s.Engine.DTHours,
		MaxNonConvergentRatio: s.Engine.MaxNonConvergentRatio,
	}
	if s.MPPT != nil {
		cfg.MPPT = &MPPTSpec{Efficiency: s.MPPT.Efficiency, Price: s.MPPT.Price}
	}
	if len(s.Demand.PatternLpm) > 0 {
		cfg.Demand = RepeatedDemand(s.Demand.PatternLpm)
	} else if s.Demand.ConstantLpm > 0 {
		cfg.Demand = ConstantDemand(s.Demand.ConstantLpm)
	}
	return cfg
}

// Build converts a PumpSpec into the runtime motor-pump spec.
func (p PumpSpec) Build() MotorPumpSpec {
	spec := MotorPumpSpec{Model: p.Model, Price: p.Price}
	if p.Parametric != nil {
		c := p.Parametric
		spec.Parametric = &ParametricPumpCoeffs{
			CurrentVH: PumpPolyVH(c.CurrentVH),
			FlowVH:    PumpPolyQ(c.FlowVH),
			FlowPH:    PumpPolyQ(c.FlowPH),
			Dom: PumpDomain{
				MinVoltage: c.Domain.MinVoltage,
				MaxVoltage: c.Domain.MaxVoltage,
				MinHead:    c.Domain.MinHead,
				MaxHead:    c.Domain.MaxHead,
				MinPower:   c.Domain.MinPower,
				MaxPower:   c.Domain.MaxPower,
			},
		}
	}
	if p.Table != nil {
		table := &PumpTable{}
		for _, v := range p.Table.Voltages {
			table.Voltages = append(table.Voltages, VoltageSamples{
				Voltage:  v.Voltage,
				Heads:    v.Heads,
				Flows:    v.Flows,
				Currents: v.Currents,
			})
		}
		spec.Table = table
	}
	return spec
}

// CostModel converts the YAML cost section.
func (s *ScenarioSpec) CostModel() CostModel {
	return CostModel{
		DiscountRate:         s.Cost.DiscountRate,
		LifetimeYears:        s.Cost.LifetimeYears,
		OpexFractionPerYear:  s.Cost.OpexFractionPerYear,
		PumpReplacementYears: s.Cost.PumpReplacementYears,
		MPPTReplacementYears: s.Cost.MPPTReplacementYears,
	}
}
