package pvps

import (
	"fmt"
	"math"
)

// PVModuleParams are the datasheet parameters of a single module at STC
// (1000 W/m2, 25 degC cell temperature).
type PVModuleParams struct {
	VocSTC   float64 // open-circuit voltage [V]
	IscSTC   float64 // short-circuit current [A]
	VmpSTC   float64 // maximum-power-point voltage [V]
	ImpSTC   float64 // maximum-power-point current [A]
	BetaVoc  float64 // Voc temperature coefficient [1/K], typically negative
	AlphaIsc float64 // Isc temperature coefficient [1/K], typically small positive
}

// PVArrayConfig describes the PV generator: module parameters, wiring, and
// loss/thermal model settings. Immutable per simulation run.
type PVArrayConfig struct {
	Module          PVModuleParams
	SeriesModules   int     // modules per string
	ParallelStrings int     // strings in parallel
	Derate          float64 // flat loss factor on current (soiling, wiring); default 1.0
	FaimanU0        float64 // Faiman thermal model constant term [W/m2K]; default 25.0
	FaimanU1        float64 // Faiman thermal model wind term [W s/m3 K]; default 6.84
	Price           float64 // capital cost of the array [$]
}

// Defaults used when thermal/loss fields are left zero.
const (
	defaultFaimanU0 = 25.0
	defaultFaimanU1 = 6.84
)

// Validate checks the array configuration before a run.
func (c PVArrayConfig) Validate() error {
	m := c.Module
	if m.VocSTC <= 0 || m.IscSTC <= 0 {
		return invalidConfigf("pv", "module Voc/Isc must be positive")
	}
	if m.VmpSTC <= 0 || m.VmpSTC >= m.VocSTC {
		return invalidConfigf("pv", "Vmp %.1f must be in (0, Voc=%.1f)", m.VmpSTC, m.VocSTC)
	}
	if m.ImpSTC <= 0 || m.ImpSTC >= m.IscSTC {
		return invalidConfigf("pv", "Imp %.2f must be in (0, Isc=%.2f)", m.ImpSTC, m.IscSTC)
	}
	if c.SeriesModules < 1 || c.ParallelStrings < 1 {
		return invalidConfigf("pv", "module counts must be >= 1 (got %dx%d)", c.SeriesModules, c.ParallelStrings)
	}
	if c.Derate < 0 || c.Derate > 1 {
		return invalidConfigf("pv", "derate %.2f outside [0, 1]", c.Derate)
	}
	return nil
}

// RatedPower returns the array nameplate power at STC [W].
func (c PVArrayConfig) RatedPower() float64 {
	return c.Module.VmpSTC * c.Module.ImpSTC * float64(c.SeriesModules*c.ParallelStrings)
}

func (c PVArrayConfig) String() string {
	return fmt.Sprintf("pv[%dx%d %0.fWp]", c.SeriesModules, c.ParallelStrings,
		c.Module.VmpSTC*c.Module.ImpSTC)
}

// parametricPVModel converts weather into a single-diode-shaped I-V curve.
// The diode ideality scale is calibrated once from the STC datasheet points
// so that the modeled maximum power point reproduces (VmpSTC, ImpSTC).
type parametricPVModel struct {
	cfg    PVArrayConfig
	aSTC   float64 // per-module diode scale [V] at STC
	derate float64
	u0, u1 float64
}

// NewPVModel builds the library's default PV generator model from an array
// configuration. The config must validate.
func NewPVModel(cfg PVArrayConfig) (PVModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := cfg.Module
	// I(V) = IL * (1 - exp((V-Voc)/a)); forcing the curve through the MPP
	// gives a = (Vmp - Voc) / ln(1 - Imp/Isc).
	a := (m.VmpSTC - m.VocSTC) / math.Log(1-m.ImpSTC/m.IscSTC)
	derate := cfg.Derate
	if derate == 0 {
		derate = 1.0
	}
	u0, u1 := cfg.FaimanU0, cfg.FaimanU1
	if u0 == 0 {
		u0 = defaultFaimanU0
	}
	if u1 == 0 {
		u1 = defaultFaimanU1
	}
	return &parametricPVModel{cfg: cfg, aSTC: a, derate: derate, u0: u0, u1: u1}, nil
}

// CellTemp applies the Faiman steady-state thermal model.
func (p *parametricPVModel) CellTemp(w WeatherRecord) float64 {
	return w.AirTemp + w.Irradiance/(p.u0+p.u1*w.WindSpeed)
}

func (p *parametricPVModel) CurveAt(w WeatherRecord) PVCurve {
	if w.Irradiance <= 0 {
		return nil
	}
	m := p.cfg.Module
	tc := p.CellTemp(w)
	dT := tc - 25.0
	g := w.Irradiance / 1000.0

	iscMod := m.IscSTC * g * (1 + m.AlphaIsc*dT) * p.derate
	if iscMod <= 0 {
		return nil
	}
	// Voc shifts linearly with temperature and logarithmically with
	// irradiance (diode scale a is the natural log coefficient).
	vocMod := m.VocSTC*(1+m.BetaVoc*dT) + p.aSTC*math.Log(g)
	if vocMod <= 0 {
		return nil
	}
	aMod := p.aSTC * vocMod / m.VocSTC

	ns := float64(p.cfg.SeriesModules)
	np := float64(p.cfg.ParallelStrings)
	return &diodeCurve{
		il:  iscMod * np,
		voc: vocMod * ns,
		a:   aMod * ns,
	}
}

// diodeCurve is the exponential-knee array characteristic
// I(V) = IL * (1 - exp((V - Voc)/a)), clamped to non-negative current.
type diodeCurve struct {
	il  float64 // light current (array short-circuit current) [A]
	voc float64 // array open-circuit voltage [V]
	a   float64 // diode scale [V]
}

func (c *diodeCurve) Current(v float64) float64 {
	if v <= 0 {
		return c.il
	}
	if v >= c.voc {
		return 0
	}
	return c.il * (1 - math.Exp((v-c.voc)/c.a))
}

func (c *diodeCurve) Power(v float64) float64 {
	return v * c.Current(v)
}

func (c *diodeCurve) OpenCircuitVoltage() float64 { return c.voc }

// MaxPower locates the maximum power point with a golden-section search over
// [0, Voc]. The power curve is unimodal so the search is exact to tolerance.
func (c *diodeCurve) MaxPower() (float64, float64) {
	const invPhi = 0.6180339887498949
	lo, hi := 0.0, c.voc
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	f1, f2 := c.Power(x1), c.Power(x2)
	for hi-lo > 1e-6*c.voc {
		if f1 < f2 {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invPhi*(hi-lo)
			f2 = c.Power(x2)
		} else {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invPhi*(hi-lo)
			f1 = c.Power(x1)
		}
	}
	v := (lo + hi) / 2
	return c.Power(v), v
}

// MPPTSpec describes the power-conditioning stage between array and pump
// for mppt-coupled systems.
type MPPTSpec struct {
	Efficiency float64 // power conversion efficiency in (0, 1]
	Price      float64 // capital cost [$]
}

// Validate checks the MPPT parameters.
func (m MPPTSpec) Validate() error {
	if m.Efficiency <= 0 || m.Efficiency > 1 {
		return invalidConfigf("mppt", "efficiency %.2f outside (0, 1]", m.Efficiency)
	}
	return nil
}
