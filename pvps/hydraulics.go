package pvps

import (
	"math"
	"strings"
)

// PipeNetworkSpec describes the hydraulic circuit between pump outlet and
// reservoir inlet. Immutable per run; TotalHead is a pure function of flow.
type PipeNetworkSpec struct {
	StaticHead  float64 // vertical lift [m]
	Length      float64 // total pipe length [m]
	Diameter    float64 // inner diameter [m]
	Material    string  // "plastic", "steel" or "concrete" (roughness lookup)
	FittingsK   float64 // sum of fitting loss coefficients [-]
	Roughness   float64 // explicit absolute roughness [m]; overrides Material
	Viscosity   float64 // kinematic viscosity [m2/s]; default water at 20 degC
	Price       float64 // installed cost [$]
}

// Absolute roughness by pipe material [m].
var materialRoughness = map[string]float64{
	"plastic":  1.5e-6,
	"steel":    4.5e-5,
	"concrete": 3.0e-4,
}

const (
	gravity          = 9.81    // [m/s2]
	waterViscosity20 = 1.0e-6  // kinematic viscosity of water at 20 degC [m2/s]
	lpmToM3s         = 1.0 / 60000.0
)

// Validate checks the pipe network parameters.
func (p PipeNetworkSpec) Validate() error {
	if p.StaticHead < 0 {
		return invalidConfigf("pipes", "negative static head %.1f", p.StaticHead)
	}
	if p.Length < 0 {
		return invalidConfigf("pipes", "negative length %.1f", p.Length)
	}
	if p.Length > 0 && p.Diameter <= 0 {
		return invalidConfigf("pipes", "diameter must be positive (got %.3f)", p.Diameter)
	}
	if p.FittingsK < 0 {
		return invalidConfigf("pipes", "negative fittings coefficient %.2f", p.FittingsK)
	}
	if p.Roughness == 0 && p.Material != "" {
		if _, ok := materialRoughness[strings.ToLower(p.Material)]; !ok {
			return invalidConfigf("pipes", "unknown material %q", p.Material)
		}
	}
	return nil
}

func (p PipeNetworkSpec) roughness() float64 {
	if p.Roughness > 0 {
		return p.Roughness
	}
	if r, ok := materialRoughness[strings.ToLower(p.Material)]; ok {
		return r
	}
	return materialRoughness["plastic"]
}

func (p PipeNetworkSpec) viscosity() float64 {
	if p.Viscosity > 0 {
		return p.Viscosity
	}
	return waterViscosity20
}

// HeadLoss returns the friction head loss [m] at flow [L/min], using
// Darcy-Weisbach with the Swamee-Jain explicit friction factor in the
// turbulent regime and 64/Re in the laminar regime. Monotonically
// non-decreasing in flow; zero at zero flow.
func (p PipeNetworkSpec) HeadLoss(flowLpm float64) float64 {
	if flowLpm <= 0 || p.Length <= 0 {
		return 0
	}
	area := math.Pi * p.Diameter * p.Diameter / 4
	vel := flowLpm * lpmToM3s / area
	re := vel * p.Diameter / p.viscosity()

	var f float64
	if re < 2300 {
		f = 64 / re
	} else {
		rel := p.roughness() / (3.7 * p.Diameter)
		f = 0.25 / math.Pow(math.Log10(rel+5.74/math.Pow(re, 0.9)), 2)
	}
	velHead := vel * vel / (2 * gravity)
	return (f*p.Length/p.Diameter + p.FittingsK) * velHead
}

// TotalHead returns the total dynamic head [m] the pump must work against
// at the given flow [L/min].
func (p PipeNetworkSpec) TotalHead(flowLpm float64) float64 {
	return p.StaticHead + p.HeadLoss(flowLpm)
}
