package pvps

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// PumpPolyVH is a fitted cubic polynomial in voltage and head, the layout
// used for the motor current characteristic I(V, H):
//
//	I = A + V1*v + V2*v^2 + V3*v^3 + H1*h + H2*h^2 + H3*h^3 + VH*v*h
type PumpPolyVH struct {
	A, V1, V2, V3, H1, H2, H3, VH float64
}

// Eval evaluates the polynomial at (v, h).
func (p PumpPolyVH) Eval(v, h float64) float64 {
	return p.A + p.V1*v + p.V2*v*v + p.V3*v*v*v +
		p.H1*h + p.H2*h*h + p.H3*h*h*h + p.VH*v*h
}

// PumpPolyQ is a fitted quadratic in one electrical variable (voltage or
// power) and head, the layout used for the flow characteristics Q(V, H)
// and Q(P, H):
//
//	Q = A + X1*x + X2*x^2 + H1*h + H2*h^2 + XH*x*h
type PumpPolyQ struct {
	A, X1, X2, H1, H2, XH float64
}

// Eval evaluates the polynomial at (x, h).
func (p PumpPolyQ) Eval(x, h float64) float64 {
	return p.A + p.X1*x + p.X2*x*x + p.H1*h + p.H2*h*h + p.XH*x*h
}

// MotorPumpSpec describes one candidate motor-pump. Exactly one of
// Parametric or Table must be set; Build turns the spec into a PumpCurve.
type MotorPumpSpec struct {
	Model string
	Price float64 // capital cost [$]

	Parametric *ParametricPumpCoeffs
	Table      *PumpTable
}

// Build constructs the pump characteristic from the spec.
func (s MotorPumpSpec) Build() (PumpCurve, error) {
	switch {
	case s.Parametric != nil && s.Table != nil:
		return nil, invalidConfigf("pump", "%s: both parametric and tabulated data given", s.Model)
	case s.Parametric != nil:
		return newParametricPump(*s.Parametric)
	case s.Table != nil:
		return newTabulatedPump(*s.Table)
	default:
		return nil, invalidConfigf("pump", "%s: no characteristic data given", s.Model)
	}
}

// ParametricPumpCoeffs carries fitted curve coefficients and their validity
// domain, as produced by datasheet curve fitting (external to this library).
type ParametricPumpCoeffs struct {
	CurrentVH PumpPolyVH // I(V, H)
	FlowVH    PumpPolyQ  // Q(V, H)
	FlowPH    PumpPolyQ  // Q(P, H)
	Dom       PumpDomain
}

// parametricPump evaluates fitted polynomials within their domain and
// reports zero flow outside it.
type parametricPump struct {
	c ParametricPumpCoeffs
}

func newParametricPump(c ParametricPumpCoeffs) (PumpCurve, error) {
	d := c.Dom
	if d.MaxVoltage <= d.MinVoltage || d.MaxHead <= d.MinHead || d.MaxPower <= d.MinPower {
		return nil, invalidConfigf("pump", "degenerate domain %+v", d)
	}
	if d.MinHead < 0 || d.MinPower < 0 || d.MinVoltage < 0 {
		return nil, invalidConfigf("pump", "negative domain bound %+v", d)
	}
	return &parametricPump{c: c}, nil
}

func (p *parametricPump) Domain() PumpDomain { return p.c.Dom }

func (p *parametricPump) FlowFromPower(pw, h float64) float64 {
	d := p.c.Dom
	if h < d.MinHead || h > d.MaxHead {
		return 0
	}
	if pw < d.MinPower {
		return 0
	}
	// beyond the fitted power range the pump cannot absorb more
	pw = math.Min(pw, d.MaxPower)
	return math.Max(0, p.c.FlowPH.Eval(pw, h))
}

func (p *parametricPump) Flow(v, h float64) float64 {
	d := p.c.Dom
	if v < d.MinVoltage || h < d.MinHead || h > d.MaxHead {
		return 0
	}
	v = math.Min(v, d.MaxVoltage)
	return math.Max(0, p.c.FlowVH.Eval(v, h))
}

func (p *parametricPump) Current(v, h float64) float64 {
	d := p.c.Dom
	v = clamp(v, d.MinVoltage, d.MaxVoltage)
	h = clamp(h, d.MinHead, d.MaxHead)
	return math.Max(0, p.c.CurrentVH.Eval(v, h))
}

// MinimumPower bisects the fitted Q(P, H) polynomial for its zero crossing
// at head h. Returns +Inf when the pump cannot produce flow at that head.
func (p *parametricPump) MinimumPower(h float64) float64 {
	d := p.c.Dom
	if h < d.MinHead || h > d.MaxHead {
		return math.Inf(1)
	}
	if p.c.FlowPH.Eval(d.MaxPower, h) <= 0 {
		return math.Inf(1)
	}
	if p.c.FlowPH.Eval(d.MinPower, h) > 0 {
		// positive flow at the lowest fitted power: the datasheet floor
		// is the effective threshold
		return d.MinPower
	}
	lo, hi := d.MinPower, d.MaxPower
	for i := 0; i < 64 && hi-lo > 1e-9*d.MaxPower; i++ {
		mid := (lo + hi) / 2
		if p.c.FlowPH.Eval(mid, h) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// PumpTable carries raw datasheet samples: for each test voltage, matched
// slices of head, flow and current along the pump curve.
type PumpTable struct {
	Voltages []VoltageSamples
}

// VoltageSamples is one datasheet test series at a fixed supply voltage.
// Heads must be strictly increasing; slices must have equal length >= 2.
type VoltageSamples struct {
	Voltage  float64
	Heads    []float64 // [m]
	Flows    []float64 // [L/min]
	Currents []float64 // [A]
}

// tabulatedPump interpolates datasheet samples: piecewise-linear along head
// within each voltage series, linear blend across adjacent voltages.
type tabulatedPump struct {
	voltages []float64
	series   []voltageSeries
	dom      PumpDomain
}

type voltageSeries struct {
	flowAtHead    interp.PiecewiseLinear
	currentAtHead interp.PiecewiseLinear
	minHead       float64
	maxHead       float64
}

func newTabulatedPump(t PumpTable) (PumpCurve, error) {
	if len(t.Voltages) == 0 {
		return nil, invalidConfigf("pump", "empty pump table")
	}
	vs := make([]VoltageSamples, len(t.Voltages))
	copy(vs, t.Voltages)
	sort.Slice(vs, func(i, j int) bool { return vs[i].Voltage < vs[j].Voltage })

	tp := &tabulatedPump{
		dom: PumpDomain{
			MinVoltage: vs[0].Voltage,
			MaxVoltage: vs[len(vs)-1].Voltage,
			MinHead:    math.Inf(1),
			MinPower:   math.Inf(1),
		},
	}
	for _, s := range vs {
		if len(s.Heads) < 2 || len(s.Heads) != len(s.Flows) || len(s.Heads) != len(s.Currents) {
			return nil, invalidConfigf("pump", "voltage %.0fV: need matched head/flow/current slices of length >= 2", s.Voltage)
		}
		var ser voltageSeries
		if err := ser.flowAtHead.Fit(s.Heads, s.Flows); err != nil {
			return nil, fmt.Errorf("pump table at %.0fV: fit flow: %w", s.Voltage, err)
		}
		if err := ser.currentAtHead.Fit(s.Heads, s.Currents); err != nil {
			return nil, fmt.Errorf("pump table at %.0fV: fit current: %w", s.Voltage, err)
		}
		ser.minHead = s.Heads[0]
		ser.maxHead = s.Heads[len(s.Heads)-1]
		tp.dom.MinHead = math.Min(tp.dom.MinHead, ser.minHead)
		tp.dom.MaxHead = math.Max(tp.dom.MaxHead, ser.maxHead)
		for i := range s.Heads {
			pw := s.Voltage * s.Currents[i]
			tp.dom.MinPower = math.Min(tp.dom.MinPower, pw)
			tp.dom.MaxPower = math.Max(tp.dom.MaxPower, pw)
		}
		tp.voltages = append(tp.voltages, s.Voltage)
		tp.series = append(tp.series, ser)
	}
	return tp, nil
}

func (t *tabulatedPump) Domain() PumpDomain { return t.dom }

// blend returns the two voltage series bracketing v and the blend weight of
// the upper one. Voltages outside the table collapse onto the edge series.
func (t *tabulatedPump) blend(v float64) (lo, hi int, w float64) {
	n := len(t.voltages)
	if v <= t.voltages[0] {
		return 0, 0, 0
	}
	if v >= t.voltages[n-1] {
		return n - 1, n - 1, 0
	}
	hi = sort.SearchFloat64s(t.voltages, v)
	lo = hi - 1
	w = (v - t.voltages[lo]) / (t.voltages[hi] - t.voltages[lo])
	return lo, hi, w
}

func (t *tabulatedPump) seriesFlow(i int, h float64) float64 {
	s := t.series[i]
	if h > s.maxHead {
		return 0 // head beyond this series' shut-off point
	}
	return math.Max(0, s.flowAtHead.Predict(clamp(h, s.minHead, s.maxHead)))
}

func (t *tabulatedPump) seriesCurrent(i int, h float64) float64 {
	s := t.series[i]
	return math.Max(0, s.currentAtHead.Predict(clamp(h, s.minHead, s.maxHead)))
}

func (t *tabulatedPump) Flow(v, h float64) float64 {
	if v < t.dom.MinVoltage {
		return 0
	}
	lo, hi, w := t.blend(v)
	return (1-w)*t.seriesFlow(lo, h) + w*t.seriesFlow(hi, h)
}

func (t *tabulatedPump) Current(v, h float64) float64 {
	lo, hi, w := t.blend(v)
	return (1-w)*t.seriesCurrent(lo, h) + w*t.seriesCurrent(hi, h)
}

// powerFlowPoints returns (power, flow) samples at head h, one per voltage
// series, ordered by power.
func (t *tabulatedPump) powerFlowPoints(h float64) ([]float64, []float64) {
	type pq struct{ p, q float64 }
	pts := make([]pq, 0, len(t.voltages))
	for i, v := range t.voltages {
		pts = append(pts, pq{p: v * t.seriesCurrent(i, h), q: t.seriesFlow(i, h)})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].p < pts[j].p })
	ps := make([]float64, len(pts))
	qs := make([]float64, len(pts))
	for i, pt := range pts {
		ps[i] = pt.p
		qs[i] = pt.q
	}
	return ps, qs
}

func (t *tabulatedPump) FlowFromPower(pw, h float64) float64 {
	if h > t.dom.MaxHead {
		return 0
	}
	ps, qs := t.powerFlowPoints(h)
	if pw < ps[0] {
		return 0
	}
	if len(ps) == 1 || pw >= ps[len(ps)-1] {
		return qs[len(qs)-1]
	}
	i := sort.SearchFloat64s(ps, pw)
	if ps[i] == pw {
		return qs[i]
	}
	lo := i - 1
	w := (pw - ps[lo]) / (ps[i] - ps[lo])
	return math.Max(0, (1-w)*qs[lo]+w*qs[i])
}

func (t *tabulatedPump) MinimumPower(h float64) float64 {
	if h > t.dom.MaxHead {
		return math.Inf(1)
	}
	ps, qs := t.powerFlowPoints(h)
	for i := range ps {
		if qs[i] > 0 {
			if i == 0 {
				return ps[0]
			}
			// interpolate the zero crossing between the dead and live points
			w := qs[i] / (qs[i] - qs[i-1])
			return ps[i] - w*(ps[i]-ps[i-1])
		}
	}
	return math.Inf(1)
}
