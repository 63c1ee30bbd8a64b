package pvps

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RiskReport quantifies water-shortage risk over a simulation run.
type RiskReport struct {
	// LLP is the loss-of-load probability by volume: unserved demand
	// volume over total demand volume.
	LLP float64
	// TimeFraction is the fraction of demand-bearing steps with a
	// non-zero deficit.
	TimeFraction float64
	// Yearly breaks the same two metrics down per calendar year.
	Yearly []YearlyRisk
}

// YearlyRisk is the shortage risk of one calendar year of the run.
type YearlyRisk struct {
	Year         int
	LLP          float64
	TimeFraction float64
}

// AnalyzeShortage computes shortage-risk metrics from a result series.
// Pure function of its input.
func AnalyzeShortage(res *SimulationResult) RiskReport {
	type bucket struct {
		demand, deficit float64
		indicators      []float64 // 1 per demand step with deficit, else 0
	}
	total := &bucket{}
	years := map[int]*bucket{}
	order := []int{}

	add := func(b *bucket, s StepRecord) {
		demandVol := s.DemandLpm * 60 * res.DT
		b.demand += demandVol
		b.deficit += s.Deficit
		if demandVol > 0 {
			ind := 0.0
			if s.Deficit > 0 {
				ind = 1.0
			}
			b.indicators = append(b.indicators, ind)
		}
	}

	for _, s := range res.Steps {
		add(total, s)
		y := s.Timestamp.Year()
		if _, ok := years[y]; !ok {
			years[y] = &bucket{}
			order = append(order, y)
		}
		add(years[y], s)
	}

	metrics := func(b *bucket) (llp, frac float64) {
		if b.demand > 0 {
			llp = b.deficit / b.demand
		}
		if len(b.indicators) > 0 {
			frac = stat.Mean(b.indicators, nil)
		}
		return llp, frac
	}

	report := RiskReport{}
	report.LLP, report.TimeFraction = metrics(total)
	for _, y := range order {
		llp, frac := metrics(years[y])
		report.Yearly = append(report.Yearly, YearlyRisk{Year: y, LLP: llp, TimeFraction: frac})
	}
	return report
}

// CostModel configures the discounted life-cycle cost computation.
type CostModel struct {
	DiscountRate        float64 // yearly discount rate, e.g. 0.05
	LifetimeYears       int     // economic lifetime of the installation
	OpexFractionPerYear float64 // yearly maintenance as a fraction of capital

	PumpReplacementYears int // pump replaced every N years (0 = never)
	MPPTReplacementYears int // MPPT replaced every N years (0 = never)
}

// Validate checks the cost model parameters.
func (c CostModel) Validate() error {
	if c.DiscountRate < 0 || c.DiscountRate >= 1 {
		return invalidConfigf("cost", "discount rate %.2f outside [0, 1)", c.DiscountRate)
	}
	if c.LifetimeYears <= 0 {
		return invalidConfigf("cost", "lifetime must be positive (got %d)", c.LifetimeYears)
	}
	if c.OpexFractionPerYear < 0 {
		return invalidConfigf("cost", "negative opex fraction %.3f", c.OpexFractionPerYear)
	}
	if c.PumpReplacementYears < 0 || c.MPPTReplacementYears < 0 {
		return invalidConfigf("cost", "negative replacement period")
	}
	return nil
}

// LifeCycleCost computes the discounted sum of capital, scheduled component
// replacements, and yearly maintenance over the system's economic lifetime.
// Pure function of its inputs.
func LifeCycleCost(sys SystemConfig, cm CostModel) float64 {
	capital := sys.PV.Price + sys.Pump.Price + sys.Pipes.Price + sys.Reservoir.Price
	if sys.MPPT != nil {
		capital += sys.MPPT.Price
	}

	npv := capital
	opex := cm.OpexFractionPerYear * capital
	for y := 1; y <= cm.LifetimeYears; y++ {
		discount := math.Pow(1+cm.DiscountRate, float64(y))
		cash := opex
		if cm.PumpReplacementYears > 0 && y%cm.PumpReplacementYears == 0 && y < cm.LifetimeYears {
			cash += sys.Pump.Price
		}
		if sys.MPPT != nil && cm.MPPTReplacementYears > 0 && y%cm.MPPTReplacementYears == 0 && y < cm.LifetimeYears {
			cash += sys.MPPT.Price
		}
		npv += cash / discount
	}
	return npv
}
