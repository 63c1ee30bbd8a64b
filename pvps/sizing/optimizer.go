package sizing

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pvpump-sim/pvpump-sim/pvps"
)

// Optimizer runs the sizing search: every catalog combination is simulated
// against the same weather and demand, scored for shortage risk and
// life-cycle cost, and the feasible candidates are ranked by cost.
type Optimizer struct {
	// Base carries the non-sized parts of the system: coupling mode,
	// MPPT, solver settings, demand profile, step duration. The sized
	// components are overwritten per candidate.
	Base pvps.SystemConfig
	Cost pvps.CostModel
	Req  Requirement

	// Workers bounds the worker pool. Zero means NumCPU.
	Workers int

	// TargetCost, when positive, stops the search early once a feasible
	// candidate at or below this life-cycle cost has been found. The
	// ranking then covers only the candidates evaluated so far.
	TargetCost float64
}

// SearchResult is the outcome of a sizing search.
type SearchResult struct {
	// Ranked holds the feasible candidates, ascending by life-cycle cost.
	Ranked []Evaluation
	// Best is the cheapest feasible candidate (first of Ranked).
	Best *Evaluation
	// All holds every completed evaluation, including infeasible and
	// failed candidates, in catalog order.
	All []Evaluation
	// Evaluated and Failed count completed and errored simulations.
	Evaluated int
	Failed    int
}

// Run executes the search. It returns pvps.ErrNoFeasibleDesign when the
// search space is exhausted without a qualifying candidate; configuration
// errors are returned before any simulation starts. Cancelling ctx stops
// the search; candidates not fully evaluated are not recorded.
func (o *Optimizer) Run(ctx context.Context, weather pvps.WeatherSeries, catalog Catalog) (*SearchResult, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := o.Req.Validate(); err != nil {
		return nil, err
	}
	if err := o.Cost.Validate(); err != nil {
		return nil, err
	}
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return &SearchResult{}, err
	}

	designs := catalog.designs()
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(designs) {
		workers = len(designs)
	}
	logrus.Infof("sizing search: %d candidates on %d workers", len(designs), workers)

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// fork-join: results are joined by candidate index, never through a
	// shared accumulator
	slots := make([]*Evaluation, len(designs))
	jobs := make(chan CandidateDesign)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				ev := o.evaluate(weather, d)
				slots[d.Index] = &ev
				if o.TargetCost > 0 && ev.Feasible && ev.Cost <= o.TargetCost {
					logrus.Infof("%s meets cost target %.0f; stopping search", d, o.TargetCost)
					cancel()
				}
			}
		}()
	}

feed:
	for _, d := range designs {
		select {
		case <-searchCtx.Done():
			break feed
		case jobs <- d:
		}
	}
	close(jobs)
	wg.Wait()

	res := &SearchResult{}
	for _, ev := range slots {
		if ev == nil {
			continue // cancelled before evaluation
		}
		res.All = append(res.All, *ev)
		res.Evaluated++
		if ev.Err != nil {
			res.Failed++
			logrus.Warnf("%s excluded: %v", ev.Design, ev.Err)
			continue
		}
		if ev.Feasible {
			res.Ranked = append(res.Ranked, *ev)
		}
	}
	sort.SliceStable(res.Ranked, func(i, j int) bool {
		if res.Ranked[i].Cost != res.Ranked[j].Cost {
			return res.Ranked[i].Cost < res.Ranked[j].Cost
		}
		return res.Ranked[i].Design.Index < res.Ranked[j].Design.Index
	})

	if ctx.Err() != nil && len(res.Ranked) == 0 {
		return res, ctx.Err()
	}
	if len(res.Ranked) == 0 {
		return res, pvps.ErrNoFeasibleDesign
	}
	res.Best = &res.Ranked[0]
	return res, nil
}

// evaluate runs the full simulation and analysis for one candidate. Any
// failure is captured in the evaluation, not propagated.
func (o *Optimizer) evaluate(weather pvps.WeatherSeries, d CandidateDesign) Evaluation {
	ev := Evaluation{Design: d}

	sys := o.Base
	sys.PV = d.PV
	sys.Pump = d.Pump
	sys.Pipes = d.Pipes
	sys.Reservoir = d.Reservoir

	engine, err := pvps.NewEngine(sys)
	if err != nil {
		ev.Err = err
		return ev
	}
	result, err := engine.Run(weather)
	if err != nil {
		ev.Err = err
		return ev
	}

	ev.Risk = pvps.AnalyzeShortage(result)
	ev.Cost = pvps.LifeCycleCost(sys, o.Cost)
	ev.Feasible = ev.Risk.LLP <= o.Req.MaxLLP
	logrus.Debugf("%s: llp=%.3f cost=%.0f feasible=%v", d, ev.Risk.LLP, ev.Cost, ev.Feasible)
	return ev
}
