// Package pvps models and sizes photovoltaic water-pumping installations:
// a PV generator feeding a motor-pump through an optional MPPT stage,
// pushing water through a pipe network into a reservoir, under hourly
// weather and demand.
//
// # Reading Guide
//
// Start with these three files to understand the simulation core:
//   - solver.go: the coupled operating-point search (outer voltage
//     bisection, inner head<->flow fixed point)
//   - engine.go: the hourly loop, reservoir ownership, and non-convergence
//     handling
//   - result.go: the per-step record sequence and run aggregates
//
// # Architecture
//
// The package defines the component models and the engine; supporting
// layers live alongside and in sub-packages:
//   - curves.go, pv.go, pump.go: PV and pump characteristics with
//     {Parametric, Tabulated} variants behind small interfaces
//   - hydraulics.go: pure head-loss model (Darcy-Weisbach)
//   - analysis.go: shortage probability and life-cycle cost
//   - scenario.go: YAML scenario loading for the CLI
//   - pvps/trace: per-step solve trace recording
//   - pvps/sizing: catalog search on a worker pool
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - PVModel / PVCurve: irradiance-to-characteristic conversion is
//     external; the built-in parametric model is one implementation
//   - PumpCurve: fitted-polynomial or interpolated-datasheet pump behavior
//   - DemandProfile: water demand per step
package pvps
