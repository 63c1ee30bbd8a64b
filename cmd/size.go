package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pvpump-sim/pvpump-sim/pvps"
	"github.com/pvpump-sim/pvpump-sim/pvps/sizing"
)

var (
	// CLI flags for the size subcommand
	sizeScenarioPath string  // Path to a scenario YAML with a sizing section
	sizeWeatherPath  string  // Path to an hourly weather CSV
	maxLLP           float64 // Requirement override: acceptable shortage probability
	sizeWorkers      int     // Worker pool size override
	targetCost       float64 // Early-stop life-cycle cost target
)

// sizeCmd searches the scenario's component catalogs for the cheapest
// feasible design
var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Search component catalogs for minimum-cost feasible designs",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := pvps.LoadScenario(sizeScenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if spec.Sizing == nil {
			logrus.Fatalf("scenario %q has no sizing section", sizeScenarioPath)
		}

		weatherPath = sizeWeatherPath
		weather, err := loadWeather()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		catalog := sizing.Catalog{}
		for _, p := range spec.Sizing.PVs {
			catalog.PVs = append(catalog.PVs, p.Build())
		}
		for _, p := range spec.Sizing.Pumps {
			catalog.Pumps = append(catalog.Pumps, p.Build())
		}
		for _, p := range spec.Sizing.Pipes {
			catalog.Pipes = append(catalog.Pipes, p.Build())
		}
		for _, r := range spec.Sizing.Reservoirs {
			catalog.Reservoirs = append(catalog.Reservoirs, r.Build())
		}

		req := sizing.Requirement{MaxLLP: spec.Sizing.MaxLLP}
		if cmd.Flags().Changed("max-llp") {
			req.MaxLLP = maxLLP
		}
		workers := spec.Sizing.Workers
		if sizeWorkers > 0 {
			workers = sizeWorkers
		}
		target := spec.Sizing.TargetCost
		if targetCost > 0 {
			target = targetCost
		}

		opt := &sizing.Optimizer{
			Base:       spec.System(),
			Cost:       spec.CostModel(),
			Req:        req,
			Workers:    workers,
			TargetCost: target,
		}

		startTime := time.Now()
		res, err := opt.Run(context.Background(), weather, catalog)
		switch {
		case errors.Is(err, pvps.ErrNoFeasibleDesign):
			fmt.Printf("No design in the catalog meets LLP <= %.1f%% "+
				"(%d candidates evaluated, %d failed)\n",
				100*req.MaxLLP, res.Evaluated, res.Failed)
			return
		case err != nil:
			logrus.Fatalf("sizing search failed: %v", err)
		}
		logrus.Infof("evaluated %d candidates in %s", res.Evaluated, time.Since(startTime))

		fmt.Printf("=== Feasible designs (LLP <= %.1f%%), ascending cost ===\n", 100*req.MaxLLP)
		for _, ev := range res.Ranked {
			fmt.Printf("%-60s llp=%5.2f%%  cost=$%.0f\n",
				ev.Design, 100*ev.Risk.LLP, ev.Cost)
		}
		fmt.Printf("Best: %s ($%.0f)\n", res.Best.Design, res.Best.Cost)
	},
}

// init sets up size flags and attaches the subcommand
func init() {
	sizeCmd.Flags().StringVar(&sizeScenarioPath, "scenario", "", "Path to the scenario YAML file (with sizing section)")
	sizeCmd.Flags().StringVar(&sizeWeatherPath, "weather", "", "Path to an hourly weather CSV")
	sizeCmd.Flags().Float64Var(&maxLLP, "max-llp", 0.05, "Acceptable shortage probability (overrides scenario)")
	sizeCmd.Flags().IntVar(&sizeWorkers, "workers", 0, "Worker pool size (0 = NumCPU)")
	sizeCmd.Flags().Float64Var(&targetCost, "target-cost", 0, "Stop early when a feasible design at or below this cost is found")

	_ = sizeCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(sizeCmd)
}
