package pvps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvpump-sim/pvpump-sim/pvps/trace"
)

func TestNewEngine_FailsFastOnBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SystemConfig)
	}{
		{"negative reservoir capacity", func(c *SystemConfig) { c.Reservoir.Capacity = -10 }},
		{"mppt coupling without mppt spec", func(c *SystemConfig) { c.MPPT = nil }},
		{"bad mppt efficiency", func(c *SystemConfig) { c.MPPT = &MPPTSpec{Efficiency: 2} }},
		{"pump without characteristic", func(c *SystemConfig) { c.Pump = MotorPumpSpec{Model: "bare"} }},
		{"bad pv module", func(c *SystemConfig) { c.PV.Module.VocSTC = 0 }},
		{"unknown pipe material", func(c *SystemConfig) { c.Pipes.Material = "bamboo" }},
		{"negative step duration", func(c *SystemConfig) { c.DT = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSystem()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			require.Error(t, err)
			assert.True(t, IsInvalidConfig(err))
		})
	}
}

func TestEngine_RunRejectsBadInputs(t *testing.T) {
	engine, err := NewEngine(testSystem())
	require.NoError(t, err)

	t.Run("empty weather", func(t *testing.T) {
		_, err := engine.Run(nil)
		assert.True(t, IsInvalidConfig(err))
	})
	t.Run("negative demand", func(t *testing.T) {
		cfg := testSystem()
		cfg.Demand = ConstantDemand(-5)
		e, err := NewEngine(cfg)
		require.NoError(t, err)
		_, err = e.Run(dayWeather(4, 800))
		assert.True(t, IsInvalidConfig(err))
	})
}

func TestEngine_OneRecordPerWeatherStep(t *testing.T) {
	// GIVEN two synthetic days with nights included
	weather := SyntheticDays(SyntheticDayConfig{
		Days: 2, PeakIrradiance: 900, SunriseHour: 6, SunsetHour: 18,
		AirTemp: 25, WindSpeed: 1,
		Start: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Len(t, weather, 48)

	cfg := testSystem()
	cfg.Demand = ConstantDemand(5)
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	// WHEN running the full series
	result, err := engine.Run(weather)
	require.NoError(t, err)

	// THEN every weather record produced exactly one step record, in order
	require.Len(t, result.Steps, len(weather))
	for i, s := range result.Steps {
		assert.Equal(t, weather[i].Timestamp, s.Timestamp)
		if weather[i].Irradiance <= 0 {
			assert.Equal(t, StatusZeroIrradiance, s.Status, "step %d", i)
			assert.Equal(t, 0.0, s.FlowLpm, "step %d", i)
		}
		assert.GreaterOrEqual(t, s.Level, 0.0)
		assert.LessOrEqual(t, s.Level, cfg.Reservoir.Capacity)
	}
	assert.Equal(t, 24, result.DaylightSteps)
}

func TestEngine_RunsAreBitIdentical(t *testing.T) {
	weather := SyntheticDays(SyntheticDayConfig{
		Days: 3, PeakIrradiance: 850, SunriseHour: 7, SunsetHour: 19,
		AirTemp: 28, WindSpeed: 2,
		Start: time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	cfg := testSystem()
	cfg.Demand = RepeatedDemand{0, 0, 0, 0, 0, 0, 4, 8, 8, 4, 2, 2, 2, 2, 4, 8, 8, 4, 2, 0, 0, 0, 0, 0}

	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	first, err := engine.Run(weather)
	require.NoError(t, err)
	second, err := engine.Run(weather)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEngine_FullReservoirOverflows(t *testing.T) {
	// GIVEN a small 10 m3 reservoir, no demand, and a strong steady day
	cfg := testSystem()
	cfg.Reservoir = ReservoirSpec{Capacity: 10000, Price: 500}
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	// WHEN pumping for 24 identical sunny hours
	result, err := engine.Run(dayWeather(24, 800))
	require.NoError(t, err)

	// THEN the reservoir saturates and the excess is accounted as overflow
	require.Greater(t, result.PumpedVolume, cfg.Reservoir.Capacity)
	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, cfg.Reservoir.Capacity, last.Level)
	assert.InDelta(t, result.PumpedVolume-cfg.Reservoir.Capacity, result.OverflowVolume, 1e-6)
	assert.Equal(t, 0.0, result.DeficitVolume)
}

func TestEngine_WeakArrayNeverStartsPump(t *testing.T) {
	// GIVEN a pump that needs ~480 W against an array delivering ~220 W
	cfg := testSystem()
	cfg.Pump.Parametric.FlowPH = PumpPolyQ{A: -100, X1: 0.25, H1: -1.0}
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	result, err := engine.Run(dayWeather(12, 800))
	require.NoError(t, err)

	// THEN every daylight step is below startup, none non-convergent
	assert.Equal(t, 0.0, result.PumpedVolume)
	assert.Equal(t, 12, result.BelowStartupSteps)
	assert.Equal(t, 0, result.NonConvergentSteps)
}

func TestEngine_VolumeAccountingBalances(t *testing.T) {
	weather := SyntheticDays(SyntheticDayConfig{
		Days: 2, PeakIrradiance: 900, SunriseHour: 6, SunsetHour: 18,
		AirTemp: 25, WindSpeed: 1,
		Start: time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	cfg := testSystem()
	cfg.Reservoir = ReservoirSpec{Capacity: 4000, Price: 300}
	cfg.Demand = ConstantDemand(10)
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	result, err := engine.Run(weather)
	require.NoError(t, err)

	// demand starts before sunrise on an empty tank, so some shortage is
	// unavoidable
	assert.Greater(t, result.DeficitVolume, 0.0)

	// stored = pumped - served - spilled, where served = demand - deficit
	last := result.Steps[len(result.Steps)-1]
	served := result.DemandVolume - result.DeficitVolume
	assert.InDelta(t, result.PumpedVolume-served-result.OverflowVolume, last.Level, 1e-6)
}

// runawayPumpSpec builds a parametric pump whose flow grows with head, which
// makes the head<->flow iteration diverge on a high-friction pipe run.
func runawayPumpSpec() MotorPumpSpec {
	return MotorPumpSpec{
		Model: "runaway",
		Price: 100,
		Parametric: &ParametricPumpCoeffs{
			CurrentVH: PumpPolyVH{V1: 0.1},
			FlowVH:    PumpPolyQ{X1: 0.1, H1: 50},
			FlowPH:    PumpPolyQ{X1: 0.1, H1: 50},
			Dom: PumpDomain{
				MinVoltage: 1, MaxVoltage: 100,
				MinHead: 0, MaxHead: 1e6,
				MinPower: 1, MaxPower: 1e6,
			},
		},
	}
}

func TestEngine_NonConvergenceBudgetAborts(t *testing.T) {
	cfg := testSystem()
	cfg.Pump = runawayPumpSpec()
	cfg.Pipes = PipeNetworkSpec{StaticHead: 5, Length: 200, Diameter: 0.03, Material: "plastic", Price: 100}
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	// enough daylight steps to arm the ratio check
	_, err = engine.Run(dayWeather(30, 800))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergenceBudget)
}

func TestEngine_NonConvergenceValveCanBeDisabled(t *testing.T) {
	cfg := testSystem()
	cfg.Pump = runawayPumpSpec()
	cfg.Pipes = PipeNetworkSpec{StaticHead: 5, Length: 200, Diameter: 0.03, Material: "plastic", Price: 100}
	cfg.MaxNonConvergentRatio = 1 // >= 1 disables the safety valve
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	weather := dayWeather(30, 800)
	result, err := engine.Run(weather)
	require.NoError(t, err)

	// every step is still recorded, flagged, with zero flow
	require.Len(t, result.Steps, len(weather))
	assert.Equal(t, 30, result.NonConvergentSteps)
	for _, s := range result.Steps {
		assert.Equal(t, StatusNonConvergent, s.Status)
		assert.Equal(t, 0.0, s.FlowLpm)
	}
	assert.Equal(t, 1.0, result.NonConvergentRatio())
}

func TestEngine_TraceRecordsEveryStep(t *testing.T) {
	weather := SyntheticDays(SyntheticDayConfig{
		Days: 1, PeakIrradiance: 900, SunriseHour: 6, SunsetHour: 18,
		AirTemp: 25, WindSpeed: 1,
		Start: time.Date(2005, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	engine, err := NewEngine(testSystem())
	require.NoError(t, err)
	engine.Trace = trace.NewRunTrace()

	result, err := engine.Run(weather)
	require.NoError(t, err)

	require.Len(t, engine.Trace.Steps, len(weather))
	summary := trace.Summarize(engine.Trace)
	assert.Equal(t, len(weather), summary.TotalSteps)
	assert.Equal(t, len(result.Steps)-result.DaylightSteps, summary.StatusCounts[string(StatusZeroIrradiance)])
}

func TestEngine_SubHourlySteps(t *testing.T) {
	// GIVEN a 15-minute step duration
	cfg := testSystem()
	cfg.DT = 0.25
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	start := time.Date(2005, 6, 1, 10, 0, 0, 0, time.UTC)
	weather := make(WeatherSeries, 8)
	for i := range weather {
		weather[i] = WeatherRecord{
			Timestamp:  start.Add(time.Duration(i) * 15 * time.Minute),
			Irradiance: 800, AirTemp: 25, WindSpeed: 1,
		}
	}

	result, err := engine.Run(weather)
	require.NoError(t, err)

	// 8 quarter-hour steps pump the same volume as 2 hourly steps, up to
	// the solver's head tolerance
	hourly, err := NewEngine(testSystem())
	require.NoError(t, err)
	ref, err := hourly.Run(dayWeather(2, 800))
	require.NoError(t, err)
	assert.InDelta(t, ref.PumpedVolume, result.PumpedVolume, 1.0)
}
