package pvps

import (
	"time"
)

// testModule is a small 80 W-class module used across tests.
func testModule() PVModuleParams {
	return PVModuleParams{
		VocSTC:   22.0,
		IscSTC:   5.0,
		VmpSTC:   17.6,
		ImpSTC:   4.5,
		BetaVoc:  -0.0035,
		AlphaIsc: 0.0005,
	}
}

// testPVConfig returns a 2s x 2p array (~317 W at STC).
func testPVConfig() PVArrayConfig {
	return PVArrayConfig{
		Module:          testModule(),
		SeriesModules:   2,
		ParallelStrings: 2,
		Price:           800,
	}
}

// testPumpSpec returns a parametric pump with simple affine characteristics:
//
//	Q(P, H) = 0.25*P - 1.0*H   (start threshold 4*H watts)
//	Q(V, H) = 2.0*V - 1.0*H
//	I(V, H) = 0.12*V + 0.05*H
func testPumpSpec() MotorPumpSpec {
	return MotorPumpSpec{
		Model: "test-pump",
		Price: 700,
		Parametric: &ParametricPumpCoeffs{
			CurrentVH: PumpPolyVH{V1: 0.12, H1: 0.05},
			FlowVH:    PumpPolyQ{X1: 2.0, H1: -1.0},
			FlowPH:    PumpPolyQ{X1: 0.25, H1: -1.0},
			Dom: PumpDomain{
				MinVoltage: 12, MaxVoltage: 60,
				MinHead: 0, MaxHead: 80,
				MinPower: 20, MaxPower: 500,
			},
		},
	}
}

func testPipes() PipeNetworkSpec {
	return PipeNetworkSpec{
		StaticHead: 20,
		Length:     50,
		Diameter:   0.05,
		Material:   "plastic",
		Price:      300,
	}
}

func testSystem() SystemConfig {
	return SystemConfig{
		PV:        testPVConfig(),
		Pump:      testPumpSpec(),
		Pipes:     testPipes(),
		Reservoir: ReservoirSpec{Capacity: 50000, StartingLevel: 0, Price: 500},
		MPPT:      &MPPTSpec{Efficiency: 0.96, Price: 400},
	}
}

// dayWeather builds n identical daytime hours at the given irradiance.
func dayWeather(n int, irradiance float64) WeatherSeries {
	start := time.Date(2005, 6, 1, 8, 0, 0, 0, time.UTC)
	series := make(WeatherSeries, n)
	for i := range series {
		series[i] = WeatherRecord{
			Timestamp:  start.Add(time.Duration(i) * time.Hour),
			Irradiance: irradiance,
			AirTemp:    25,
			WindSpeed:  1,
		}
	}
	return series
}
