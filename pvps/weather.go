package pvps

import (
	"math"
	"time"
)

// WeatherRecord is one hourly sample of the environment seen by the PV array.
// Records are immutable inputs; the engine never modifies them.
type WeatherRecord struct {
	Timestamp  time.Time
	Irradiance float64 // global irradiance in the array plane [W/m2]
	AirTemp    float64 // ambient air temperature [degC]
	WindSpeed  float64 // wind speed [m/s]
}

// WeatherSeries is an ordered sequence of hourly weather records.
type WeatherSeries []WeatherRecord

// Validate checks the series for structural problems: emptiness, negative
// irradiance, NaN fields, and non-increasing timestamps.
func (ws WeatherSeries) Validate() error {
	if len(ws) == 0 {
		return invalidConfigf("weather", "empty series")
	}
	for i, w := range ws {
		if math.IsNaN(w.Irradiance) || math.IsNaN(w.AirTemp) || math.IsNaN(w.WindSpeed) {
			return invalidConfigf("weather", "NaN field at index %d", i)
		}
		if w.Irradiance < 0 {
			return invalidConfigf("weather", "negative irradiance %.1f at index %d", w.Irradiance, i)
		}
		if i > 0 && !ws[i-1].Timestamp.Before(w.Timestamp) {
			return invalidConfigf("weather", "timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}

// SyntheticDayConfig describes a synthetic clear day used by examples and
// tests when no measured weather file is available.
type SyntheticDayConfig struct {
	Days           int       // number of repeated days
	PeakIrradiance float64   // plane-of-array irradiance at solar noon [W/m2]
	SunriseHour    int       // first daylight hour (inclusive)
	SunsetHour     int       // first dark hour after daylight (exclusive)
	AirTemp        float64   // constant air temperature [degC]
	WindSpeed      float64   // constant wind speed [m/s]
	Start          time.Time // timestamp of the first record
}

// SyntheticDays builds an hourly series of identical clear days with a
// half-sine irradiance profile between sunrise and sunset.
func SyntheticDays(cfg SyntheticDayConfig) WeatherSeries {
	if cfg.Days <= 0 || cfg.SunsetHour <= cfg.SunriseHour {
		return nil
	}
	series := make(WeatherSeries, 0, cfg.Days*24)
	daylight := float64(cfg.SunsetHour - cfg.SunriseHour)
	for d := 0; d < cfg.Days; d++ {
		for h := 0; h < 24; h++ {
			ghi := 0.0
			if h >= cfg.SunriseHour && h < cfg.SunsetHour {
				frac := (float64(h-cfg.SunriseHour) + 0.5) / daylight
				ghi = cfg.PeakIrradiance * math.Sin(math.Pi*frac)
			}
			series = append(series, WeatherRecord{
				Timestamp:  cfg.Start.Add(time.Duration(d*24+h) * time.Hour),
				Irradiance: ghi,
				AirTemp:    cfg.AirTemp,
				WindSpeed:  cfg.WindSpeed,
			})
		}
	}
	return series
}
