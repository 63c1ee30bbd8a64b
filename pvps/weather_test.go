package pvps

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherSeries_Validate(t *testing.T) {
	base := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	good := WeatherSeries{
		{Timestamp: base, Irradiance: 0, AirTemp: 10, WindSpeed: 1},
		{Timestamp: base.Add(time.Hour), Irradiance: 500, AirTemp: 12, WindSpeed: 2},
	}
	require.NoError(t, good.Validate())

	t.Run("empty series", func(t *testing.T) {
		assert.True(t, IsInvalidConfig(WeatherSeries{}.Validate()))
	})
	t.Run("negative irradiance", func(t *testing.T) {
		bad := WeatherSeries{{Timestamp: base, Irradiance: -1}}
		assert.Error(t, bad.Validate())
	})
	t.Run("NaN field", func(t *testing.T) {
		bad := WeatherSeries{{Timestamp: base, AirTemp: math.NaN()}}
		assert.Error(t, bad.Validate())
	})
	t.Run("duplicate timestamp", func(t *testing.T) {
		bad := WeatherSeries{
			{Timestamp: base, Irradiance: 100},
			{Timestamp: base, Irradiance: 200},
		}
		assert.Error(t, bad.Validate())
	})
}

func TestSyntheticDays_Profile(t *testing.T) {
	cfg := SyntheticDayConfig{
		Days: 2, PeakIrradiance: 1000, SunriseHour: 6, SunsetHour: 18,
		AirTemp: 25, WindSpeed: 1,
		Start: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	series := SyntheticDays(cfg)
	require.Len(t, series, 48)
	require.NoError(t, series.Validate())

	for i, w := range series {
		h := i % 24
		if h < 6 || h >= 18 {
			assert.Equal(t, 0.0, w.Irradiance, "hour %d must be dark", h)
		} else {
			assert.Greater(t, w.Irradiance, 0.0, "hour %d must be lit", h)
			assert.LessOrEqual(t, w.Irradiance, 1000.0)
		}
	}
	// the half-sine peaks around solar noon
	assert.Greater(t, series[12].Irradiance, series[7].Irradiance)
	assert.Greater(t, series[12].Irradiance, series[17].Irradiance)

	// both days are identical
	assert.Equal(t, series[10].Irradiance, series[34].Irradiance)
}

func TestSyntheticDays_DegenerateConfig(t *testing.T) {
	assert.Nil(t, SyntheticDays(SyntheticDayConfig{Days: 0, SunriseHour: 6, SunsetHour: 18}))
	assert.Nil(t, SyntheticDays(SyntheticDayConfig{Days: 1, SunriseHour: 18, SunsetHour: 6}))
}

const sampleCSV = `timestamp,ghi,temp_air,wind_speed
2005-01-01T08:00:00Z,120.5,18.2,1.1
2005-01-01T09:00:00Z,340.0,19.6,1.4
2005-01-01T10:00:00Z,560.2,21.0,2.0
`

func TestReadWeatherCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	series, err := ReadWeatherCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, time.Date(2005, 1, 1, 8, 0, 0, 0, time.UTC), series[0].Timestamp)
	assert.Equal(t, 120.5, series[0].Irradiance)
	assert.Equal(t, 19.6, series[1].AirTemp)
	assert.Equal(t, 2.0, series[2].WindSpeed)
}

func TestParseWeatherCSV_AcceptsHeaderAliases(t *testing.T) {
	aliased := strings.Replace(sampleCSV, "timestamp,ghi,temp_air,wind_speed",
		"time,irradiance,temperature,wind", 1)
	series, err := parseWeatherCSV(strings.NewReader(aliased))
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestParseWeatherCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{
			name: "missing wind column",
			csv:  "timestamp,ghi,temp_air\n2005-01-01T08:00:00Z,100,20\n",
			want: "missing column",
		},
		{
			name: "bad timestamp",
			csv:  "timestamp,ghi,temp_air,wind_speed\n01/01/2005,100,20,1\n",
			want: "bad timestamp",
		},
		{
			name: "bad irradiance",
			csv:  "timestamp,ghi,temp_air,wind_speed\n2005-01-01T08:00:00Z,lots,20,1\n",
			want: "bad irradiance",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWeatherCSV(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadWeatherCSV_MissingFile(t *testing.T) {
	_, err := ReadWeatherCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
