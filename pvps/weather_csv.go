package pvps

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// weatherColumns maps accepted CSV header names to record fields.
// Header matching is case-insensitive.
var weatherColumns = map[string]string{
	"timestamp":   "timestamp",
	"time":        "timestamp",
	"ghi":         "irradiance",
	"irradiance":  "irradiance",
	"temp_air":    "airtemp",
	"temperature": "airtemp",
	"wind_speed":  "windspeed",
	"wind":        "windspeed",
}

// ReadWeatherCSV loads an hourly weather series from a CSV file with a header
// row. Required columns: timestamp (RFC3339), irradiance/ghi, a temperature
// column and a wind column. The returned series is validated.
func ReadWeatherCSV(path string) (WeatherSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file %q: %w", path, err)
	}
	defer f.Close()

	series, err := parseWeatherCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse weather file %q: %w", path, err)
	}
	return series, nil
}

func parseWeatherCSV(r io.Reader) (WeatherSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		if field, ok := weatherColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			idx[field] = i
		}
	}
	for _, required := range []string{"timestamp", "irradiance", "airtemp", "windspeed"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column for %s", required)
		}
	}

	var series WeatherSeries
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[idx["timestamp"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad timestamp: %w", line, err)
		}
		ghi, err := strconv.ParseFloat(strings.TrimSpace(row[idx["irradiance"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad irradiance: %w", line, err)
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(row[idx["airtemp"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad temperature: %w", line, err)
		}
		wind, err := strconv.ParseFloat(strings.TrimSpace(row[idx["windspeed"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad wind speed: %w", line, err)
		}
		series = append(series, WeatherRecord{
			Timestamp:  ts,
			Irradiance: ghi,
			AirTemp:    temp,
			WindSpeed:  wind,
		})
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
