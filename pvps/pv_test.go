package pvps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPVArrayConfig_Validate(t *testing.T) {
	valid := testPVConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*PVArrayConfig)
	}{
		{"zero voc", func(c *PVArrayConfig) { c.Module.VocSTC = 0 }},
		{"vmp above voc", func(c *PVArrayConfig) { c.Module.VmpSTC = c.Module.VocSTC + 1 }},
		{"imp above isc", func(c *PVArrayConfig) { c.Module.ImpSTC = c.Module.IscSTC + 1 }},
		{"zero series modules", func(c *PVArrayConfig) { c.SeriesModules = 0 }},
		{"zero parallel strings", func(c *PVArrayConfig) { c.ParallelStrings = 0 }},
		{"derate above one", func(c *PVArrayConfig) { c.Derate = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testPVConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsInvalidConfig(err))
		})
	}
}

func TestPVArrayConfig_RatedPower(t *testing.T) {
	cfg := testPVConfig() // 17.6 V * 4.5 A per module, 2s x 2p
	assert.InDelta(t, 17.6*4.5*4, cfg.RatedPower(), 1e-9)
}

func stcWeather() WeatherRecord {
	return WeatherRecord{
		Timestamp:  time.Date(2005, 6, 1, 12, 0, 0, 0, time.UTC),
		Irradiance: 1000,
		AirTemp:    25,
		WindSpeed:  1,
	}
}

func TestPVModel_ReproducesSTCDatasheet(t *testing.T) {
	// GIVEN an array model with the thermal model disabled (huge U0 keeps
	// the cell at air temperature)
	cfg := testPVConfig()
	cfg.FaimanU0 = 1e9
	model, err := NewPVModel(cfg)
	require.NoError(t, err)

	// WHEN evaluating the curve at STC conditions
	curve := model.CurveAt(stcWeather())
	require.NotNil(t, curve)

	// THEN the array endpoints match the scaled datasheet
	assert.InDelta(t, 2*22.0, curve.OpenCircuitVoltage(), 1e-6)
	assert.InDelta(t, 2*5.0, curve.Current(0), 1e-6)
	assert.Equal(t, 0.0, curve.Current(curve.OpenCircuitVoltage()))

	// AND the maximum power is at least the datasheet MPP (the calibrated
	// curve passes through it) and close to it
	pRef := cfg.RatedPower()
	pmp, vmp := curve.MaxPower()
	assert.GreaterOrEqual(t, pmp, pRef-1e-6)
	assert.Less(t, pmp, 1.10*pRef)
	assert.Greater(t, vmp, 0.0)
	assert.Less(t, vmp, curve.OpenCircuitVoltage())
}

func TestPVModel_CurrentIsNonIncreasing(t *testing.T) {
	model, err := NewPVModel(testPVConfig())
	require.NoError(t, err)
	curve := model.CurveAt(stcWeather())
	require.NotNil(t, curve)

	voc := curve.OpenCircuitVoltage()
	prev := curve.Current(0)
	for i := 1; i <= 50; i++ {
		v := voc * float64(i) / 50
		cur := curve.Current(v)
		require.LessOrEqual(t, cur, prev+1e-12, "current must not increase with voltage (v=%.2f)", v)
		prev = cur
	}
}

func TestPVModel_ZeroIrradianceGivesNoCurve(t *testing.T) {
	model, err := NewPVModel(testPVConfig())
	require.NoError(t, err)

	w := stcWeather()
	w.Irradiance = 0
	assert.Nil(t, model.CurveAt(w))
}

func TestPVModel_PowerScalesWithIrradiance(t *testing.T) {
	model, err := NewPVModel(testPVConfig())
	require.NoError(t, err)

	full := stcWeather()
	half := stcWeather()
	half.Irradiance = 500

	pFull, _ := model.CurveAt(full).MaxPower()
	pHalf, _ := model.CurveAt(half).MaxPower()
	assert.Greater(t, pFull, pHalf)
	// roughly proportional: current scales linearly, voltage sags a little
	assert.InDelta(t, 0.5, pHalf/pFull, 0.1)
}

func TestPVModel_FaimanCellTemperature(t *testing.T) {
	model, err := NewPVModel(testPVConfig())
	require.NoError(t, err)
	pm := model.(*parametricPVModel)

	// T_cell = T_air + G / (U0 + U1*wind) with the default constants
	w := WeatherRecord{Irradiance: 800, AirTemp: 25, WindSpeed: 1}
	assert.InDelta(t, 25+800/(25.0+6.84), pm.CellTemp(w), 1e-9)

	// stronger wind cools the cell
	w.WindSpeed = 10
	assert.Less(t, pm.CellTemp(w), 50.0)
}

func TestPVModel_HotCellLowersVoltage(t *testing.T) {
	model, err := NewPVModel(testPVConfig())
	require.NoError(t, err)

	cool := stcWeather()
	hot := stcWeather()
	hot.AirTemp = 45

	vocCool := model.CurveAt(cool).OpenCircuitVoltage()
	vocHot := model.CurveAt(hot).OpenCircuitVoltage()
	assert.Less(t, vocHot, vocCool)
}

func TestMPPTSpec_Validate(t *testing.T) {
	assert.NoError(t, MPPTSpec{Efficiency: 0.96}.Validate())
	assert.Error(t, MPPTSpec{Efficiency: 0}.Validate())
	assert.Error(t, MPPTSpec{Efficiency: 1.2}.Validate())
}
