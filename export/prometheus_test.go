package export

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func testRecord() Record {
	return Record{
		TemperatureC:     26.61,
		PressurePa:       92734,
		HumidityPct:      51,
		GasResistanceOhm: 2178700,
		GasReliable:      true,
		IAQScore:         50,
		IAQPercent:       90,
		ECO2:             580,
	}
}

func TestExporterBeforeFirstRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)

	_, ok := e.Latest()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(gaugeValue(t, reg, "sensors_bme688_temperature_celsius")))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "sensors_bme688_baseline_established"))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "sensors_bme688_baseline_progress"))
}

func TestExporterGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)

	e.Update(testRecord())

	expected := map[string]float64{
		"sensors_bme688_temperature_celsius":  26.61,
		"sensors_bme688_pressure_pascal":      92734,
		"sensors_bme688_humidity_percent":     51,
		"sensors_bme688_gas_resistance_ohm":   2178700,
		"sensors_bme688_iaq_score":            50,
		"sensors_bme688_iaq_percent":          90,
		"sensors_bme688_eco2_ppm":             580,
		"sensors_bme688_baseline_established": 0,
	}
	for name, val := range expected {
		assert.Equal(t, val, gaugeValue(t, reg, name), name)
	}

	rec, ok := e.Latest()
	assert.True(t, ok)
	assert.Equal(t, testRecord(), rec)
}

func TestExporterBaselineProgress(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)

	e.SetBaselineProgress(15, 60)
	assert.Equal(t, 0.25, gaugeValue(t, reg, "sensors_bme688_baseline_progress"))

	rec := testRecord()
	rec.BaselineEstablished = true
	e.Update(rec)
	assert.Equal(t, 1.0, gaugeValue(t, reg, "sensors_bme688_baseline_progress"))
	assert.Equal(t, 1.0, gaugeValue(t, reg, "sensors_bme688_baseline_established"))
}

func TestExporterRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)
	assert.Panics(t, func() { e.Register(reg) })
}
