// Package export publishes measurement records as JSON, Prometheus gauges
// and MQTT messages.
package export

import (
	"math"
	"time"

	"github.com/calmh/airpi/bme688"
	"github.com/d2r2/go-logger"
	"github.com/google/uuid"
)

var lg = logger.NewPackageLogger("export", logger.InfoLevel)

// Record is one measurement cycle in flat form.
type Record struct {
	Session             uuid.UUID `json:"session"`
	When                time.Time `json:"when"`
	TemperatureC        float64   `json:"temperature_c"`
	PressurePa          int       `json:"pressure_pa"`
	HumidityPct         int       `json:"humidity_rh"`
	GasResistanceOhm    int       `json:"gas_resistance_ohm"`
	GasReliable         bool      `json:"gas_reliable"`
	IAQScore            int       `json:"iaq_score"`
	IAQPercent          int       `json:"iaq_percent"`
	ECO2                int       `json:"eco2_ppm"`
	BaselineEstablished bool      `json:"baseline_established"`
}

// NewRecord flattens a reading and its score. The temperature is rounded to
// decimals places.
func NewRecord(session uuid.UUID, rd bme688.Reading, aq bme688.AirQuality, b bme688.Baseline, decimals int) Record {
	return Record{
		Session:             session,
		When:                rd.Timestamp,
		TemperatureC:        round(rd.TemperatureC, decimals),
		PressurePa:          rd.PressurePa,
		HumidityPct:         rd.HumidityPct,
		GasResistanceOhm:    rd.GasResistanceOhm,
		GasReliable:         aq.GasReliable,
		IAQScore:            aq.Score,
		IAQPercent:          aq.Percent,
		ECO2:                aq.ECO2,
		BaselineEstablished: b.Established(),
	}
}

// round returns the half away from zero rounded value of x with prec precision.
//
// Special cases are:
//
//	round(±0) = +0
//	round(±Inf) = ±Inf
//	round(NaN) = NaN
func round(x float64, prec int) float64 {
	if x == 0 {
		// Without the negative bit set.
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}

	if x == 0 {
		return 0
	}

	return x / pow
}
