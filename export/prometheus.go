package export

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exporter keeps the latest record and serves it as gauges. It is safe for
// concurrent use; the measurement loop updates it while scrapes read it.
type Exporter struct {
	mut      sync.Mutex
	latest   Record
	valid    bool
	progress float64
}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Update(r Record) {
	e.mut.Lock()
	e.latest = r
	e.valid = true
	if r.BaselineEstablished {
		e.progress = 1
	}
	e.mut.Unlock()
}

// SetBaselineProgress records how many of the baseline samples are taken.
func (e *Exporter) SetBaselineProgress(done, total int) {
	e.mut.Lock()
	if total > 0 {
		e.progress = float64(done) / float64(total)
	}
	e.mut.Unlock()
}

// Latest returns the most recent record, if any.
func (e *Exporter) Latest() (Record, bool) {
	e.mut.Lock()
	defer e.mut.Unlock()
	return e.latest, e.valid
}

// value reads a field of the latest record, NaN before the first one.
func (e *Exporter) value(fn func(r Record) float64) float64 {
	e.mut.Lock()
	defer e.mut.Unlock()
	if !e.valid {
		return math.NaN()
	}
	return fn(e.latest)
}

// Register creates the sensors_bme688_* gauges in reg.
func (e *Exporter) Register(reg prometheus.Registerer) {
	factory := promauto.With(reg)
	gauge := func(name, help string, fn func(r Record) float64) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "sensors",
			Subsystem: "bme688",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return e.value(fn)
		})
	}

	gauge("temperature_celsius", "Compensated temperature.", func(r Record) float64 {
		return r.TemperatureC
	})
	gauge("pressure_pascal", "Compensated barometric pressure.", func(r Record) float64 {
		return float64(r.PressurePa)
	})
	gauge("humidity_percent", "Compensated relative humidity.", func(r Record) float64 {
		return float64(r.HumidityPct)
	})
	gauge("gas_resistance_ohm", "Gas sensor resistance.", func(r Record) float64 {
		return float64(r.GasResistanceOhm)
	})
	gauge("iaq_score", "Indoor air quality index, 0 is clean.", func(r Record) float64 {
		return float64(r.IAQScore)
	})
	gauge("iaq_percent", "Indoor air quality in percent, 100 is clean.", func(r Record) float64 {
		return float64(r.IAQPercent)
	})
	gauge("eco2_ppm", "Estimated equivalent CO2.", func(r Record) float64 {
		return float64(r.ECO2)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bme688",
		Name:      "baseline_established",
		Help:      "Whether the clean air baseline is established.",
	}, func() float64 {
		e.mut.Lock()
		defer e.mut.Unlock()
		if e.valid && e.latest.BaselineEstablished {
			return 1
		}
		return 0
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bme688",
		Name:      "baseline_progress",
		Help:      "Fraction of baseline samples taken.",
	}, func() float64 {
		e.mut.Lock()
		defer e.mut.Unlock()
		return e.progress
	})
}
