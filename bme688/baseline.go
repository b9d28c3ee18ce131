package bme688

import (
	"context"
	"fmt"
	"time"
)

const (
	// BaselineSamples is the number of measurement cycles averaged into a
	// baseline.
	BaselineSamples         = 60
	DefaultBaselineInterval = 5 * time.Second
)

// Baseline is the clean air reference. The zero value is not established.
type Baseline struct {
	established bool
	gasOhm      int
	tempC       float64
}

func NewBaseline(gasOhm int, tempC float64) Baseline {
	return Baseline{established: true, gasOhm: gasOhm, tempC: tempC}
}

func (b Baseline) Established() bool {
	return b.established
}

func (b Baseline) GasOhm() int {
	return b.gasOhm
}

func (b Baseline) TemperatureC() float64 {
	return b.tempC
}

func (b Baseline) String() string {
	if !b.established {
		return "unestablished"
	}
	return fmt.Sprintf("%d Ohm at %.2f °C", b.gasOhm, b.tempC)
}

// A Sampler produces compensated readings, one measurement cycle per call.
type Sampler interface {
	Measure(ctx context.Context) (Reading, error)
}

// Calibrator establishes a baseline by averaging BaselineSamples readings
// taken Interval apart. It blocks for the whole run. Any failed cycle or a
// cancelled context aborts the run; partial sums are discarded and the
// calibration must be restarted.
type Calibrator struct {
	Interval time.Duration
	// Progress, if set, is called after each sample.
	Progress func(done, total int)
}

func (c *Calibrator) Run(ctx context.Context, src Sampler) (Baseline, error) {
	var gasSum int64
	var tempSum float64

	for n := 1; n <= BaselineSamples; n++ {
		rd, err := src.Measure(ctx)
		if err != nil {
			return Baseline{}, fmt.Errorf("baseline sample %d/%d: %w", n, BaselineSamples, err)
		}
		gasSum += int64(rd.GasResistanceOhm)
		tempSum += rd.TemperatureC

		lg.Infof("baseline progress %d/%d", n, BaselineSamples)
		if c.Progress != nil {
			c.Progress(n, BaselineSamples)
		}

		if n < BaselineSamples {
			if err := sleep(ctx, c.Interval); err != nil {
				return Baseline{}, fmt.Errorf("baseline interrupted after %d/%d samples: %w", n, BaselineSamples, err)
			}
		}
	}

	return NewBaseline(int(gasSum/BaselineSamples), tempSum/BaselineSamples), nil
}
