// Package bme688 measures temperature, pressure, humidity and gas
// resistance with a Bosch BME688 and derives an air quality index from them.
package bme688

import (
	"context"
	"fmt"
	"time"

	"github.com/calmh/airpi/i2c"
	"github.com/d2r2/go-logger"
)

var lg = logger.NewPackageLogger("bme688", logger.InfoLevel)

type Options struct {
	Address int

	// Chip identification is retried this many times before giving up.
	IdentifyAttempts int
	IdentifyDelay    time.Duration
	ResetDelay       time.Duration

	PollInterval time.Duration
	PollTimeout  time.Duration

	TemperatureOversampling Oversampling
	PressureOversampling    Oversampling
	HumidityOversampling    Oversampling
	Filter                  Filter

	HeaterTemperature int // °C
	HeaterDuration    time.Duration
}

var DefaultOptions = Options{
	Address:                 DefaultAddress,
	IdentifyAttempts:        5,
	IdentifyDelay:           100 * time.Millisecond,
	ResetDelay:              10 * time.Millisecond,
	PollInterval:            5 * time.Millisecond,
	PollTimeout:             time.Second,
	TemperatureOversampling: Oversampling2x,
	PressureOversampling:    Oversampling16x,
	HumidityOversampling:    Oversampling2x,
	Filter:                  Filter3,
	HeaterTemperature:       300,
	HeaterDuration:          180 * time.Millisecond,
}

// withDefaults returns o with unset fields taken from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions
	if o.Address == 0 {
		o.Address = def.Address
	}
	if o.IdentifyAttempts <= 0 {
		o.IdentifyAttempts = def.IdentifyAttempts
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = def.PollTimeout
	}
	if o.TemperatureOversampling == OversamplingSkip {
		o.TemperatureOversampling = def.TemperatureOversampling
	}
	if o.PressureOversampling == OversamplingSkip {
		o.PressureOversampling = def.PressureOversampling
	}
	if o.HumidityOversampling == OversamplingSkip {
		o.HumidityOversampling = def.HumidityOversampling
	}
	if o.HeaterTemperature == 0 {
		o.HeaterTemperature = def.HeaterTemperature
	}
	if o.HeaterDuration == 0 {
		o.HeaterDuration = def.HeaterDuration
	}
	return o
}

// Sensor is a measurement session with one chip. It owns the bus device,
// the calibration, the last raw sample and the baseline. A Sensor is not
// safe for concurrent use.
type Sensor struct {
	device   i2c.Device
	opts     Options
	cal      Calibration
	state    State
	last     RawSample
	baseline Baseline
	now      func() time.Time
}

// New identifies, resets and configures the chip, loads its calibration
// and programs heater step 0. Any failure aborts initialization.
func New(ctx context.Context, dev i2c.Device, opts *Options) (*Sensor, error) {
	o := DefaultOptions
	if opts != nil {
		o = opts.withDefaults()
	}
	s := &Sensor{device: dev, opts: o, now: time.Now}

	if err := dev.SetAddress(o.Address); err != nil {
		return nil, fmt.Errorf("set device address: %w", err)
	}
	if err := s.identify(ctx); err != nil {
		return nil, err
	}
	if err := s.reset(ctx); err != nil {
		return nil, err
	}
	if err := s.configure(); err != nil {
		return nil, err
	}

	cal, err := LoadCalibration(dev)
	if err != nil {
		return nil, err
	}
	s.cal = cal
	lg.Debugf("calibration: %+v", cal)

	// The heater set point depends on the ambient temperature.
	ambient, err := s.Measure(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial measurement: %w", err)
	}
	ms := int(o.HeaterDuration / time.Millisecond)
	if err := s.ConfigureHeater(o.HeaterTemperature, ms, ambient.TemperatureC); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Sensor) identify(ctx context.Context) error {
	r := i2c.NewReader(s.device)
	for attempt := 1; ; attempt++ {
		id := r.Byte(regChipID)
		if err := r.Error(); err != nil {
			return fmt.Errorf("read chip id: %w", err)
		}
		if id == chipID {
			return nil
		}
		if attempt >= s.opts.IdentifyAttempts {
			return fmt.Errorf("%w: read 0x%02x, want 0x%02x after %d attempts", ErrChipIdentity, id, chipID, attempt)
		}
		lg.Debugf("chip id 0x%02x, retrying", id)
		if err := sleep(ctx, s.opts.IdentifyDelay); err != nil {
			return err
		}
	}
}

func (s *Sensor) reset(ctx context.Context) error {
	if err := s.device.WriteByteData(regReset, softResetCmd); err != nil {
		return fmt.Errorf("soft reset: %w", &i2c.BusError{Op: "write", Reg: regReset, Err: err})
	}
	return sleep(ctx, s.opts.ResetDelay)
}

func (s *Sensor) configure() error {
	r := i2c.NewReader(s.device)
	r.Write(regCtrlMeas, 0)
	r.Write(regCtrlHum, uint8(s.opts.HumidityOversampling))
	r.Write(regCtrlMeas, uint8(s.opts.TemperatureOversampling)<<5|uint8(s.opts.PressureOversampling)<<2)
	r.Write(regConfig, uint8(s.opts.Filter)<<2)
	r.Write(regCtrlGas1, runGas)
	if err := r.Error(); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	return nil
}

// ConfigureHeater programs heater step 0 to reach targetC for durationMs,
// compensated for the given ambient temperature, and selects that step.
func (s *Sensor) ConfigureHeater(targetC, durationMs int, ambientC float64) error {
	res, err := TargetResistance(targetC, s.cal, ambientC)
	if err != nil {
		return err
	}
	wait, err := EncodeHeaterDuration(durationMs)
	if err != nil {
		return err
	}

	if err := s.device.SetAddress(s.opts.Address); err != nil {
		return fmt.Errorf("set device address: %w", err)
	}
	r := i2c.NewReader(s.device)
	r.Write(regResHeat0, res)
	r.Write(regGasWait0, wait)
	gas1 := r.Byte(regCtrlGas1)
	r.Write(regCtrlGas1, uint8(gas1)&runGas)
	if err := r.Error(); err != nil {
		return fmt.Errorf("configure heater: %w", err)
	}

	lg.Infof("heater step 0: %d °C for %d ms at %.2f °C ambient (res_heat 0x%02x, gas_wait 0x%02x)",
		targetC, DecodeHeaterDuration(wait), ambientC, res, wait)
	return nil
}

// Measure runs one measurement cycle and compensates the result.
func (s *Sensor) Measure(ctx context.Context) (Reading, error) {
	raw, err := s.Sample(ctx)
	if err != nil {
		return Reading{}, err
	}
	return Compensate(raw, s.cal), nil
}

// AirQuality measures and scores the reading against the session baseline.
func (s *Sensor) AirQuality(ctx context.Context) (Reading, AirQuality, error) {
	rd, err := s.Measure(ctx)
	if err != nil {
		return Reading{}, AirQuality{}, err
	}
	return rd, Score(rd, s.baseline), nil
}

// EstablishBaseline runs the calibrator against this session and keeps
// the result. The baseline is set at most once.
func (s *Sensor) EstablishBaseline(ctx context.Context, c *Calibrator) error {
	if s.baseline.Established() {
		return ErrBaselineEstablished
	}
	b, err := c.Run(ctx, s)
	if err != nil {
		return err
	}
	s.baseline = b
	lg.Infof("baseline established: %d Ohm, %.2f °C", b.GasOhm(), b.TemperatureC())
	return nil
}

func (s *Sensor) Calibration() Calibration {
	return s.cal
}

func (s *Sensor) Baseline() Baseline {
	return s.baseline
}

// State returns the state the raw sample reader reached in the last cycle.
func (s *Sensor) State() State {
	return s.state
}

func (s *Sensor) LastSample() RawSample {
	return s.last
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
