package bme688

import (
	"context"
	"fmt"
	"time"

	"github.com/calmh/airpi/i2c"
)

// RawSample holds the ADC counts of one forced measurement cycle. Fields
// from different cycles must never be mixed.
type RawSample struct {
	Temperature   int32 // 20 bit
	Pressure      int32 // 20 bit
	Humidity      int32 // 16 bit
	GasResistance int32 // 10 bit
	GasRange      uint8
	HeaterStable  bool
	Timestamp     time.Time
}

// State is the position of the raw sample reader in a measurement cycle.
type State int

const (
	StateIdle State = iota
	StateTriggered
	StatePolling
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriggered:
		return "triggered"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Sample runs one forced measurement cycle and returns its raw counts.
// Polling for completion is bounded by the PollTimeout option and by ctx.
// On error the reader ends in StateFailed; the next call starts over.
func (s *Sensor) Sample(ctx context.Context) (RawSample, error) {
	s.state = StateIdle

	if err := s.trigger(); err != nil {
		s.state = StateFailed
		return RawSample{}, err
	}
	s.state = StateTriggered

	s.state = StatePolling
	if err := s.waitNewData(ctx); err != nil {
		s.state = StateFailed
		return RawSample{}, err
	}

	raw, err := s.readRaw()
	if err != nil {
		s.state = StateFailed
		return RawSample{}, err
	}
	s.state = StateReady
	s.last = raw
	return raw, nil
}

// trigger starts a forced mode conversion, keeping the oversampling bits.
func (s *Sensor) trigger() error {
	if err := s.device.SetAddress(s.opts.Address); err != nil {
		return fmt.Errorf("set device address: %w", err)
	}

	r := i2c.NewReader(s.device)
	ctrl := r.Byte(regCtrlMeas)
	r.Write(regCtrlMeas, uint8(ctrl)&^modeMask|modeForced)
	if err := r.Error(); err != nil {
		return fmt.Errorf("trigger measurement: %w", err)
	}
	return nil
}

func (s *Sensor) waitNewData(ctx context.Context) error {
	r := i2c.NewReader(s.device)
	deadline := s.now().Add(s.opts.PollTimeout)
	timer := time.NewTimer(s.opts.PollInterval)
	defer timer.Stop()

	for polls := 1; ; polls++ {
		status := r.Byte(regMeasStatus)
		if err := r.Error(); err != nil {
			return fmt.Errorf("read status: %w", err)
		}
		if status&statusNewData != 0 {
			lg.Debugf("new data after %d polls", polls)
			return nil
		}
		if !s.now().Before(deadline) {
			return fmt.Errorf("%w: no new data after %d polls in %v", ErrMeasurementTimeout, polls, s.opts.PollTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(s.opts.PollInterval)
		}
	}
}

// readRaw reads all data registers of the finished cycle.
func (s *Sensor) readRaw() (RawSample, error) {
	r := i2c.NewReader(s.device)

	gasLSB := r.Byte(regGasLSB)
	heaterStable := gasLSB&gasHeaterStable != 0

	press := r.Unsigned(regPressMSB, regPressLSB, regPressXLSB)
	temp := r.Unsigned(regTempMSB, regTempLSB, regTempXLSB)
	hum := r.Unsigned(regHumMSB, regHumLSB)
	gasMSB := r.Byte(regGasMSB)

	if err := r.Error(); err != nil {
		return RawSample{}, fmt.Errorf("read data: %w", err)
	}

	raw := RawSample{
		// 20 bit values, low nibble of the XLSB register unused.
		Pressure:      int32(press >> 4),
		Temperature:   int32(temp >> 4),
		Humidity:      int32(hum),
		GasResistance: int32(gasMSB<<2 | gasLSB>>6),
		GasRange:      uint8(gasLSB & gasRangeMask),
		HeaterStable:  heaterStable,
		Timestamp:     s.now(),
	}
	if !heaterStable {
		lg.Debugf("heater not stable, gas reading %d unreliable", raw.GasResistance)
	}
	return raw, nil
}
