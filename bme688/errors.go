package bme688

import "errors"

var (
	ErrChipIdentity        = errors.New("bme688: chip identity mismatch")
	ErrMeasurementTimeout  = errors.New("bme688: measurement timeout")
	ErrHeaterDuration      = errors.New("bme688: heater duration out of range")
	ErrHeaterResistance    = errors.New("bme688: heater resistance out of range")
	ErrBaselineEstablished = errors.New("bme688: baseline already established")
)
