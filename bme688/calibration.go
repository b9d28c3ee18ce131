package bme688

import (
	"fmt"

	"github.com/calmh/airpi/i2c"
)

// Calibration holds the factory trim values of one chip. It is read once
// at startup and never changes afterwards.
type Calibration struct {
	T1 int16
	T2 int16
	T3 int8

	P1     uint16
	P2     int16
	P3     int8
	P4, P5 int16
	P6, P7 int8
	P8, P9 int16
	P10    int8

	H1, H2 uint16
	H3     int8
	H4     int8
	H5     int8
	H6     int8
	H7     int8

	G1      int8
	G2      int16
	G3      uint8
	HeatRng uint8
	HeatVal int8
}

// LoadCalibration reads the trim registers. It does not retry; a bus error
// means the sensor is unusable.
func LoadCalibration(dev i2c.Device) (Calibration, error) {
	r := i2c.NewReader(dev)

	var c Calibration
	c.T1 = int16(r.Signed(regParT1MSB, regParT1LSB))
	c.T2 = int16(r.Signed(regParT2MSB, regParT2LSB))
	c.T3 = int8(r.Signed(regParT3))

	c.P1 = uint16(r.Unsigned(regParP1MSB, regParP1LSB))
	c.P2 = int16(r.Signed(regParP2MSB, regParP2LSB))
	c.P3 = int8(r.Signed(regParP3))
	c.P4 = int16(r.Signed(regParP4MSB, regParP4LSB))
	c.P5 = int16(r.Signed(regParP5MSB, regParP5LSB))
	c.P6 = int8(r.Signed(regParP6))
	c.P7 = int8(r.Signed(regParP7))
	c.P8 = int16(r.Signed(regParP8MSB, regParP8LSB))
	c.P9 = int16(r.Signed(regParP9MSB, regParP9LSB))
	c.P10 = int8(r.Signed(regParP10))

	// H1 and H2 share the low nibbles in one register.
	h12 := r.Byte(regParH12LSB)
	c.H1 = uint16(r.Byte(regParH1MSB)<<4 | h12&0x0f)
	c.H2 = uint16(r.Byte(regParH2MSB)<<4 | h12>>4)
	c.H3 = int8(r.Signed(regParH3))
	c.H4 = int8(r.Signed(regParH4))
	c.H5 = int8(r.Signed(regParH5))
	c.H6 = int8(r.Signed(regParH6))
	c.H7 = int8(r.Signed(regParH7))

	c.G1 = int8(r.Signed(regParG1))
	c.G2 = int16(r.Signed(regParG2MSB, regParG2LSB))
	c.G3 = uint8(r.Byte(regParG3))
	c.HeatRng = uint8(r.Byte(regResHeatRng)&resHeatRngMask) >> 4
	c.HeatVal = int8(r.Signed(regResHeatVal))

	if err := r.Error(); err != nil {
		return Calibration{}, fmt.Errorf("read calibration data: %w", err)
	}
	return c, nil
}
