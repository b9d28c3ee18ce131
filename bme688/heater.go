package bme688

import (
	"fmt"
	"math"
)

const (
	maxHeaterTemperature = 400  // °C
	maxHeaterDuration    = 4032 // ms, 63 steps times 64
)

// TargetResistance returns the res_heat register value for heating the
// hot plate to targetC, compensated for the current ambient temperature.
// Targets above 400 °C are clamped.
func TargetResistance(targetC int, cal Calibration, ambientC float64) (uint8, error) {
	if targetC > maxHeaterTemperature {
		targetC = maxHeaterTemperature
	}
	amb := int64(math.Round(ambientC * 100))

	var1 := floorDiv(amb*int64(cal.G3), 1000) << 8
	var2 := (int64(cal.G1) + 784) *
		floorDiv(floorDiv((int64(cal.G2)+154009)*int64(targetC)*5, 100)+3276800, 10)
	var3 := var1 + (var2 >> 1)
	var4 := floorDiv(var3, int64(cal.HeatRng)+4)
	var5 := 131*int64(cal.HeatVal) + 65536
	resX100 := (floorDiv(var4, var5) - 250) * 34
	res := floorDiv(resX100+50, 100)

	if res < 0 || res > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %d for %d °C", ErrHeaterResistance, res, targetC)
	}
	return uint8(res), nil
}

// EncodeHeaterDuration returns the gas_wait register code for ms: a 6 bit
// step count in bits 5:0 and a multiplier of 1, 4, 16 or 64 in bits 7:6.
// Durations that don't fit fail rather than saturate.
func EncodeHeaterDuration(ms int) (uint8, error) {
	if ms < 0 || ms > maxHeaterDuration {
		return 0, fmt.Errorf("%w: %d ms", ErrHeaterDuration, ms)
	}
	var factor uint8
	for ms > 0x3f {
		ms /= 4
		factor++
	}
	return uint8(ms) + factor<<6, nil
}

// DecodeHeaterDuration returns the duration in ms a gas_wait code stands for.
func DecodeHeaterDuration(code uint8) int {
	return int(code&0x3f) << (2 * (code >> 6))
}
