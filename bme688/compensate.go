package bme688

import "time"

// Reading is a measurement converted to physical units.
type Reading struct {
	Timestamp        time.Time
	TemperatureC     float64 // 0.01 °C resolution
	PressurePa       int
	HumidityPct      int
	GasResistanceOhm int
	// HeaterStable is false when the hot plate had not reached its target
	// temperature; the gas resistance is then not measurement-backed.
	HeaterStable bool
}

// Compensate converts a raw sample using the chip's calibration. The fine
// temperature is derived from the same sample for every call and feeds the
// pressure and humidity pipelines.
//
// All arithmetic is integer with floor division, as in the datasheet.
func Compensate(raw RawSample, cal Calibration) Reading {
	tFine := cal.tFine(raw.Temperature)
	return Reading{
		Timestamp:        raw.Timestamp,
		TemperatureC:     float64(centiCelsius(tFine)) / 100,
		PressurePa:       int(cal.pressure(raw.Pressure, tFine)),
		HumidityPct:      int(cal.humidity(raw.Humidity, tFine)),
		GasResistanceOhm: int(gasResistance(raw.GasResistance, raw.GasRange)),
		HeaterStable:     raw.HeaterStable,
	}
}

func (c Calibration) tFine(raw int32) int64 {
	var1 := (int64(raw) >> 3) - (int64(c.T1) << 1)
	var2 := (var1 * int64(c.T2)) >> 11
	var3 := ((((var1 >> 1) * (var1 >> 1)) >> 12) * (int64(c.T3) << 4)) >> 14
	return var2 + var3
}

// centiCelsius returns the temperature in hundredths of a degree.
func centiCelsius(tFine int64) int64 {
	return (tFine*5 + 128) >> 8
}

// pressure returns Pa.
func (c Calibration) pressure(raw int32, tFine int64) int64 {
	var1 := (tFine >> 1) - 64000
	var2 := ((((var1 >> 2) * (var1 >> 2)) >> 11) * int64(c.P6)) >> 2
	var2 += (var1 * int64(c.P5)) << 1
	var2 = (var2 >> 2) + (int64(c.P4) << 16)
	var1 = (((((var1 >> 2) * (var1 >> 2)) >> 13) * (int64(c.P3) << 5)) >> 3) + ((int64(c.P2) * var1) >> 1)
	var1 >>= 18
	var1 = ((32768 + var1) * int64(c.P1)) >> 15
	if var1 == 0 {
		return 0
	}

	p := 1048576 - int64(raw)
	p = (p - (var2 >> 12)) * 3125
	// Keep the intermediate below 2^31 either way round.
	if p >= 1<<30 {
		p = floorDiv(p, var1) << 1
	} else {
		p = floorDiv(p<<1, var1)
	}

	var1 = (int64(c.P9) * (((p >> 3) * (p >> 3)) >> 13)) >> 12
	var2 = ((p >> 2) * int64(c.P8)) >> 13
	var3 := ((p >> 8) * (p >> 8) * (p >> 8) * int64(c.P10)) >> 17
	return p + ((var1 + var2 + var3 + (int64(c.P7) << 7)) >> 4)
}

// humidity returns whole percent relative humidity.
func (c Calibration) humidity(raw int32, tFine int64) int64 {
	t := centiCelsius(tFine)

	var1 := int64(raw) - (int64(c.H1) << 4) - (floorDiv(t*int64(c.H3), 100) >> 1)
	var2 := (int64(c.H2) * (floorDiv(t*int64(c.H4), 100) +
		floorDiv((t*floorDiv(t*int64(c.H5), 100))>>6, 100) +
		(1 << 14))) >> 10
	var3 := var1 * var2
	var4 := ((int64(c.H6) << 7) + floorDiv(t*int64(c.H7), 100)) >> 4
	var5 := ((var3 >> 14) * (var3 >> 14)) >> 10
	var6 := (var4 * var5) >> 1

	// milli-percent
	h := (((var3 + var6) >> 10) * 1000) >> 12
	if h > 100000 {
		h = 100000
	} else if h < 0 {
		h = 0
	}
	return floorDiv(h, 1000)
}

// gasResistance returns the gas sensor resistance in Ohm.
func gasResistance(raw int32, rng uint8) int64 {
	var1 := int64(262144) >> rng
	var2 := 4096 + (int64(raw)-512)*3
	return floorDiv(10000*var1, var2) * 100
}

// floorDiv divides rounding toward negative infinity. Go's / truncates
// toward zero, which differs for negative intermediates.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
