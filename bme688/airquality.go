package bme688

import "math"

const (
	humidityWeight   = 0.25
	humidityBaseline = 40 // %

	gasScoreMax      = 75
	gasScoreBaseline = 70
)

// AirQuality is the index derived from one reading.
type AirQuality struct {
	Score   int // 0 (clean) to 500
	Percent int // 0 to 100, higher is cleaner
	ECO2    int // estimated equivalent CO2, ppm
	// GasReliable is false when the reading's heater was not stable and the
	// gas term was held at its baseline value.
	GasReliable bool
}

// Score computes the air quality index of rd against baseline b. Humidity
// weighs 25 % and gas resistance 75 %.
func Score(rd Reading, b Baseline) AirQuality {
	hum := float64(rd.HumidityPct)
	temp := rd.TemperatureC

	humidityOffset := hum - humidityBaseline
	humidityRatio := humidityOffset/humidityBaseline + 1

	ambient := temp
	if b.Established() {
		ambient = b.TemperatureC()
	}
	temperatureOffset := temp - ambient
	var temperatureRatio float64
	if ambient != 0 {
		temperatureRatio = temperatureOffset / ambient
	}

	var humidityScore float64
	if humidityOffset > 0 {
		humidityScore = (100 - hum) / (100 - humidityBaseline)
	} else {
		humidityScore = hum / humidityBaseline
	}
	humidityScore *= humidityWeight * 100

	percent := int(math.Floor(humidityScore + gasScore(rd, b)))
	if percent > 100 {
		percent = 100
	} else if percent < 0 {
		percent = 0
	}
	score := (100 - percent) * 5

	eco2 := 250 * math.Exp(0.012*float64(score))
	switch {
	case humidityOffset > 0 && temperatureOffset > 0:
		eco2 *= humidityRatio + temperatureRatio
	case humidityOffset > 0:
		eco2 *= humidityRatio
	case temperatureOffset > 0:
		eco2 *= temperatureRatio + 1
	}

	return AirQuality{
		Score:       score,
		Percent:     percent,
		ECO2:        int(eco2),
		GasReliable: rd.HeaterStable,
	}
}

func gasScore(rd Reading, b Baseline) float64 {
	switch {
	case !b.Established() || b.GasOhm() == 0:
		// Without a reference the ratio is unbounded; the score saturates.
		return gasScoreMax
	case !rd.HeaterStable:
		return gasScoreBaseline
	}

	base := float64(b.GasOhm())
	gas := float64(rd.GasResistanceOhm)
	ratio := gas / base
	if base-gas > 0 {
		return ratio * 100 * (1 - humidityWeight)
	}
	// Cleaner than baseline; headroom above 70 up to 75.
	return math.Min(math.RoundToEven(gasScoreBaseline+5*(ratio-1)), gasScoreMax)
}
