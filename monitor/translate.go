package monitor

import (
	"strconv"

	"github.com/srg/anovamon/internal/anova"
)

// Translation between the raw device protocol values and the typed state
// fields. All mappings are total with an explicit "unmapped" result; the
// worker logs and ignores unmapped values, leaving state unchanged.

func unitFromDevice(raw string) (TemperatureUnit, bool) {
	switch raw {
	case anova.RawUnitCelsius:
		return UnitCelsius, true
	case anova.RawUnitFahrenheit:
		return UnitFahrenheit, true
	default:
		return "", false
	}
}

func unitToDevice(u TemperatureUnit) string {
	if u == UnitFahrenheit {
		return anova.RawUnitFahrenheit
	}
	return anova.RawUnitCelsius
}

func modeFromDevice(raw string) (HvacMode, bool) {
	switch raw {
	case anova.RawStatusRunning:
		return ModeHeat, true
	case anova.RawStatusStopped:
		return ModeOff, true
	default:
		return "", false
	}
}

// temperatureFromDevice parses a numeric device response. A malformed
// value is treated as "no value".
func temperatureFromDevice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
