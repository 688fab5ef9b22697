package monitor

// Supported target temperature range, fixed by the appliance, in Celsius
const (
	MinTempCelsius = 0.0
	MaxTempCelsius = 99.0
)

// CelsiusToUnit converts a Celsius value to the given unit
func CelsiusToUnit(v float64, unit TemperatureUnit) float64 {
	if unit == UnitFahrenheit {
		return v*9/5 + 32
	}
	return v
}

// TemperatureBounds returns the supported target temperature range
// expressed in the given unit. Callers clamp requested targets to this
// range before issuing RequestSetTargetTemperature.
//
// During a unit change the bounds follow the live (speculatively updated)
// unit, so they stay consistent with what the caller just requested.
func TemperatureBounds(unit TemperatureUnit) (min, max float64) {
	return CelsiusToUnit(MinTempCelsius, unit), CelsiusToUnit(MaxTempCelsius, unit)
}
