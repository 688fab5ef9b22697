package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperatureBounds(t *testing.T) {
	min, max := TemperatureBounds(UnitCelsius)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 99.0, max)

	min, max = TemperatureBounds(UnitFahrenheit)
	assert.Equal(t, 32.0, min)
	assert.InDelta(t, 210.2, max, 0.001)
}

func TestCelsiusToUnit(t *testing.T) {
	assert.Equal(t, 60.0, CelsiusToUnit(60, UnitCelsius))
	assert.Equal(t, 140.0, CelsiusToUnit(60, UnitFahrenheit))
	assert.Equal(t, 32.0, CelsiusToUnit(0, UnitFahrenheit))
}
