package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitFromDevice(t *testing.T) {
	tests := []struct {
		raw    string
		unit   TemperatureUnit
		mapped bool
	}{
		{raw: "c", unit: UnitCelsius, mapped: true},
		{raw: "f", unit: UnitFahrenheit, mapped: true},
		{raw: "C", mapped: false},
		{raw: "celsius", mapped: false},
		{raw: "", mapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			unit, ok := unitFromDevice(tt.raw)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestUnitToDevice(t *testing.T) {
	assert.Equal(t, "c", unitToDevice(UnitCelsius))
	assert.Equal(t, "f", unitToDevice(UnitFahrenheit))
}

func TestModeFromDevice(t *testing.T) {
	tests := []struct {
		raw    string
		mode   HvacMode
		mapped bool
	}{
		{raw: "running", mode: ModeHeat, mapped: true},
		{raw: "stopped", mode: ModeOff, mapped: true},
		{raw: "paused", mapped: false},
		{raw: "", mapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, ok := modeFromDevice(tt.raw)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.mode, mode)
		})
	}
}

func TestTemperatureFromDevice(t *testing.T) {
	tests := []struct {
		raw    string
		value  float64
		mapped bool
	}{
		{raw: "55.5", value: 55.5, mapped: true},
		{raw: "60", value: 60, mapped: true},
		{raw: "-1.5", value: -1.5, mapped: true},
		{raw: "error", mapped: false},
		{raw: "", mapped: false},
		{raw: "55.5C", mapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := temperatureFromDevice(tt.raw)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.value, v)
		})
	}
}
