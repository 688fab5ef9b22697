package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_AvailabilityRequiresAllReadings(t *testing.T) {
	tests := []struct {
		name      string
		current   bool
		target    bool
		unit      bool
		available bool
	}{
		{name: "nothing known", available: false},
		{name: "only current", current: true, available: false},
		{name: "current and target", current: true, target: true, available: false},
		{name: "current and unit", current: true, unit: true, available: false},
		{name: "all three", current: true, target: true, unit: true, available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState("Anova", "AA:BB:CC:DD:EE:FF")
			if tt.current {
				s.storeCurrentTemperature(55.5)
			}
			if tt.target {
				s.storeTargetTemperature(60)
			}
			if tt.unit {
				s.storeUnit(UnitCelsius)
			}

			s.updateAvailability()
			assert.Equal(t, tt.available, s.Read().Available)
		})
	}
}

func TestState_AvailabilityTransitionNotifiesExactlyOnce(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")
	s.storeCurrentTemperature(55.5)
	s.storeTargetTemperature(60)
	s.storeUnit(UnitCelsius)

	var notifications int
	s.OnChange(func() { notifications++ })

	s.updateAvailability()
	assert.Equal(t, 1, notifications, "transition to available notifies once")

	s.updateAvailability()
	assert.Equal(t, 1, notifications, "recomputing without a transition is silent")

	s.markUnavailable()
	assert.Equal(t, 2, notifications, "transition to unavailable notifies once")

	s.markUnavailable()
	assert.Equal(t, 2, notifications, "marking unavailable twice is silent")
}

func TestState_ConfirmedWritesNotifyOnlyWhileAvailable(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")

	var notifications int
	s.OnChange(func() { notifications++ })

	// Interim updates while reconnecting are suppressed.
	s.storeCurrentTemperature(55.5)
	s.storeTargetTemperature(60)
	s.storeUnit(UnitCelsius)
	assert.Zero(t, notifications, "writes while unavailable are silent")

	s.updateAvailability()
	require.Equal(t, 1, notifications)

	s.storeCurrentTemperature(56)
	assert.Equal(t, 2, notifications, "changed value notifies while available")

	s.storeCurrentTemperature(56)
	assert.Equal(t, 2, notifications, "unchanged value is silent")
}

func TestState_PendingWritesAlwaysNotify(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")

	var notifications int
	s.OnChange(func() { notifications++ })

	// State is unavailable, yet staging must notify for instant UI feedback.
	s.stagePendingTarget(70)
	assert.Equal(t, 1, notifications)

	s.stagePendingMode(ModeHeat)
	assert.Equal(t, 2, notifications)

	assert.True(t, s.stagePendingUnit(UnitFahrenheit))
	assert.Equal(t, 3, notifications)

	snap := s.Read()
	require.NotNil(t, snap.TargetTemperature)
	assert.Equal(t, 70.0, *snap.TargetTemperature, "live field updates speculatively")
	assert.Equal(t, ModeHeat, snap.Mode)
	assert.Equal(t, UnitFahrenheit, snap.Unit)
}

func TestState_StagePendingUnitSkipsMatchingLiveUnit(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")
	s.storeUnit(UnitCelsius)

	var notifications int
	s.OnChange(func() { notifications++ })

	assert.False(t, s.stagePendingUnit(UnitCelsius))
	assert.Zero(t, notifications, "matching unit request is a no-op")

	_, ok := s.takePendingUnit()
	assert.False(t, ok)
}

func TestState_TakePendingConsumes(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")
	s.stagePendingTarget(62)
	s.stagePendingTarget(70)

	v, ok := s.takePendingTarget()
	require.True(t, ok)
	assert.Equal(t, 70.0, v, "last write wins")

	_, ok = s.takePendingTarget()
	assert.False(t, ok, "consumed pending field is cleared")
}

func TestState_ReadReturnsIndependentSnapshot(t *testing.T) {
	s := NewState("Anova", "AA:BB:CC:DD:EE:FF")
	s.storeCurrentTemperature(55.5)

	snap := s.Read()
	require.NotNil(t, snap.CurrentTemperature)
	*snap.CurrentTemperature = 99

	again := s.Read()
	require.NotNil(t, again.CurrentTemperature)
	assert.Equal(t, 55.5, *again.CurrentTemperature, "snapshot mutation MUST NOT leak into state")

	assert.Equal(t, "Anova", snap.Name)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", snap.Address)
}
