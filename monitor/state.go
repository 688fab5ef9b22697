package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

// TemperatureUnit is the unit the appliance readings are expressed in
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "celsius"
	UnitFahrenheit TemperatureUnit = "fahrenheit"
)

// HvacMode mirrors the appliance run/stop status
type HvacMode string

const (
	ModeOff  HvacMode = "off"
	ModeHeat HvacMode = "heat"
)

// Snapshot is a consistent point-in-time copy of the device state.
// Pointer fields are nil while the value is unknown.
type Snapshot struct {
	Name    string
	Address string

	// Available is true only once the current temperature, target
	// temperature and unit are all known.
	Available bool

	CurrentTemperature *float64
	TargetTemperature  *float64
	Unit               TemperatureUnit // empty until first read or request
	Mode               HvacMode        // empty until first read or request

	PendingUnit              *TemperatureUnit
	PendingTargetTemperature *float64
	PendingMode              *HvacMode
}

// State holds the shared device state. Confirmed fields are written by the
// session worker only; pending fields are staged from any goroutine and
// consumed by the worker. Observers registered via OnChange are invoked
// once per notification, with no arguments - they re-read via Read.
//
// Notifications fire only while the device is available, with two
// exceptions that always notify: availability transitions themselves, and
// pending-field staging (so command acknowledgement is reflected
// instantly even while reconnecting).
type State struct {
	name    string
	address string

	mu            sync.RWMutex
	available     bool
	current       *float64
	target        *float64
	unit          TemperatureUnit
	mode          HvacMode
	pendingUnit   *TemperatureUnit
	pendingTarget *float64
	pendingMode   *HvacMode

	observers  *hashmap.Map[uint64, func()]
	observerID atomic.Uint64
}

// NewState creates the device state record for one appliance
func NewState(name, address string) *State {
	return &State{
		name:      name,
		address:   address,
		observers: hashmap.New[uint64, func()](),
	}
}

// Read returns a consistent snapshot of the current state
func (s *State) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Name:                     s.name,
		Address:                  s.address,
		Available:                s.available,
		CurrentTemperature:       copyFloat(s.current),
		TargetTemperature:        copyFloat(s.target),
		Unit:                     s.unit,
		Mode:                     s.mode,
		PendingUnit:              copyUnit(s.pendingUnit),
		PendingTargetTemperature: copyFloat(s.pendingTarget),
		PendingMode:              copyMode(s.pendingMode),
	}
}

// OnChange registers a listener invoked once per notification
func (s *State) OnChange(fn func()) {
	s.observers.Set(s.observerID.Add(1), fn)
}

// notify invokes all registered observers. Never called with the state
// lock held, so listeners can call Read.
func (s *State) notify() {
	s.observers.Range(func(_ uint64, fn func()) bool {
		fn()
		return true
	})
}

// storeUnit records a confirmed unit reading; notifies while available
func (s *State) storeUnit(u TemperatureUnit) {
	s.mu.Lock()
	changed := s.unit != u
	if changed {
		s.unit = u
	}
	available := s.available
	s.mu.Unlock()

	if changed && available {
		s.notify()
	}
}

// storeMode records a confirmed run status; notifies while available
func (s *State) storeMode(m HvacMode) {
	s.mu.Lock()
	changed := s.mode != m
	if changed {
		s.mode = m
	}
	available := s.available
	s.mu.Unlock()

	if changed && available {
		s.notify()
	}
}

// storeCurrentTemperature records a confirmed reading; notifies while available
func (s *State) storeCurrentTemperature(v float64) {
	s.mu.Lock()
	changed := s.current == nil || *s.current != v
	if changed {
		s.current = &v
	}
	available := s.available
	s.mu.Unlock()

	if changed && available {
		s.notify()
	}
}

// storeTargetTemperature records a confirmed reading; notifies while available
func (s *State) storeTargetTemperature(v float64) {
	s.mu.Lock()
	changed := s.target == nil || *s.target != v
	if changed {
		s.target = &v
	}
	available := s.available
	s.mu.Unlock()

	if changed && available {
		s.notify()
	}
}

// updateAvailability recomputes the available flag. Every transition
// notifies exactly once.
func (s *State) updateAvailability() {
	s.mu.Lock()
	available := s.current != nil && s.target != nil && s.unit != ""
	changed := s.available != available
	if changed {
		s.available = available
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// markUnavailable flips available to false, notifying if it was true
func (s *State) markUnavailable() {
	s.mu.Lock()
	changed := s.available
	s.available = false
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// stagePendingUnit stages a unit change request with a speculative live
// update. Skipped when the live unit already matches. Always notifies.
func (s *State) stagePendingUnit(u TemperatureUnit) bool {
	s.mu.Lock()
	if s.unit == u {
		s.mu.Unlock()
		return false
	}
	s.pendingUnit = &u
	s.unit = u
	s.mu.Unlock()

	s.notify()
	return true
}

// stagePendingTarget stages a target temperature request with a
// speculative live update. Always notifies. Last write wins.
func (s *State) stagePendingTarget(v float64) {
	s.mu.Lock()
	s.pendingTarget = &v
	s.target = &v
	s.mu.Unlock()

	s.notify()
}

// stagePendingMode stages a run/stop request with a speculative live
// update. Always notifies. Last write wins.
func (s *State) stagePendingMode(m HvacMode) {
	s.mu.Lock()
	s.pendingMode = &m
	s.mode = m
	s.mu.Unlock()

	s.notify()
}

// takePendingUnit consumes the staged unit request, if any
func (s *State) takePendingUnit() (TemperatureUnit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingUnit == nil {
		return "", false
	}
	u := *s.pendingUnit
	s.pendingUnit = nil
	return u, true
}

// takePendingTarget consumes the staged target temperature request, if any
func (s *State) takePendingTarget() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingTarget == nil {
		return 0, false
	}
	v := *s.pendingTarget
	s.pendingTarget = nil
	return v, true
}

// takePendingMode consumes the staged run/stop request, if any
func (s *State) takePendingMode() (HvacMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingMode == nil {
		return "", false
	}
	m := *s.pendingMode
	s.pendingMode = nil
	return m, true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyUnit(v *TemperatureUnit) *TemperatureUnit {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyMode(v *HvacMode) *HvacMode {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
