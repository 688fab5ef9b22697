package anova

import (
	"context"
	"time"
)

// Raw values returned by the appliance. The monitor translates these into
// typed fields; unknown values are logged and ignored there.
const (
	RawUnitCelsius    = "c"
	RawUnitFahrenheit = "f"
	RawStatusRunning  = "running"
	RawStatusStopped  = "stopped"
)

// Identity names the appliance a client should connect to.
type Identity struct {
	Name    string
	Address string
}

// Client is the capability set the session worker consumes. Exactly one
// operation is in flight at any time; implementations do not need to be
// goroutine-safe beyond Disconnect racing an in-flight request.
//
// All read/set operations echo the device response as a raw string
// (RawUnit*/RawStatus* or an ASCII decimal for temperatures).
type Client interface {
	Connect(ctx context.Context, id Identity, timeout time.Duration) error

	GetTemperatureUnit(timeout time.Duration) (string, error)
	SetTemperatureUnit(unit string, timeout time.Duration) (string, error)

	GetStatus(timeout time.Duration) (string, error)
	Start(timeout time.Duration) (string, error)
	Stop(timeout time.Duration) (string, error)

	GetCurrentTemperature(timeout time.Duration) (string, error)
	GetTargetTemperature(timeout time.Duration) (string, error)
	SetTargetTemperature(value float64, timeout time.Duration) (string, error)

	// Disconnect is best effort: callers log the returned error and move on.
	Disconnect() error
}
