package anova

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// DeviceFactory creates ble.Device instances (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking as anova.DeviceFactory
var DeviceFactory = func() (ble.Device, error) {
	return linux.NewDevice()
}
