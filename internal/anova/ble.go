package anova

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
)

// responseBuffer is the buffer size for the notification channel. Responses
// arrive one per request, but the device occasionally re-sends the last one.
const responseBuffer = 8

// BLEClient implements Client on top of go-ble. One request is in flight at
// a time; the worker already serializes operations, the mutex only protects
// against Disconnect racing an in-flight request.
type BLEClient struct {
	logger *logrus.Logger

	mu          sync.Mutex
	client      ble.Client
	char        *ble.Characteristic
	responses   chan string
	isConnected bool
}

var _ Client = (*BLEClient)(nil)

// NewBLEClient creates a BLE-backed appliance client
func NewBLEClient(logger *logrus.Logger) *BLEClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &BLEClient{logger: logger}
}

// Connect establishes the BLE session: dial, discover the profile, locate
// the command characteristic and subscribe to its notifications.
func (c *BLEClient) Connect(ctx context.Context, id Identity, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(id.Address) == "" {
		return fmt.Errorf("device address is empty")
	}
	if c.isConnected {
		return fmt.Errorf("already connected to %q", id.Address)
	}

	c.logger.WithFields(logrus.Fields{
		"device":  id.Name,
		"address": id.Address,
		"timeout": timeout,
	}).Info("Connecting to BLE device...")

	// Create a BLE device using the factory (allows for mocking in tests)
	dev, err := DeviceFactory()
	if err != nil {
		return fmt.Errorf("%w: failed to create BLE device: %v", ErrStackFailed, err)
	}
	ble.SetDefaultDevice(dev)

	connCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ble.Dial(connCtx, ble.NewAddr(id.Address))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: dialing %q: %v", ErrConnectTimeout, id.Address, err)
		}
		return fmt.Errorf("%w: dialing %q: %v", ErrNotConnected, id.Address, err)
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		_ = client.CancelConnection()
		return fmt.Errorf("%w: discovering profile: %v", ErrNotConnected, err)
	}

	char := findCharacteristic(profile, ServiceUUID, CharacteristicUUID)
	if char == nil {
		_ = client.CancelConnection()
		return fmt.Errorf("%w: characteristic %s/%s not found", ErrNotConnected, ServiceUUID, CharacteristicUUID)
	}

	responses := make(chan string, responseBuffer)
	err = client.Subscribe(char, false, func(data []byte) {
		select {
		case responses <- decodeResponse(data):
		default:
			c.logger.WithField("data", string(data)).Debug("Dropping unconsumed device response")
		}
	})
	if err != nil {
		_ = client.CancelConnection()
		return fmt.Errorf("%w: subscribing to %s: %v", ErrResponseTimeout, CharacteristicUUID, err)
	}

	c.client = client
	c.char = char
	c.responses = responses
	c.isConnected = true

	c.logger.WithField("address", id.Address).Info("BLE device connected")
	return nil
}

// findCharacteristic locates a characteristic by service and characteristic
// UUID, matching on normalized (lowercase, no dashes) representations.
func findCharacteristic(profile *ble.Profile, serviceUUID, charUUID string) *ble.Characteristic {
	for _, svc := range profile.Services {
		if !uuidEqual(svc.UUID.String(), serviceUUID) {
			continue
		}
		for _, char := range svc.Characteristics {
			if uuidEqual(char.UUID.String(), charUUID) {
				return char
			}
		}
	}
	return nil
}

func uuidEqual(a, b string) bool {
	norm := func(u string) string {
		return strings.ToLower(strings.ReplaceAll(u, "-", ""))
	}
	return norm(a) == norm(b)
}

// request writes a framed command and waits for the next notification.
func (c *BLEClient) request(cmd []byte, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected {
		return "", ErrNotConnected
	}

	// Drain stale responses so the reply matches this request.
	for {
		select {
		case stale := <-c.responses:
			c.logger.WithField("response", stale).Debug("Discarding stale device response")
			continue
		default:
		}
		break
	}

	if err := c.client.WriteCharacteristic(c.char, cmd, false); err != nil {
		return "", fmt.Errorf("%w: writing command: %v", ErrNotConnected, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case rsp := <-c.responses:
		return rsp, nil
	case <-timer.C:
		return "", fmt.Errorf("%w: no response within %v", ErrResponseTimeout, timeout)
	}
}

func (c *BLEClient) simpleRequest(cmd string, timeout time.Duration) (string, error) {
	framed, err := encodeCommand(cmd)
	if err != nil {
		return "", err
	}
	return c.request(framed, timeout)
}

func (c *BLEClient) GetTemperatureUnit(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdReadUnit, timeout)
}

func (c *BLEClient) SetTemperatureUnit(unit string, timeout time.Duration) (string, error) {
	framed, err := encodeSetUnit(unit)
	if err != nil {
		return "", err
	}
	return c.request(framed, timeout)
}

func (c *BLEClient) GetStatus(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdStatus, timeout)
}

func (c *BLEClient) Start(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdStart, timeout)
}

func (c *BLEClient) Stop(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdStop, timeout)
}

func (c *BLEClient) GetCurrentTemperature(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdReadTemp, timeout)
}

func (c *BLEClient) GetTargetTemperature(timeout time.Duration) (string, error) {
	return c.simpleRequest(cmdReadTargetTemp, timeout)
}

func (c *BLEClient) SetTargetTemperature(value float64, timeout time.Duration) (string, error) {
	framed, err := encodeSetTargetTemperature(value)
	if err != nil {
		return "", err
	}
	return c.request(framed, timeout)
}

// Disconnect tears down the BLE session. Safe to call when not connected.
func (c *BLEClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected {
		c.logger.Debug("Already disconnected")
		return nil
	}

	c.logger.Info("Disconnecting BLE device...")

	var disconnectErr error
	if c.char != nil {
		if err := c.client.Unsubscribe(c.char, false); err != nil {
			c.logger.WithError(err).Debug("Failed to unsubscribe during disconnect")
		}
	}
	if c.client != nil {
		disconnectErr = c.client.CancelConnection()
		c.client = nil
	}
	c.char = nil
	c.responses = nil
	c.isConnected = false

	if disconnectErr != nil {
		c.logger.WithError(disconnectErr).Warn("BLE device disconnected with errors")
	} else {
		c.logger.Info("BLE device disconnected")
	}
	return disconnectErr
}
