package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/anovamon/internal/anova"
	"github.com/srg/anovamon/internal/groutine"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultCommandTimeout = 10 * time.Second
	DefaultPollingCycle   = 30 * time.Second
)

// errTerminated signals a Terminate-requested loop exit
var errTerminated = errors.New("terminated")

// pollStep is the position in the round-robin poll sequence
type pollStep int

const (
	stepUnit pollStep = iota
	stepStatus
	stepCurrentTemp
	stepTargetTemp
	stepIdle
)

// Options configures the session worker timing
type Options struct {
	ConnectTimeout time.Duration // bounded device connect (default 30s)
	CommandTimeout time.Duration // bounded per-operation device I/O (default 10s)
	PollingCycle   time.Duration // idle wait between poll rounds (default 30s)
}

// Monitor owns the logical session to one appliance: it runs the
// connect/poll/command loop on a dedicated goroutine, reconnects on
// failure and is the sole writer of confirmed state fields.
//
// Commands preempt polling, so user actions are serviced within one poll
// step's latency rather than a full poll cycle. Exactly one device
// operation is in flight at any time.
type Monitor struct {
	state  *State
	client anova.Client
	logger *logrus.Logger

	id             anova.Identity
	connectTimeout time.Duration
	commandTimeout time.Duration
	pollingCycle   time.Duration

	wake    chan struct{} // buffered wake hint; pending fields are re-checked on every wake
	stop    chan struct{}
	done    chan struct{}
	ctx     context.Context // canceled on Terminate to interrupt a blocked connect
	cancel  context.CancelFunc
	started atomic.Bool
	stopped atomic.Bool
}

// New creates a session worker for the given state and device client
func New(state *State, client anova.Client, opts *Options, logger *logrus.Logger) *Monitor {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = &Options{}
	}
	m := &Monitor{
		state:          state,
		client:         client,
		logger:         logger,
		id:             anova.Identity{Name: state.name, Address: state.address},
		connectTimeout: opts.ConnectTimeout,
		commandTimeout: opts.CommandTimeout,
		pollingCycle:   opts.PollingCycle,
		wake:           make(chan struct{}, 1),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	if m.connectTimeout == 0 {
		m.connectTimeout = DefaultConnectTimeout
	}
	if m.commandTimeout == 0 {
		m.commandTimeout = DefaultCommandTimeout
	}
	if m.pollingCycle == 0 {
		m.pollingCycle = DefaultPollingCycle
	}
	return m
}

// State returns the shared device state facade
func (m *Monitor) State() *State {
	return m.state
}

// Start launches the worker loop. Non-blocking.
// Panics if called more than once on the same Monitor instance.
func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		panic("monitor.Start called more than once")
	}

	groutine.Go(m.ctx, "anova-monitor", func(ctx context.Context) {
		defer close(m.done)
		m.run(ctx)
	})
}

// Terminate requests loop exit, wakes any blocked wait and blocks until
// the worker goroutine has fully exited. After it returns no further
// state mutation or notification occurs. Safe to call once.
func (m *Monitor) Terminate() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stop)
		m.cancel()
		m.signalWake()
	}
	if m.started.Load() {
		<-m.done
	}
}

// RequestSetTemperatureUnit stages a unit change. A request matching the
// live unit is a no-op. Non-blocking, callable from any goroutine.
func (m *Monitor) RequestSetTemperatureUnit(u TemperatureUnit) {
	if m.state.stagePendingUnit(u) {
		m.signalWake()
	}
}

// RequestSetTargetTemperature stages a target temperature change. The
// caller clamps to TemperatureBounds beforehand. Non-blocking.
func (m *Monitor) RequestSetTargetTemperature(v float64) {
	m.state.stagePendingTarget(v)
	m.signalWake()
}

// RequestSetHvacMode stages a start (ModeHeat) or stop (ModeOff) request.
// Non-blocking.
func (m *Monitor) RequestSetHvacMode(mode HvacMode) {
	m.state.stagePendingMode(mode)
	m.signalWake()
}

func (m *Monitor) signalWake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// run is the outer connection loop: Disconnected -> Connecting ->
// Connected (session) -> Disconnected, until terminated or an
// unrecoverable fault stops the worker permanently.
func (m *Monitor) run(ctx context.Context) {
	log := m.logger.WithFields(logrus.Fields{
		"device":  m.id.Name,
		"address": m.id.Address,
	})

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		m.state.markUnavailable()

		log.WithField("timeout", m.connectTimeout).Debug("Connecting...")
		if err := m.client.Connect(ctx, m.id, m.connectTimeout); err != nil {
			if anova.IsUnrecoverable(err) {
				log.WithError(err).Error("Transport stack failed, stopping monitor")
				return
			}
			log.WithError(err).Error("Unable to connect")
			continue
		}
		log.Info("Connected")

		err := m.session()

		m.state.markUnavailable()
		if derr := m.client.Disconnect(); derr != nil {
			log.WithError(derr).Debug("Disconnect failed")
		}

		switch {
		case errors.Is(err, errTerminated):
			return
		case anova.IsUnrecoverable(err):
			log.WithError(err).Error("Transport stack failed, stopping monitor")
			return
		default:
			log.WithError(err).Warn("Session aborted, reconnecting")
		}
	}
}

// session is the inner connected loop. Each iteration performs exactly one
// action: the highest-priority pending command (unit > temperature > mode)
// or one step of the poll sequence. Returns the transport error that ended
// the session, or errTerminated.
func (m *Monitor) session() error {
	step := stepUnit

	for {
		select {
		case <-m.stop:
			return errTerminated
		default:
		}

		if u, ok := m.state.takePendingUnit(); ok {
			if err := m.execSetUnit(u); err != nil {
				return err
			}
			continue
		}
		if v, ok := m.state.takePendingTarget(); ok {
			if err := m.execSetTargetTemperature(v); err != nil {
				return err
			}
			continue
		}
		if mode, ok := m.state.takePendingMode(); ok {
			if err := m.execSetMode(mode); err != nil {
				return err
			}
			continue
		}

		switch step {
		case stepUnit:
			if err := m.pollUnit(); err != nil {
				return err
			}
			step = stepStatus
		case stepStatus:
			if err := m.pollStatus(); err != nil {
				return err
			}
			step = stepCurrentTemp
		case stepCurrentTemp:
			if err := m.pollCurrentTemperature(); err != nil {
				return err
			}
			step = stepTargetTemp
		case stepTargetTemp:
			if err := m.pollTargetTemperature(); err != nil {
				return err
			}
			step = stepIdle
		case stepIdle:
			m.state.updateAvailability()
			if err := m.idleWait(); err != nil {
				return err
			}
			// The unit rarely changes; re-read it only on a fresh connection.
			step = stepStatus
		}
	}
}

// idleWait blocks until a command arrives or the polling cycle elapses,
// whichever comes first. The wake channel is a hint only: pending fields
// are re-checked by the caller on every wake.
func (m *Monitor) idleWait() error {
	timer := time.NewTimer(m.pollingCycle)
	defer timer.Stop()

	select {
	case <-m.stop:
		return errTerminated
	case <-m.wake:
	case <-timer.C:
	}
	return nil
}

func (m *Monitor) pollUnit() error {
	raw, err := m.client.GetTemperatureUnit(m.commandTimeout)
	if err != nil {
		return err
	}
	m.applyUnit("read unit", raw)
	return nil
}

func (m *Monitor) pollStatus() error {
	raw, err := m.client.GetStatus(m.commandTimeout)
	if err != nil {
		return err
	}
	m.applyMode("read status", raw)
	return nil
}

func (m *Monitor) pollCurrentTemperature() error {
	raw, err := m.client.GetCurrentTemperature(m.commandTimeout)
	if err != nil {
		return err
	}
	if v, ok := temperatureFromDevice(raw); ok {
		m.state.storeCurrentTemperature(v)
	} else {
		m.logger.WithField("response", raw).Warn("Malformed current temperature, ignoring")
	}
	return nil
}

func (m *Monitor) pollTargetTemperature() error {
	raw, err := m.client.GetTargetTemperature(m.commandTimeout)
	if err != nil {
		return err
	}
	m.applyTargetTemperature("read target", raw)
	return nil
}

func (m *Monitor) execSetUnit(u TemperatureUnit) error {
	raw, err := m.client.SetTemperatureUnit(unitToDevice(u), m.commandTimeout)
	if err != nil {
		return err
	}
	m.applyUnit("set unit", raw)
	return nil
}

func (m *Monitor) execSetTargetTemperature(v float64) error {
	raw, err := m.client.SetTargetTemperature(v, m.commandTimeout)
	if err != nil {
		return err
	}
	m.applyTargetTemperature("set target", raw)
	return nil
}

func (m *Monitor) execSetMode(mode HvacMode) error {
	var raw string
	var err error
	if mode == ModeHeat {
		raw, err = m.client.Start(m.commandTimeout)
	} else {
		raw, err = m.client.Stop(m.commandTimeout)
	}
	if err != nil {
		return err
	}
	m.applyMode("set mode", raw)
	return nil
}

// applyUnit maps a raw unit response into state; unmapped values are
// logged and ignored
func (m *Monitor) applyUnit(op, raw string) {
	if u, ok := unitFromDevice(raw); ok {
		m.state.storeUnit(u)
	} else {
		m.logger.WithFields(logrus.Fields{"op": op, "response": raw}).Warn("Unrecognized unit, ignoring")
	}
}

func (m *Monitor) applyMode(op, raw string) {
	if mode, ok := modeFromDevice(raw); ok {
		m.state.storeMode(mode)
	} else {
		m.logger.WithFields(logrus.Fields{"op": op, "response": raw}).Warn("Unrecognized run status, ignoring")
	}
}

func (m *Monitor) applyTargetTemperature(op, raw string) {
	if v, ok := temperatureFromDevice(raw); ok {
		m.state.storeTargetTemperature(v)
	} else {
		m.logger.WithFields(logrus.Fields{"op": op, "response": raw}).Warn("Malformed target temperature, ignoring")
	}
}
