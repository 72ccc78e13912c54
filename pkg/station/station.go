// Package station wires a probe, the controller and the reading monitor
// into one runnable unit shared by the host applications.
package station

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/monitor"
	"github.com/itohio/gophctl/pkg/ph"
	"github.com/itohio/gophctl/pkg/probe"
	"github.com/itohio/gophctl/pkg/sample"
)

// Station serializes commands and samples onto one controller. Commands
// are applied with the input of the most recent sample.
type Station struct {
	mu     sync.Mutex
	ctrl   *controller.Controller
	last   sample.Sample // temperature in °C
	device probe.Device

	monitor *monitor.Monitor
	logger  zerolog.Logger

	cbMu      sync.RWMutex
	onSession []func(controller.Session)
	onReading []func(monitor.Reading)
}

// New creates a station around ctrl. mon may be nil.
func New(ctrl *controller.Controller, mon *monitor.Monitor) *Station {
	return &Station{
		ctrl:    ctrl,
		monitor: mon,
		logger:  log.With().Str("component", "station").Logger(),
	}
}

// SetLogger replaces the station logger.
func (s *Station) SetLogger(logger zerolog.Logger) {
	s.logger = logger.With().Str("component", "station").Logger()
}

// Attach sets the probe used for pump control. A nil device detaches.
func (s *Station) Attach(dev probe.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = dev
}

// OnSession registers a callback invoked after every command.
func (s *Station) OnSession(cb func(controller.Session)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onSession = append(s.onSession, cb)
}

// OnReading registers a callback invoked for every estimated reading.
func (s *Station) OnReading(cb func(monitor.Reading)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onReading = append(s.onReading, cb)
}

// Session returns a snapshot of the controller session.
func (s *Station) Session() controller.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Session()
}

// Command classifies and applies an operator token.
func (s *Station) Command(token string) error {
	return s.Mode(command.Classify(token))
}

// Mode applies an already classified command.
func (s *Station) Mode(m command.Mode) error {
	s.mu.Lock()
	err := s.ctrl.HandleMode(m, s.input(s.last))
	session := s.ctrl.Session()
	s.mu.Unlock()

	s.cbMu.RLock()
	callbacks := slices.Clone(s.onSession)
	s.cbMu.RUnlock()
	for _, cb := range callbacks {
		cb(session)
	}
	return err
}

// Sample runs the estimator on smp and records the reading. The sample
// temperature is in °C and is converted to the session's unit.
func (s *Station) Sample(smp sample.Sample) (monitor.Reading, error) {
	s.mu.Lock()
	s.last = smp
	value, err := s.ctrl.ReadPH(s.input(smp))
	s.mu.Unlock()

	r := monitor.Reading{
		Timestamp:   smp.Timestamp,
		PH:          value,
		Millivolts:  smp.Millivolts,
		Temperature: smp.Temperature,
		Dosing:      smp.Dosing,
	}
	if s.monitor != nil {
		s.monitor.Add(r)
		r.Drift = s.monitor.Stats().Drift
		r.Stable = s.monitor.Stable()
	}

	s.cbMu.RLock()
	callbacks := slices.Clone(s.onReading)
	s.cbMu.RUnlock()
	for _, cb := range callbacks {
		cb(r)
	}
	return r, err
}

// input converts smp for the controller. Must be called with mu held.
func (s *Station) input(smp sample.Sample) controller.Input {
	t := smp.Temperature
	if s.ctrl.Session().Fahrenheit {
		t = ph.CelsiusToFahrenheit(t)
	}
	return controller.Input{
		Voltage:     smp.Millivolts,
		Temperature: t,
		Dosing:      smp.Dosing,
	}
}

// SetDosing switches the pump through the attached probe.
func (s *Station) SetDosing(on bool) error {
	s.mu.Lock()
	dev := s.device
	s.mu.Unlock()

	if dev == nil {
		return probe.ErrNotConnected
	}
	if err := dev.SetDosing(on); err != nil {
		return fmt.Errorf("failed to set dosing: %w", err)
	}
	s.logger.Info().Bool("dosing", on).Msg("Pump switched")
	return nil
}

// Run feeds samples into the station until the channel closes or ctx is done.
func (s *Station) Run(ctx context.Context, samples <-chan sample.Sample) {
	for {
		select {
		case <-ctx.Done():
			return
		case smp, ok := <-samples:
			if !ok {
				s.logger.Debug().Msg("Sample channel closed")
				return
			}
			if _, err := s.Sample(smp); err != nil {
				s.logger.Warn().Err(err).Msg("Reading failed")
			}
		}
	}
}

// RunCommands applies tokens until the channel closes or ctx is done.
func (s *Station) RunCommands(ctx context.Context, tokens <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case token, ok := <-tokens:
			if !ok {
				s.logger.Debug().Msg("Command channel closed")
				return
			}
			if err := s.Command(token); err != nil {
				s.logger.Error().Err(err).Str("token", token).Msg("Command failed")
			}
		}
	}
}
