// Package controller implements the calibration and configuration state
// machine of the pH controller.
package controller

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
)

// Controller owns the session and executes the effects of every
// transition. It must only be used from one goroutine.
type Controller struct {
	session Session
	store   *eeprom.Store
	display display.Display
	logger  zerolog.Logger
	sleep   func(time.Duration)
}

// New creates a controller with factory defaults reconciled against store.
func New(store *eeprom.Store, d display.Display) (*Controller, error) {
	if d == nil {
		d = display.Discard
	}

	c := &Controller{
		store:   store,
		display: d,
		logger:  log.With().Str("component", "controller").Logger(),
		sleep:   time.Sleep,
	}

	s, err := Load(store, Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	c.session = s

	c.logger.Info().
		Float32("neutral", s.NeutralVoltage).
		Float32("acid", s.AcidVoltage).
		Float32("target", s.TargetPH).
		Bool("fahrenheit", s.Fahrenheit).
		Msg("Parameters loaded")

	return c, nil
}

// SetLogger replaces the controller logger.
func (c *Controller) SetLogger(logger zerolog.Logger) {
	c.logger = logger.With().Str("component", "controller").Logger()
}

// SetSleep replaces the function used to hold result screens.
func (c *Controller) SetSleep(sleep func(time.Duration)) {
	c.sleep = sleep
}

// Session returns a snapshot of the session.
func (c *Controller) Session() Session {
	return c.session
}

// Handle classifies token and applies it.
func (c *Controller) Handle(token string, in Input) error {
	m := command.Classify(token)
	c.logger.Debug().Str("token", token).Stringer("mode", m).Msg("Command received")
	return c.HandleMode(m, in)
}

// HandleMode applies an already classified mode. The session change is
// kept even when persisting fails.
func (c *Controller) HandleMode(m command.Mode, in Input) error {
	next, effects := Transition(c.session, m, in)
	if next.Editing != c.session.Editing || next.Active != c.session.Active {
		c.logger.Debug().
			Stringer("mode", m).
			Stringer("editing", next.Editing).
			Bool("active", next.Active).
			Msg("Session changed")
	}
	c.session = next
	return c.apply(effects)
}

// ReadPH estimates the pH for in and refreshes the home screen when no
// session is in progress.
func (c *Controller) ReadPH(in Input) (float32, error) {
	next, effects := Reading(c.session, in)
	c.session = next
	return next.PH, c.apply(effects)
}

func (c *Controller) apply(effects []Effect) error {
	var first error
	fail := func(err error) {
		c.logger.Error().Err(err).Msg("Effect failed")
		if first == nil {
			first = err
		}
	}

	for _, e := range effects {
		switch e := e.(type) {
		case Render:
			if err := c.display.Render(e.Intent); err != nil {
				c.logger.Warn().Err(err).Str("screen", e.Intent.Screen).Msg("Render failed")
			}
		case PersistFloat:
			if err := c.store.SetFloat32(e.Param, e.Value); err != nil {
				fail(fmt.Errorf("failed to persist %s: %w", e.Param.Name, err))
				continue
			}
			c.logger.Info().Str("param", e.Param.Name).Float32("value", e.Value).Msg("Parameter saved")
		case PersistFlag:
			if err := c.store.SetFlag(e.Param, e.Value); err != nil {
				fail(fmt.Errorf("failed to persist %s: %w", e.Param.Name, err))
				continue
			}
			c.logger.Info().Str("param", e.Param.Name).Bool("value", e.Value).Msg("Parameter saved")
		case Hold:
			c.sleep(e.Duration)
		case Diagnostic:
			c.logger.Warn().Msg(e.Message)
		}
	}
	return first
}
