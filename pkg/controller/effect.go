package controller

import (
	"time"

	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
)

// Effect is an action a transition asks the Controller to perform.
type Effect interface {
	effect()
}

// Render draws a screen.
type Render struct {
	Intent display.Intent
}

// PersistFloat writes a float parameter to the store.
type PersistFloat struct {
	Param eeprom.Param
	Value float32
}

// PersistFlag writes a boolean parameter to the store.
type PersistFlag struct {
	Param eeprom.Param
	Value bool
}

// Hold keeps the current screen up before anything else happens.
type Hold struct {
	Duration time.Duration
}

// Diagnostic reports an operator mistake that does not change the state.
type Diagnostic struct {
	Message string
}

func (Render) effect()       {}
func (PersistFloat) effect() {}
func (PersistFlag) effect()  {}
func (Hold) effect()         {}
func (Diagnostic) effect()   {}
