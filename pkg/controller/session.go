package controller

import (
	"fmt"

	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/ph"
)

// Factory defaults for every persisted parameter.
const (
	DefaultTargetPH    float32 = 6.3
	DefaultFlowRate    float32 = 0.6
	DefaultPumpSpeed   int32   = 160
	DefaultDoseAmount  float32 = 1.0
	DefaultWaitSeconds float32 = 60.0
	DefaultTestVolume  float32 = 6.0
	DefaultBufferBand  float32 = 0.1
)

// Group identifies the adjustment sequence currently being edited.
type Group uint8

const (
	GroupNone Group = iota
	GroupPH
	GroupTarget
	GroupFlowRate
	GroupAmount
	GroupWaitTime
	GroupTestVolume
	GroupBuffer
)

func (g Group) String() string {
	switch g {
	case GroupNone:
		return "none"
	case GroupPH:
		return "ph"
	case GroupTarget:
		return "target"
	case GroupFlowRate:
		return "flow_rate"
	case GroupAmount:
		return "amount"
	case GroupWaitTime:
		return "wait_time"
	case GroupTestVolume:
		return "test_volume"
	case GroupBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Input is the live sample that accompanies every command.
type Input struct {
	Voltage     float32 // mV
	Temperature float32 // in the unit selected by Session.Fahrenheit
	Dosing      bool
}

// Session is the complete controller state.
type Session struct {
	Temperature float32
	PH          float32
	Voltage     float32

	NeutralVoltage float32
	AcidVoltage    float32
	TargetPH       float32
	Fahrenheit     bool

	FlowRate    float32
	PumpSpeed   int32
	DoseAmount  float32
	WaitSeconds float32
	TestVolume  float32
	BufferBand  float32

	Active       bool
	StepComplete bool
	Editing      Group

	// Anchors accepted since the last EnterPH.
	NeutralConfirmed bool
	AcidConfirmed    bool
}

// Defaults returns a session holding the factory values.
func Defaults() Session {
	cal := ph.DefaultCalibration()
	return Session{
		Temperature:    ph.ReferenceTemperature,
		PH:             ph.NeutralPH,
		Voltage:        cal.Neutral,
		NeutralVoltage: cal.Neutral,
		AcidVoltage:    cal.Acid,
		TargetPH:       DefaultTargetPH,
		FlowRate:       DefaultFlowRate,
		PumpSpeed:      DefaultPumpSpeed,
		DoseAmount:     DefaultDoseAmount,
		WaitSeconds:    DefaultWaitSeconds,
		TestVolume:     DefaultTestVolume,
		BufferBand:     DefaultBufferBand,
	}
}

// Calibration returns the anchors as an estimator calibration.
func (s Session) Calibration() ph.Calibration {
	return ph.Calibration{Neutral: s.NeutralVoltage, Acid: s.AcidVoltage}
}

// Editable reports whether the adjust steps of g are accepted.
func (s Session) Editable(g Group) bool {
	return s.Active && s.Editing == g
}

// leaveEdit abandons whatever sequence was in progress.
func (s *Session) leaveEdit() {
	s.Editing = GroupNone
	s.StepComplete = false
	s.NeutralConfirmed = false
	s.AcidConfirmed = false
}

// Load reconciles the session with the store. Erased or corrupt cells are
// replaced by the session's current value, which is written back.
func Load(store *eeprom.Store, s Session) (Session, error) {
	floats := []struct {
		param eeprom.Param
		field *float32
	}{
		{eeprom.NeutralVoltage, &s.NeutralVoltage},
		{eeprom.AcidVoltage, &s.AcidVoltage},
		{eeprom.TargetPH, &s.TargetPH},
		{eeprom.DoseAmount, &s.DoseAmount},
		{eeprom.WaitTime, &s.WaitSeconds},
		{eeprom.TestVolume, &s.TestVolume},
		{eeprom.FlowRate, &s.FlowRate},
		{eeprom.BufferBand, &s.BufferBand},
	}
	for _, f := range floats {
		v, err := store.LoadFloat32(f.param, *f.field)
		if err != nil {
			return s, fmt.Errorf("failed to load %s: %w", f.param.Name, err)
		}
		*f.field = v
	}

	speed, err := store.LoadInt32(eeprom.PumpSpeed, s.PumpSpeed)
	if err != nil {
		return s, fmt.Errorf("failed to load %s: %w", eeprom.PumpSpeed.Name, err)
	}
	s.PumpSpeed = speed

	units, err := store.LoadFlag(eeprom.Units, s.Fahrenheit)
	if err != nil {
		return s, fmt.Errorf("failed to load %s: %w", eeprom.Units.Name, err)
	}
	s.Fahrenheit = units

	return s, nil
}
