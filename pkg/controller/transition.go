package controller

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/ph"
)

const (
	// Epsilon is the tolerance of every threshold comparison.
	Epsilon float32 = 1e-4

	// CalibrationHold is how long pH and target results stay on screen.
	CalibrationHold = 2 * time.Second
	// PumpHold is how long pump parameter results stay on screen.
	PumpHold = time.Second

	// DiagnosticUnknown is reported for unknown commands during a session.
	DiagnosticUnknown = "command not recognized"
)

type action uint8

const (
	actEnter action = iota
	actUp
	actDown
	actSave
)

// adjuster describes one enter / up / down / save sequence.
type adjuster struct {
	group Group
	param eeprom.Param
	title string
	saved string
	hold  time.Duration
	floor float32
	// enterIdle only accepts enter when nothing else is being edited.
	enterIdle bool
	field     func(*Session) *float32
	up        func(v float32) float32
	down      func(v float32) float32
}

func fixed(step float32) func(float32) float32 {
	return func(v float32) float32 { return v + step }
}

var (
	targetAdjuster = &adjuster{
		group:     GroupTarget,
		param:     eeprom.TargetPH,
		title:     "Set pH Target: ",
		saved:     "Set Target",
		hold:      CalibrationHold,
		floor:     0.1,
		enterIdle: true,
		field:     func(s *Session) *float32 { return &s.TargetPH },
		up:        fixed(0.1),
		down:      fixed(-0.1),
	}
	flowRateAdjuster = &adjuster{
		group: GroupFlowRate,
		param: eeprom.FlowRate,
		title: "Set Flow Rate: ",
		saved: "Set Flow Rate",
		hold:  PumpHold,
		floor: 0.05,
		field: func(s *Session) *float32 { return &s.FlowRate },
		up:    fixed(0.05),
		down:  fixed(-0.05),
	}
	amountAdjuster = &adjuster{
		group: GroupAmount,
		param: eeprom.DoseAmount,
		title: "Set Amount: ",
		saved: "Set Amount",
		hold:  PumpHold,
		floor: 0.1,
		field: func(s *Session) *float32 { return &s.DoseAmount },
		up:    func(v float32) float32 { return v + amountStep(v) },
		down:  func(v float32) float32 { return v - amountStep(v) },
	}
	waitTimeAdjuster = &adjuster{
		group: GroupWaitTime,
		param: eeprom.WaitTime,
		title: "Set Wait Time: ",
		saved: "Set Wait Time",
		hold:  PumpHold,
		floor: 0.1,
		field: func(s *Session) *float32 { return &s.WaitSeconds },
		up: func(v float32) float32 {
			if v >= 1.0-Epsilon {
				return v + 1.0
			}
			return v + 0.1
		},
		down: func(v float32) float32 {
			if v <= 1.0+Epsilon {
				return v - 0.1
			}
			return v - 1.0
		},
	}
	testVolumeAdjuster = &adjuster{
		group: GroupTestVolume,
		param: eeprom.TestVolume,
		title: "Amount in ml: ",
		saved: "Calibration",
		hold:  PumpHold,
		floor: 0.1,
		field: func(s *Session) *float32 { return &s.TestVolume },
		up:    fixed(0.1),
		down:  fixed(-0.1),
	}
	bufferAdjuster = &adjuster{
		group: GroupBuffer,
		param: eeprom.BufferBand,
		title: "Set Buffer: ",
		saved: "Set Buffer",
		hold:  PumpHold,
		floor: 0.01,
		field: func(s *Session) *float32 { return &s.BufferBand },
		up: func(v float32) float32 {
			if v < 0.2-Epsilon {
				return v + 0.01
			}
			return v + 0.1
		},
		down: func(v float32) float32 {
			if v <= 0.2+Epsilon {
				return v - 0.01
			}
			return v - 0.1
		},
	}
)

func amountStep(v float32) float32 {
	switch {
	case v <= 0.2+Epsilon:
		return 0.01
	case v <= 1.0+Epsilon:
		return 0.1
	default:
		return 0.5
	}
}

type adjustStep struct {
	adj *adjuster
	act action
}

var adjustModes = map[command.Mode]adjustStep{
	command.Target:         {targetAdjuster, actEnter},
	command.TargetUp:       {targetAdjuster, actUp},
	command.TargetDown:     {targetAdjuster, actDown},
	command.TargetSave:     {targetAdjuster, actSave},
	command.FlowRate:       {flowRateAdjuster, actEnter},
	command.FlowRateUp:     {flowRateAdjuster, actUp},
	command.FlowRateDown:   {flowRateAdjuster, actDown},
	command.FlowRateSave:   {flowRateAdjuster, actSave},
	command.Amount:         {amountAdjuster, actEnter},
	command.AmountUp:       {amountAdjuster, actUp},
	command.AmountDown:     {amountAdjuster, actDown},
	command.AmountSave:     {amountAdjuster, actSave},
	command.WaitTime:       {waitTimeAdjuster, actEnter},
	command.WaitTimeUp:     {waitTimeAdjuster, actUp},
	command.WaitTimeDown:   {waitTimeAdjuster, actDown},
	command.WaitTimeSave:   {waitTimeAdjuster, actSave},
	command.TestVolume:     {testVolumeAdjuster, actEnter},
	command.TestVolumeUp:   {testVolumeAdjuster, actUp},
	command.TestVolumeDown: {testVolumeAdjuster, actDown},
	command.TestVolumeSave: {testVolumeAdjuster, actSave},
	command.Buffer:         {bufferAdjuster, actEnter},
	command.BufferUp:       {bufferAdjuster, actUp},
	command.BufferDown:     {bufferAdjuster, actDown},
	command.BufferSave:     {bufferAdjuster, actSave},
}

var menuModes = map[command.Mode]int{
	command.MenuFlowRate:  0,
	command.MenuAmount:    1,
	command.MenuWaitTime:  2,
	command.MenuCalibrate: 3,
	command.MenuTest:      4,
	command.MenuBuffer:    5,
}

// Transition applies mode m to session s with the live input in. It does
// no I/O; the returned effects describe what has to happen.
func Transition(s Session, m command.Mode, in Input) (Session, []Effect) {
	s.Voltage = in.Voltage
	s.Temperature = in.Temperature

	if step, ok := adjustModes[m]; ok {
		return adjust(s, step.adj, step.act)
	}
	if row, ok := menuModes[m]; ok {
		s.Active = true
		s.leaveEdit()
		return s, []Effect{Render{pumpMenuScreen(row)}}
	}

	switch m {
	case command.None:
		if s.Active {
			return s, []Effect{Diagnostic{DiagnosticUnknown}}
		}
		return s, nil

	case command.EnterPH:
		s.Active = true
		s.leaveEdit()
		s.Editing = GroupPH
		return s, []Effect{Render{calibrationScreen()}}

	case command.CalPH:
		if !s.Editable(GroupPH) {
			return s, nil
		}
		anchor, ok := ph.AnchorFor(in.Voltage)
		if !ok {
			return s, []Effect{Render{notBufferScreen()}}
		}
		switch anchor {
		case ph.Neutral:
			s.NeutralVoltage = in.Voltage
			s.NeutralConfirmed = true
		case ph.Acid:
			s.AcidVoltage = in.Voltage
			s.AcidConfirmed = true
		}
		s.StepComplete = true
		return s, []Effect{Render{bufferScreen(anchor)}}

	case command.ExitPH:
		// Exit closes any session, but only a pH calibration has anchors to keep.
		if !s.Active {
			return s, nil
		}
		var effects []Effect
		if s.Editing == GroupPH && s.StepComplete {
			if s.NeutralConfirmed {
				effects = append(effects, PersistFloat{eeprom.NeutralVoltage, s.NeutralVoltage})
			}
			if s.AcidConfirmed {
				effects = append(effects, PersistFloat{eeprom.AcidVoltage, s.AcidVoltage})
			}
			effects = append(effects, Render{calibrationDoneScreen()})
		} else {
			effects = append(effects, Render{exitScreen()})
		}
		s.Active = false
		s.leaveEdit()
		return s, append(effects, Hold{CalibrationHold})

	case command.ToggleUnits:
		if s.Active || s.StepComplete {
			return s, nil
		}
		s.Fahrenheit = !s.Fahrenheit
		return s, []Effect{
			PersistFlag{eeprom.Units, s.Fahrenheit},
			Render{unitsScreen(s.Fahrenheit)},
		}

	case command.Dosing:
		return s, []Effect{Render{dosingScreen()}}

	case command.Back:
		// Back shows the reading but keeps the session armed.
		s.Active = true
		s.leaveEdit()
		return s, []Effect{Render{backScreen(s)}}

	case command.PumpCal:
		return wizard(s, pumpCalScreen())
	case command.PumpCalPrime:
		return wizard(s, pumpCalPrimeScreen())
	case command.PumpCalStart:
		return wizard(s, pumpCalRunScreen())
	case command.TestConfirm:
		return wizard(s, testConfirmScreen())
	}

	return s, nil
}

func wizard(s Session, screen display.Intent) (Session, []Effect) {
	s.Active = true
	s.leaveEdit()
	return s, []Effect{Render{screen}}
}

func adjust(s Session, a *adjuster, act action) (Session, []Effect) {
	if act == actEnter {
		if a.enterIdle && s.Editing != GroupNone {
			return s, nil
		}
		s.Active = true
		s.leaveEdit()
		s.Editing = a.group
		return s, []Effect{Render{adjustScreen(a.title, *a.field(&s))}}
	}

	if !s.Editable(a.group) {
		return s, nil
	}

	v := a.field(&s)
	switch act {
	case actUp:
		*v = round2(a.up(*v))
	case actDown:
		if *v <= a.floor+Epsilon {
			return s, nil
		}
		*v = round2(max(a.down(*v), a.floor))
	case actSave:
		s.Active = false
		s.Editing = GroupNone
		return s, []Effect{
			PersistFloat{a.param, *v},
			Render{savedScreen(a.saved)},
			Hold{a.hold},
		}
	}
	return s, []Effect{Render{adjustScreen(a.title, *v)}}
}

// Reading runs the estimator on in and shows the home screen unless a
// session is in progress.
func Reading(s Session, in Input) (Session, []Effect) {
	s.Voltage = in.Voltage
	s.Temperature = in.Temperature
	s.PH = ph.Estimate(s.Calibration(), in.Voltage, in.Temperature, s.Fahrenheit)
	if s.Active {
		return s, nil
	}
	return s, []Effect{Render{homeScreen(s, in.Dosing)}}
}

// round2 snaps v to two decimals so repeated steps do not drift.
func round2(v float32) float32 {
	return math32.Floor(v*100+0.5) / 100
}
