package controller

import (
	"fmt"

	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/ph"
)

// Screen names carried by display intents.
const (
	ScreenHome            = "home"
	ScreenBack            = "back"
	ScreenCalibration     = "calibration"
	ScreenBuffer          = "buffer"
	ScreenNotBuffer       = "not_buffer"
	ScreenCalibrationDone = "calibration_done"
	ScreenExit            = "exit"
	ScreenAdjust          = "adjust"
	ScreenSaved           = "saved"
	ScreenUnits           = "units"
	ScreenPumpMenu        = "pump_menu"
	ScreenDosing          = "dosing"
	ScreenPumpCal         = "pump_cal"
	ScreenPumpCalPrime    = "pump_cal_prime"
	ScreenPumpCalRun      = "pump_cal_run"
	ScreenTestConfirm     = "test_confirm"
)

func text(s string) display.Line {
	return display.Line{Text: s, Size: display.Normal}
}

func large(s string) display.Line {
	return display.Line{Text: s, Size: display.Large}
}

func blank() display.Line {
	return display.Line{}
}

func homeScreen(s Session, dosing bool) display.Intent {
	unit := "C"
	if s.Fahrenheit {
		unit = "F"
	}
	indicator := blank()
	if dosing {
		indicator = text("..v..")
	}
	return display.Intent{
		Screen: ScreenHome,
		Lines: []display.Line{
			text(fmt.Sprintf("Temperature: %.1f %s", s.Temperature, unit)),
			large(fmt.Sprintf("pH: %.2f", s.PH)),
			indicator,
			text(fmt.Sprintf("Target: %.2f", s.TargetPH)),
		},
	}
}

func backScreen(s Session) display.Intent {
	return display.Intent{
		Screen: ScreenBack,
		Lines: []display.Line{
			blank(),
			large(fmt.Sprintf("pH: %.2f", s.PH)),
			text(fmt.Sprintf("Target: %.2f", s.TargetPH)),
		},
	}
}

func calibrationScreen() display.Intent {
	return display.Intent{
		Screen: ScreenCalibration,
		Lines: []display.Line{
			text("Calibration Mode"),
			text("Please insert the probe to the 4.0 or 7.0 standard buffer solution, and press 'SET'"),
		},
	}
}

func bufferScreen(a ph.Anchor) display.Intent {
	return display.Intent{
		Screen: ScreenBuffer,
		Lines: []display.Line{
			text("Buffer Solution"),
			large(a.String()),
			text("Move to the next solution, or save and exit"),
		},
	}
}

func notBufferScreen() display.Intent {
	return display.Intent{
		Screen: ScreenNotBuffer,
		Lines:  []display.Line{text("Not a Buffer Solution"), text("Try Again")},
	}
}

func calibrationDoneScreen() display.Intent {
	return display.Intent{
		Screen: ScreenCalibrationDone,
		Lines:  []display.Line{text("Calibration"), text("Successful")},
	}
}

func exitScreen() display.Intent {
	return display.Intent{
		Screen: ScreenExit,
		Lines:  []display.Line{text("Exit")},
	}
}

func unitsScreen(fahrenheit bool) display.Intent {
	name := "Celsius"
	if fahrenheit {
		name = "Fahrenheit"
	}
	return display.Intent{
		Screen: ScreenUnits,
		Lines:  []display.Line{large(name)},
	}
}

// MenuRows are the pump settings entries in display order.
var MenuRows = []string{"Flow Rate", "Amount", "Wait time", "Calibrate", "Test 2 ml", "Buffer"}

func pumpMenuScreen(selected int) display.Intent {
	lines := make([]display.Line, 0, len(MenuRows)+1)
	lines = append(lines, text("Pump Settings"))
	for i, row := range MenuRows {
		lines = append(lines, display.Line{Text: row, Size: display.Normal, Selected: i == selected})
	}
	return display.Intent{Screen: ScreenPumpMenu, Lines: lines}
}

func dosingScreen() display.Intent {
	return display.Intent{
		Screen: ScreenDosing,
		Lines:  []display.Line{blank(), large("Dosing..."), blank()},
	}
}

func adjustScreen(title string, v float32) display.Intent {
	return display.Intent{
		Screen: ScreenAdjust,
		Lines:  []display.Line{text(title), blank(), large(fmt.Sprintf("%.2f", v))},
	}
}

func savedScreen(what string) display.Intent {
	return display.Intent{
		Screen: ScreenSaved,
		Lines:  []display.Line{blank(), text(what), text("Successful")},
	}
}

func pumpCalScreen() display.Intent {
	return display.Intent{
		Screen: ScreenPumpCal,
		Lines: []display.Line{
			text("Pump Calibration"),
			blank(),
			text("Please set one end of the pump in a liquid and the other end in a measuring cup and press 'SET'"),
		},
	}
}

func pumpCalPrimeScreen() display.Intent {
	return display.Intent{
		Screen: ScreenPumpCalPrime,
		Lines: []display.Line{
			text("Pump Calibration"),
			blank(),
			text("Make sure that the tube is full of liquid. Press 'DOWN' to fill it and press 'SET' to start calibration"),
		},
	}
}

func pumpCalRunScreen() display.Intent {
	return display.Intent{
		Screen: ScreenPumpCalRun,
		Lines:  []display.Line{text("Calibrating...")},
	}
}

func testConfirmScreen() display.Intent {
	return display.Intent{
		Screen: ScreenTestConfirm,
		Lines:  []display.Line{text("This will test 2ml"), blank(), text("Continue?")},
	}
}
