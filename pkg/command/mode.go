package command

// Mode is a classified operator command.
type Mode uint8

const (
	None Mode = iota // no match

	// pH two-point calibration
	EnterPH
	CalPH
	ExitPH

	// target pH
	Target
	TargetUp
	TargetDown
	TargetSave

	ToggleUnits

	// pump settings menu rows
	MenuFlowRate
	MenuAmount
	MenuWaitTime
	MenuCalibrate
	MenuTest
	MenuBuffer

	Dosing
	Back

	FlowRate
	FlowRateUp
	FlowRateDown
	FlowRateSave

	Amount
	AmountUp
	AmountDown
	AmountSave

	WaitTime
	WaitTimeUp
	WaitTimeDown
	WaitTimeSave

	// pump calibration wizard
	PumpCal
	PumpCalPrime
	PumpCalStart

	TestVolume
	TestVolumeUp
	TestVolumeDown
	TestVolumeSave

	TestConfirm

	Buffer
	BufferUp
	BufferDown
	BufferSave

	numModes
)

var modeNames = [numModes]string{
	None:           "none",
	EnterPH:        "enter_ph",
	CalPH:          "cal_ph",
	ExitPH:         "exit_ph",
	Target:         "target",
	TargetUp:       "target_up",
	TargetDown:     "target_down",
	TargetSave:     "target_save",
	ToggleUnits:    "toggle_units",
	MenuFlowRate:   "menu_flow_rate",
	MenuAmount:     "menu_amount",
	MenuWaitTime:   "menu_wait_time",
	MenuCalibrate:  "menu_calibrate",
	MenuTest:       "menu_test",
	MenuBuffer:     "menu_buffer",
	Dosing:         "dosing",
	Back:           "back",
	FlowRate:       "flow_rate",
	FlowRateUp:     "flow_rate_up",
	FlowRateDown:   "flow_rate_down",
	FlowRateSave:   "flow_rate_save",
	Amount:         "amount",
	AmountUp:       "amount_up",
	AmountDown:     "amount_down",
	AmountSave:     "amount_save",
	WaitTime:       "wait_time",
	WaitTimeUp:     "wait_time_up",
	WaitTimeDown:   "wait_time_down",
	WaitTimeSave:   "wait_time_save",
	PumpCal:        "pump_cal",
	PumpCalPrime:   "pump_cal_prime",
	PumpCalStart:   "pump_cal_start",
	TestVolume:     "test_volume",
	TestVolumeUp:   "test_volume_up",
	TestVolumeDown: "test_volume_down",
	TestVolumeSave: "test_volume_save",
	TestConfirm:    "test_confirm",
	Buffer:         "buffer",
	BufferUp:       "buffer_up",
	BufferDown:     "buffer_down",
	BufferSave:     "buffer_save",
}

func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return "unknown"
}

// Modes returns every mode except None, in declaration order.
func Modes() []Mode {
	modes := make([]Mode, 0, numModes-1)
	for m := None + 1; m < numModes; m++ {
		modes = append(modes, m)
	}
	return modes
}
