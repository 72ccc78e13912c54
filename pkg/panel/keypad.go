package panel

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gophctl/pkg/command"
)

// KeyRow is a row of command buttons.
type KeyRow struct {
	Label string
	Modes []command.Mode
}

// KeyGroup is one keypad tab.
type KeyGroup struct {
	Title string
	Rows  []KeyRow
}

// DefaultGroups lays out every operator command once, grouped the way the
// controller screens are.
func DefaultGroups() []KeyGroup {
	return []KeyGroup{
		{Title: "pH", Rows: []KeyRow{
			{Label: "Calibrate", Modes: []command.Mode{command.EnterPH, command.CalPH, command.ExitPH}},
			{Label: "Target", Modes: []command.Mode{command.Target, command.TargetUp, command.TargetDown, command.TargetSave}},
			{Label: "Display", Modes: []command.Mode{command.ToggleUnits, command.Dosing, command.Back}},
		}},
		{Title: "Pump", Rows: []KeyRow{
			{Label: "Menu", Modes: []command.Mode{
				command.MenuFlowRate, command.MenuAmount, command.MenuWaitTime,
				command.MenuCalibrate, command.MenuTest, command.MenuBuffer,
			}},
			{Label: "Flow rate", Modes: []command.Mode{command.FlowRate, command.FlowRateUp, command.FlowRateDown, command.FlowRateSave}},
			{Label: "Amount", Modes: []command.Mode{command.Amount, command.AmountUp, command.AmountDown, command.AmountSave}},
			{Label: "Wait time", Modes: []command.Mode{command.WaitTime, command.WaitTimeUp, command.WaitTimeDown, command.WaitTimeSave}},
			{Label: "Buffer", Modes: []command.Mode{command.Buffer, command.BufferUp, command.BufferDown, command.BufferSave}},
		}},
		{Title: "Pump calibration", Rows: []KeyRow{
			{Label: "Wizard", Modes: []command.Mode{command.PumpCal, command.PumpCalPrime, command.PumpCalStart, command.TestConfirm}},
			{Label: "Test volume", Modes: []command.Mode{command.TestVolume, command.TestVolumeUp, command.TestVolumeDown, command.TestVolumeSave}},
		}},
	}
}

// NewKeypad builds tabbed command buttons. Each button is labelled with the
// command keyword and calls onMode when tapped.
func NewKeypad(groups []KeyGroup, onMode func(command.Mode)) *container.AppTabs {
	tabs := container.NewAppTabs()
	for _, g := range groups {
		form := widget.NewForm()
		for _, row := range g.Rows {
			buttons := make([]fyne.CanvasObject, 0, len(row.Modes))
			for _, m := range row.Modes {
				buttons = append(buttons, widget.NewButton(command.Keyword(m), func() { onMode(m) }))
			}
			form.Append(row.Label, container.NewHBox(buttons...))
		}
		tabs.Append(container.NewTabItem(g.Title, form))
	}
	return tabs
}
