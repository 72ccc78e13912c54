package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// handleDosingToggle switches the pump from the toolbar.
func handleDosingToggle(state *appState) {
	if state.chain == nil {
		return
	}

	state.dosing = !state.dosing
	if err := state.station.SetDosing(state.dosing); err != nil {
		// Revert state on error
		state.dosing = !state.dosing
		dialog.ShowError(err, state.window)
		return
	}

	updateDosingButton(state)
}

// updateDosingFromSample follows the pump state reported by the probe.
// It is called only when the reported state changes.
func updateDosingFromSample(state *appState, dosing bool) {
	fyne.Do(func() {
		state.dosing = dosing
		updateDosingButton(state)
	})
}

// updateDosingButton updates the visual state of the pump button.
func updateDosingButton(state *appState) {
	if state.dosing {
		state.dosingBtn.Importance = widget.HighImportance
	} else {
		state.dosingBtn.Importance = widget.MediumImportance
	}
	state.dosingBtn.Refresh()
}
