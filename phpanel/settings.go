package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gophctl/pkg/probe"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createProbeTab(state),
		createMonitorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// portOptions lists the serial ports with their descriptions and keeps the
// configured port selectable even when it is not plugged in.
func portOptions(ports []probe.Port, current string) (options []string, names map[string]string, selected string) {
	names = make(map[string]string)
	for _, port := range ports {
		display := port.Name
		if port.Description != "" && port.Description != port.Name {
			display = fmt.Sprintf("%s (%s)", port.Name, port.Description)
		}
		options = append(options, display)
		names[display] = port.Name
		if port.Name == current {
			selected = display
		}
	}
	if selected == "" && current != "" {
		options = append(options, current)
		names[current] = current
		selected = current
	}
	return options, names, selected
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := probe.Ports()
	if err != nil {
		ports = nil
	}
	options, names, current := portOptions(ports, state.cfg.Serial.Port)

	portSelect := widget.NewSelect(options, nil)
	if current != "" {
		portSelect.SetSelected(current)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := names[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}

			portChanged := state.cfg.Serial.Port != selectedPort
			wasConnected := state.chain != nil

			state.cfg.Serial.Port = selectedPort
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)

			// Restart the measurement chain on the new port.
			if portChanged && wasConnected && !state.cfg.Mock.Enabled {
				handleConnect(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createProbeTab creates the probe front end configuration tab.
func createProbeTab(state *appState) *container.TabItem {
	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Probe.VRefMV))

	resolutionEntry := widget.NewEntry()
	resolutionEntry.SetText(strconv.Itoa(state.cfg.Probe.Resolution))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Probe.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "VRef (mV)", Widget: vrefEntry},
			{Text: "ADC Resolution (bits)", Widget: resolutionEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
		},
		OnSubmit: func() {
			if vref, err := strconv.ParseFloat(vrefEntry.Text, 64); err == nil {
				state.cfg.Probe.VRefMV = vref
			}
			if res, err := strconv.Atoi(resolutionEntry.Text); err == nil && res > 0 && res <= 16 {
				state.cfg.Probe.Resolution = res
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil {
				state.cfg.Probe.AverageSamples = avg
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Probe", form)
}

// createMonitorTab creates the reading monitor configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Monitor.WindowSeconds))

	stableDriftEntry := widget.NewEntry()
	stableDriftEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Monitor.StableDrift))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Stable Drift (pH/min)", Widget: stableDriftEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil {
				state.cfg.Monitor.WindowSeconds = ws
			}
			if sd, err := strconv.ParseFloat(stableDriftEntry.Text, 64); err == nil {
				state.cfg.Monitor.StableDrift = sd
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createMockTab creates the Mock probe configuration tab.
func createMockTab(state *appState) *container.TabItem {
	neutralEntry := widget.NewEntry()
	neutralEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NeutralMV))

	acidEntry := widget.NewEntry()
	acidEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.AcidMV))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseMV))

	temperatureEntry := widget.NewEntry()
	temperatureEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Temperature))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Neutral Buffer (mV)", Widget: neutralEntry},
			{Text: "Acid Buffer (mV)", Widget: acidEntry},
			{Text: "Noise (mV)", Widget: noiseEntry},
			{Text: "Temperature", Widget: temperatureEntry},
			{Text: "Swing Period", Widget: periodEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(neutralEntry.Text, 64); err == nil {
				state.cfg.Mock.NeutralMV = v
			}
			if v, err := strconv.ParseFloat(acidEntry.Text, 64); err == nil {
				state.cfg.Mock.AcidMV = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseMV = v
			}
			if v, err := strconv.ParseFloat(temperatureEntry.Text, 64); err == nil {
				state.cfg.Mock.Temperature = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Mock.Period = d
			}
			if d, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
