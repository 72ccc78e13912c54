package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/monitor"
	"github.com/itohio/gophctl/pkg/panel"
	"github.com/itohio/gophctl/pkg/probe"
	"github.com/itohio/gophctl/pkg/station"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked probe instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockFlag {
		cfg.Mock.Enabled = true
	}
	if *averageSamplesFlag >= 0 {
		cfg.Probe.AverageSamples = *averageSamplesFlag
	}
	cfg.Log.Apply(os.Stderr)

	store, closeStore, err := station.OpenStore(&cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open parameter store")
	}
	defer closeStore()

	application := app.NewWithID("com.itohio.gophctl")

	window := application.NewWindow("pH Controller")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	screen := panel.NewScreen(display.DefaultWidth)
	trend := panel.NewTrend(time.Duration(cfg.Monitor.WindowSeconds * float64(time.Second)))

	ctrl, err := controller.New(store, screen)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create controller")
	}
	mon := monitor.New(&cfg.Monitor)

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		station:    station.New(ctrl, mon),
		monitor:    mon,
		screen:     screen,
		trend:      trend,
		window:     window,
	}

	session := state.station.Session()
	trend.SetTarget(session.TargetPH, session.BufferBand)
	state.station.OnSession(func(s controller.Session) {
		fyne.Do(func() { trend.SetTarget(s.TargetPH, s.BufferBand) })
	})
	registerTrendUpdates(state)

	keypad := panel.NewKeypad(panel.DefaultGroups(), func(m command.Mode) {
		handleMode(state, m)
	})

	content := container.NewBorder(
		createToolbar(state),
		nil,
		container.NewVBox(screen, createCommandEntry(state), keypad),
		nil,
		trend,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
	})
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device       probe.Device
	dosingDone   chan struct{} // Closed when the dosing state goroutine exits
	stationDone  chan struct{} // Closed when the station goroutine exits
	sampleStream <-chan probe.RawSample
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	station    *station.Station
	monitor    *monitor.Monitor
	screen     *panel.ScreenWidget
	trend      *panel.TrendWidget
	window     fyne.Window
	connectBtn *widget.Button
	dosingBtn  *widget.Button
	dosing     bool
	chain      *measurementChain // Current measurement chain (nil if not connected)
}

// createToolbar creates the toolbar with Connect, Settings and pump buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	dosingBtn := widget.NewButtonWithIcon("Pump", theme.MediaPlayIcon(), func() {
		handleDosingToggle(state)
	})
	dosingBtn.Disable()
	state.dosingBtn = dosingBtn

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		container.NewHBox(dosingBtn),
		nil,
	)
}

// createCommandEntry lets the operator type raw command tokens.
func createCommandEntry(state *appState) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Command (e.g. ENTERPH)")
	submit := func(token string) {
		entry.SetText("")
		go func() {
			if err := state.station.Command(token); err != nil {
				fyne.Do(func() { dialog.ShowError(err, state.window) })
			}
		}()
	}
	entry.OnSubmitted = submit
	return container.NewBorder(nil, nil, nil, widget.NewButton("Send", func() { submit(entry.Text) }), entry)
}

// handleMode applies a keypad command off the UI goroutine; result screens
// hold the controller for a moment.
func handleMode(state *appState, m command.Mode) {
	go func() {
		if err := state.station.Mode(m); err != nil {
			fyne.Do(func() { dialog.ShowError(err, state.window) })
		}
	}()
}

// closeMeasurementChain gracefully closes the measurement chain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Closing the device closes the raw sample channel, which drains the chain.
	if chain.device != nil {
		chain.device.Close()
	}
	if chain.dosingDone != nil {
		<-chain.dosingDone
	}
	if chain.stationDone != nil {
		<-chain.stationDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil && state.chain.device.IsConnected() {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.station.Attach(nil)
		state.dosingBtn.Disable()
		state.dosing = false
		updateDosingButton(state)
		log.Info().Bool("mock", state.cfg.Mock.Enabled).Msg("Disconnected")
		return
	}

	device := station.OpenDevice(state.cfg)
	if err := device.Connect(); err != nil {
		if state.cfg.Mock.Enabled {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked probe: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	log.Info().Bool("mock", state.cfg.Mock.Enabled).Str("port", state.cfg.Serial.Port).Msg("Connected")

	state.station.Attach(device)
	state.dosingBtn.Enable()

	// Tee raw samples: one branch follows the pump state, one feeds the converters.
	rawSamples := device.Samples()
	forConverter := make(chan probe.RawSample, 100)
	dosingDone := make(chan struct{})
	go func() {
		defer close(dosingDone)
		defer close(forConverter)
		var dosing bool
		for raw := range rawSamples {
			if raw.Dosing != dosing {
				dosing = raw.Dosing
				updateDosingFromSample(state, dosing)
			}
			forConverter <- raw
		}
	}()

	stationDone := make(chan struct{})
	samples := station.Samples(&state.cfg.Probe, forConverter)
	go func() {
		defer close(stationDone)
		for s := range samples {
			if _, err := state.station.Sample(s); err != nil {
				log.Warn().Err(err).Msg("Reading failed")
			}
		}
	}()

	state.chain = &measurementChain{
		device:       device,
		dosingDone:   dosingDone,
		stationDone:  stationDone,
		sampleStream: rawSamples,
	}
}
