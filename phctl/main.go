package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/monitor"
	"github.com/itohio/gophctl/pkg/probe"
	"github.com/itohio/gophctl/pkg/station"
	"github.com/itohio/gophctl/pkg/telemetry"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked probe instead of serial port")
		dumpFlag           = flag.Bool("dump", false, "Print the stored parameters and exit")
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

	if *dumpFlag {
		dump(os.Stdout, store)
		return
	}

	if err := run(cfg, store); err != nil {
		log.Error().Err(err).Msg("Stopped")
		closeStore()
		os.Exit(1)
	}
}

func run(cfg *config.Config, store *eeprom.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	displays := []display.Display{display.NewText(os.Stdout, display.DefaultWidth)}

	var publisher *telemetry.Publisher
	if cfg.MQTT.Enabled {
		client, err := telemetry.Dial(&cfg.MQTT)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		publisher = telemetry.NewPublisher(client, &cfg.MQTT)
		displays = append(displays, publisher)
	}

	ctrl, err := controller.New(store, display.Multi(displays...))
	if err != nil {
		return err
	}

	mon := monitor.New(&cfg.Monitor)
	st := station.New(ctrl, mon)

	if publisher != nil {
		readings := make(chan monitor.Reading, 100)
		st.OnReading(func(r monitor.Reading) {
			select {
			case readings <- r:
			default:
				log.Warn().Str("component", "telemetry").Msg("Reading queue full, dropping reading")
			}
		})
		st.OnSession(func(s controller.Session) {
			if err := publisher.PublishParameters(s); err != nil {
				log.Warn().Err(err).Msg("Error publishing parameters")
			}
		})
		go publisher.Start(ctx, readings)
		if err := publisher.PublishParameters(st.Session()); err != nil {
			log.Warn().Err(err).Msg("Error publishing parameters")
		}
	}

	device := station.OpenDevice(cfg)
	if err := device.Connect(); err != nil {
		if cfg.Mock.Enabled {
			return fmt.Errorf("failed to connect to mocked probe: %w", err)
		}
		return fmt.Errorf("failed to connect to %s: %w", cfg.Serial.Port, err)
	}
	defer device.Close()
	st.Attach(device)

	tokens, closeCommands, err := commands(ctx, &cfg.Commands, cfg.Serial.BaudRate)
	if err != nil {
		return err
	}
	defer closeCommands()
	if tokens != nil {
		go st.RunCommands(ctx, tokens)
	}

	log.Info().
		Bool("mock", cfg.Mock.Enabled).
		Str("port", cfg.Serial.Port).
		Str("commands", cfg.Commands.Source).
		Msg("Running")

	st.Run(ctx, station.Samples(&cfg.Probe, device.Samples()))

	stats := mon.Stats()
	log.Info().
		Int("readings", stats.Count).
		Float32("mean", stats.Mean).
		Float32("min", stats.Min).
		Float32("max", stats.Max).
		Float32("drift", stats.Drift).
		Msg("Shutting down")
	return nil
}

// commands opens the configured operator command source.
func commands(ctx context.Context, cfg *config.CommandsConfig, baudRate int) (<-chan string, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case "stdin":
		return command.Tokens(ctx, os.Stdin), noop, nil
	case "serial":
		port, err := probe.Open(cfg.Port, baudRate)
		if err != nil {
			return nil, nil, err
		}
		return command.Tokens(ctx, port), port.Close, nil
	case "none":
		return nil, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown command source %q", cfg.Source)
	}
}

// dump prints every parameter cell with its address.
func dump(w io.Writer, store *eeprom.Store) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tPARAM\tKIND\tVALUE")
	for _, e := range store.Dump() {
		fmt.Fprintf(tw, "0x%02X\t%s\t%s\t%s\n", e.Param.Addr, e.Param.Name, e.Param.Kind, e.Value)
	}
	tw.Flush()
}
