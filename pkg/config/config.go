package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Probe    ProbeConfig    `yaml:"probe"`
	Commands CommandsConfig `yaml:"commands"`
	Store    StoreConfig    `yaml:"store"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Log      LogConfig      `yaml:"log"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains the probe link configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ProbeConfig describes the probe front end.
type ProbeConfig struct {
	VRefMV         float64 `yaml:"vref_mv"`         // ADC reference voltage (mV)
	Resolution     int     `yaml:"resolution"`      // ADC resolution in bits
	AverageSamples int     `yaml:"average_samples"` // Number of samples to average (0 = disabled)
}

// CommandsConfig selects where operator commands come from.
type CommandsConfig struct {
	Source string `yaml:"source"` // "stdin", "serial" or "none"
	Port   string `yaml:"port"`   // used when source is "serial"
}

// StoreConfig contains the parameter store configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // bbolt file; empty keeps parameters in memory
	Size int    `yaml:"size"`
}

// MonitorConfig contains reading statistics parameters.
type MonitorConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	StableDrift   float64 `yaml:"stable_drift"` // pH per minute below which a reading counts as settled
}

// MQTTConfig contains telemetry publishing configuration.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	Device      string `yaml:"device"`
	QoS         byte   `yaml:"qos"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MockConfig contains mock probe configuration.
type MockConfig struct {
	Enabled     bool          `yaml:"enabled"`
	NeutralMV   float64       `yaml:"neutral_mv"`  // Probe output in the pH 7.0 buffer (mV)
	AcidMV      float64       `yaml:"acid_mv"`     // Probe output in the pH 4.0 buffer (mV)
	NoiseMV     float64       `yaml:"noise_mv"`    // Noise amplitude (mV)
	Temperature float64       `yaml:"temperature"` // Simulated liquid temperature (°C)
	Period      time.Duration `yaml:"period"`      // Time to swing between the buffers
	SampleRate  time.Duration `yaml:"sample_rate"` // Sample rate
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Probe: ProbeConfig{
			VRefMV:         3300,
			Resolution:     12,
			AverageSamples: 0, // No averaging by default
		},
		Commands: CommandsConfig{
			Source: "stdin",
		},
		Store: StoreConfig{
			Path: "phctl.db",
			Size: 512,
		},
		Monitor: MonitorConfig{
			WindowSeconds: 60,
			StableDrift:   0.02,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			ClientID:    "phctl",
			TopicPrefix: "phctl",
			Device:      "tank",
			QoS:         0,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Mock: MockConfig{
			Enabled:     false,
			NeutralMV:   1500,
			AcidMV:      2032.44,
			NoiseMV:     2,
			Temperature: 25,
			Period:      60 * time.Second,
			SampleRate:  100 * time.Millisecond, // 10 Hz
		},
	}
}

// Load loads configuration from a YAML file and applies PHCTL_* environment
// overrides. If the file doesn't exist or fields are missing, it uses
// default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Probe.VRefMV == 0 {
		c.Probe.VRefMV = def.Probe.VRefMV
	}
	if c.Probe.Resolution == 0 {
		c.Probe.Resolution = def.Probe.Resolution
	}

	if c.Commands.Source == "" {
		c.Commands.Source = def.Commands.Source
	}

	if c.Store.Size == 0 {
		c.Store.Size = def.Store.Size
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}
	if c.Monitor.StableDrift == 0 {
		c.Monitor.StableDrift = def.Monitor.StableDrift
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.MQTT.Device == "" {
		c.MQTT.Device = def.MQTT.Device
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.NeutralMV == 0 {
		c.Mock.NeutralMV = def.Mock.NeutralMV
	}
	if c.Mock.AcidMV == 0 {
		c.Mock.AcidMV = def.Mock.AcidMV
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
