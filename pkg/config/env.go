package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PHCTL_"

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding the process environment. Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// applyEnv overrides configuration values with PHCTL_* variables.
func (c *Config) applyEnv() {
	c.Serial.Port = getEnv("SERIAL_PORT", c.Serial.Port)
	c.Serial.BaudRate = getEnvInt("SERIAL_BAUD_RATE", c.Serial.BaudRate)

	c.Probe.VRefMV = getEnvFloat("PROBE_VREF_MV", c.Probe.VRefMV)
	c.Probe.Resolution = getEnvInt("PROBE_RESOLUTION", c.Probe.Resolution)
	c.Probe.AverageSamples = getEnvInt("PROBE_AVERAGE_SAMPLES", c.Probe.AverageSamples)

	c.Commands.Source = getEnv("COMMANDS_SOURCE", c.Commands.Source)
	c.Commands.Port = getEnv("COMMANDS_PORT", c.Commands.Port)

	c.Store.Path = getEnv("STORE_PATH", c.Store.Path)

	c.MQTT.Enabled = getEnvBool("MQTT_ENABLED", c.MQTT.Enabled)
	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnv("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnv("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", c.MQTT.TopicPrefix)
	c.MQTT.Device = getEnv("MQTT_DEVICE", c.MQTT.Device)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvBool("LOG_PRETTY", c.Log.Pretty)

	c.Mock.Enabled = getEnvBool("MOCK", c.Mock.Enabled)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Err(err).Str("key", EnvPrefix+key).Msg("Failed to parse float, using default")
		return defaultValue
	}
	return floatValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("key", EnvPrefix+key).Msg("Failed to parse int, using default")
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Err(err).Str("key", EnvPrefix+key).Msg("Failed to parse bool, using default")
		return defaultValue
	}
	return boolValue
}
