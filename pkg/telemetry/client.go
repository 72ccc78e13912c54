// Package telemetry publishes readings, screens and parameters over MQTT.
package telemetry

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/config"
)

// Dial connects to the broker described by cfg.
func Dial(cfg *config.MQTTConfig) (mqtt.Client, error) {
	logger := log.With().Str("component", "mqtt").Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetOnConnectHandler(connectHandler(logger))
	opts.SetConnectionLostHandler(connectLostHandler(logger))
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetWill(formatTopic(cfg.TopicPrefix, cfg.Device, statusTopic), "offline", cfg.QoS, true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.Info().Str("broker", cfg.Broker).Msg("Connected to broker")
	return client, nil
}

func connectHandler(logger zerolog.Logger) mqtt.OnConnectHandler {
	return func(mqtt.Client) {
		logger.Debug().Msg("Connection established")
	}
}

func connectLostHandler(logger zerolog.Logger) mqtt.ConnectionLostHandler {
	return func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("Connection lost")
	}
}
