package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/monitor"
)

const (
	readingTopic    = "reading"
	displayTopic    = "display"
	parametersTopic = "parameters"
	statusTopic     = "status"

	// PublishTimeout bounds how long a publish waits for the broker.
	PublishTimeout = 5 * time.Second
)

// ErrTimeout is returned when the broker does not acknowledge a publish in time.
var ErrTimeout = errors.New("publish timed out")

var _ display.Display = (*Publisher)(nil)

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher sends controller output to the broker.
type Publisher struct {
	client  Client
	qos     byte
	prefix  string
	device  string
	screens chan display.Intent // latest screen not yet published
	logger  zerolog.Logger
}

// Parameters is the persisted configuration as published on the parameters topic.
type Parameters struct {
	NeutralVoltage float32 `json:"neutral_mv"`
	AcidVoltage    float32 `json:"acid_mv"`
	TargetPH       float32 `json:"target_ph"`
	Fahrenheit     bool    `json:"fahrenheit"`
	FlowRate       float32 `json:"flow_rate"`
	PumpSpeed      int32   `json:"pump_speed"`
	DoseAmount     float32 `json:"dose_amount"`
	WaitSeconds    float32 `json:"wait_seconds"`
	TestVolume     float32 `json:"test_volume"`
	BufferBand     float32 `json:"buffer_band"`
}

// ParametersOf extracts the persisted fields of s.
func ParametersOf(s controller.Session) Parameters {
	return Parameters{
		NeutralVoltage: s.NeutralVoltage,
		AcidVoltage:    s.AcidVoltage,
		TargetPH:       s.TargetPH,
		Fahrenheit:     s.Fahrenheit,
		FlowRate:       s.FlowRate,
		PumpSpeed:      s.PumpSpeed,
		DoseAmount:     s.DoseAmount,
		WaitSeconds:    s.WaitSeconds,
		TestVolume:     s.TestVolume,
		BufferBand:     s.BufferBand,
	}
}

// NewPublisher creates a publisher writing below <prefix>/<device>/.
func NewPublisher(client Client, cfg *config.MQTTConfig) *Publisher {
	return &Publisher{
		client:  client,
		qos:     cfg.QoS,
		prefix:  cfg.TopicPrefix,
		device:  cfg.Device,
		screens: make(chan display.Intent, 1),
		logger:  log.With().Str("component", "telemetry").Logger(),
	}
}

// Start publishes readings from the channel and the screens passed to
// Render until the context is cancelled or the channel is closed.
func (p *Publisher) Start(ctx context.Context, readings <-chan monitor.Reading) {
	p.logger.Debug().Msg("Starting")
	if err := p.publish(statusTopic, true, "online"); err != nil {
		p.logger.Warn().Err(err).Msg("Error publishing status")
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("Context cancelled, shutting down")
			return
		case r, ok := <-readings:
			if !ok {
				p.logger.Debug().Msg("Reading channel closed, shutting down")
				return
			}
			if err := p.PublishReading(r); err != nil {
				p.logger.Warn().Err(err).Msg("Error publishing reading")
			}
		case intent := <-p.screens:
			if err := p.PublishScreen(intent); err != nil {
				p.logger.Warn().Err(err).Str("screen", intent.Screen).Msg("Error publishing screen")
			}
		}
	}
}

// PublishReading publishes a single reading.
func (p *Publisher) PublishReading(r monitor.Reading) error {
	return p.publishJSON(readingTopic, false, r)
}

// PublishParameters publishes the persisted parameters of s as a retained message.
func (p *Publisher) PublishParameters(s controller.Session) error {
	return p.publishJSON(parametersTopic, true, ParametersOf(s))
}

// PublishScreen publishes the screen as a retained message so late
// subscribers see what the operator sees.
func (p *Publisher) PublishScreen(intent display.Intent) error {
	return p.publishJSON(displayTopic, true, intent)
}

// Render queues the screen for Start and returns without waiting for the
// broker. A screen still queued is replaced by the newer one.
func (p *Publisher) Render(intent display.Intent) error {
	for {
		select {
		case p.screens <- intent:
			return nil
		default:
		}
		select {
		case <-p.screens:
		default:
		}
	}
}

func (p *Publisher) publishJSON(name string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return p.publish(name, retained, payload)
}

func (p *Publisher) publish(name string, retained bool, payload any) error {
	topic := formatTopic(p.prefix, p.device, name)
	token := p.client.Publish(topic, p.qos, retained, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return fmt.Errorf("failed to publish %s: %w", topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// formatTopic builds <prefix>/<device>/<name>, skipping empty parts.
func formatTopic(prefix, device, name string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, device, name} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}
