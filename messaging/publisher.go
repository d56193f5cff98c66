package messaging

import (
	"fmt"
	"sms-backend/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher is the messaging port. The Notifier publishes through it and
// tests substitute a recording implementation.
type Publisher interface {
	// Publish sends the payload to the given topic. It returns only after
	// the message has been handed to the broker (or reliably queued), so a
	// nil return means the notification will not be dropped.
	Publish(topic string, payload []byte) error
}

// mqttPublisher implements Publisher on top of an MQTT broker connection.
type mqttPublisher struct {
	client mqtt.Client
	logger *zap.SugaredLogger
}

var _ Publisher = (*mqttPublisher)(nil)

// NewMQTTPublisher connects to the configured broker and returns a Publisher
// backed by it.
func NewMQTTPublisher(cfg config.MQTTConfig, logger *zap.SugaredLogger) (Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Errorw("Failed to connect to MQTT broker", "broker_url", cfg.BrokerURL, "error", token.Error())
		return nil, fmt.Errorf("failed to connect to mqtt broker at %s: %w", cfg.BrokerURL, token.Error())
	}
	logger.Infow("Connected to MQTT broker", "broker_url", cfg.BrokerURL, "client_id", cfg.ClientID)

	return &mqttPublisher{
		client: client,
		logger: logger.Named("MQTTPublisher"),
	}, nil
}

func (p *mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.logger.Errorw("Failed to publish message", "topic", topic, "error", err)
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	p.logger.Debugw("Published message", "topic", topic, "bytes", len(payload))
	return nil
}
