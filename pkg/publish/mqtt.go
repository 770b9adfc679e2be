package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/itohio/gorain/pkg/config"
	"github.com/itohio/gorain/pkg/monitor"
	"go.uber.org/zap"
)

const (
	// DefaultQueueSize is the number of updates buffered ahead of the broker.
	DefaultQueueSize = 32
	// DefaultPublishTimeout bounds how long a single publish may wait for the broker.
	DefaultPublishTimeout = 5 * time.Second
	// StatusQoS is the QoS level status updates are published with.
	StatusQoS = 1
)

// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
var ErrPublishTimeout = errors.New("publish timed out")

// tokenPublisher is the part of mqtt.Client the publisher needs.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes updates to {prefix}/{device_id}/status.
// Updates are queued by Enqueue and published from the Start loop so the
// monitor goroutine never waits on the network.
type MQTT struct {
	client   tokenPublisher
	topic    string
	encoding string
	timeout  time.Duration
	logger   *zap.SugaredLogger

	queue chan monitor.Update
}

// Connect dials the broker described by cfg and returns a publisher bound to it.
func Connect(cfg config.MQTTConfig, logger *zap.SugaredLogger) (*MQTT, mqtt.Client, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "gorain-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Infow("connected to MQTT broker", "broker", cfg.Broker, "client_id", clientID)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Warnw("MQTT connection lost", "broker", cfg.Broker, "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	return NewMQTT(client, cfg, logger), client, nil
}

// NewMQTT creates a publisher on top of an already connected client.
func NewMQTT(client tokenPublisher, cfg config.MQTTConfig, logger *zap.SugaredLogger) *MQTT {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &MQTT{
		client:   client,
		topic:    StatusTopic(cfg.TopicPrefix, cfg.DeviceID),
		encoding: cfg.Encoding,
		timeout:  DefaultPublishTimeout,
		logger:   logger,
		queue:    make(chan monitor.Update, DefaultQueueSize),
	}
}

// StatusTopic builds the status topic for a device.
func StatusTopic(prefix, deviceID string) string {
	return strings.Trim(prefix, "/") + "/" + deviceID + "/status"
}

// Topic returns the topic updates are published to.
func (p *MQTT) Topic() string {
	return p.topic
}

// Enqueue queues u for publishing. When the queue is full the update is
// dropped; the next one supersedes it anyway.
func (p *MQTT) Enqueue(u monitor.Update) {
	select {
	case p.queue <- u:
	default:
		p.logger.Warn("MQTT queue full, dropping update")
	}
}

// Start publishes queued updates until ctx is cancelled.
func (p *MQTT) Start(ctx context.Context) {
	p.logger.Infow("MQTT publisher starting", "topic", p.topic)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("MQTT publisher stopped")
			return
		case u := <-p.queue:
			if err := p.Publish(u); err != nil {
				p.logger.Warnw("failed to publish update", "topic", p.topic, "error", err)
			}
		}
	}
}

// Publish sends one update synchronously.
func (p *MQTT) Publish(u monitor.Update) error {
	payload, err := Encode(NewPayload(u), p.encoding)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, StatusQoS, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return nil
}
