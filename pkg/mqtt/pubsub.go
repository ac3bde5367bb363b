package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout  = 10 * time.Second
	maxReconnect    = time.Minute
	disconnectQuiet = 250

	snapshotTopicTemplate = "m/%s/c/%s/dashboard/snapshot"
)

var (
	errTimeout    = errors.New("timed out waiting for broker")
	errEmptyTopic = errors.New("empty topic")
	errEmptyID    = errors.New("empty ID")
)

type Config struct {
	URL       string        `env:"URL"        envDefault:""`
	ClientID  string        `env:"CLIENT_ID"  envDefault:"greenboard"`
	Username  string        `env:"USERNAME"   envDefault:""`
	Password  string        `env:"PASSWORD"   envDefault:""`
	DomainID  string        `env:"DOMAIN_ID"  envDefault:""`
	ChannelID string        `env:"CHANNEL_ID" envDefault:""`
	QoS       byte          `env:"QOS"        envDefault:"1"`
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"30s"`
}

// SnapshotTopic is where dashboard snapshots are published.
func SnapshotTopic(domainID, channelID string) string {
	return fmt.Sprintf(snapshotTopicTemplate, domainID, channelID)
}

type pubsub struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
	logger  *slog.Logger
}

type Handler func(topic string, msg map[string]any) error

type PubSub interface {
	Publish(ctx context.Context, topic string, msg any) error
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Unsubscribe(ctx context.Context, topic string) error
	Disconnect(ctx context.Context) error
}

func NewPubSub(cfg Config, logger *slog.Logger) (PubSub, error) {
	if cfg.ClientID == "" {
		return nil, errEmptyID
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return newPubSub(client, cfg.QoS, cfg.Timeout, logger), nil
}

func newPubSub(client mqtt.Client, qos byte, timeout time.Duration, logger *slog.Logger) PubSub {
	return &pubsub{
		client:  client,
		qos:     qos,
		timeout: timeout,
		logger:  logger,
	}
}

// Publish sends msg as JSON. Snapshots are not retained; late subscribers
// wait for the next change.
func (ps *pubsub) Publish(ctx context.Context, topic string, msg any) error {
	if topic == "" {
		return errEmptyTopic
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ps.wait("publish", ps.client.Publish(topic, ps.qos, false, data))
}

func (ps *pubsub) Subscribe(_ context.Context, topic string, handler Handler) error {
	if topic == "" {
		return errEmptyTopic
	}

	return ps.wait("subscribe", ps.client.Subscribe(topic, ps.qos, ps.mqttHandler(handler)))
}

func (ps *pubsub) Unsubscribe(_ context.Context, topic string) error {
	if topic == "" {
		return errEmptyTopic
	}

	return ps.wait("unsubscribe", ps.client.Unsubscribe(topic))
}

func (ps *pubsub) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ps.client.Disconnect(disconnectQuiet)

	return nil
}

func (ps *pubsub) wait(op string, token mqtt.Token) error {
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !token.WaitTimeout(ps.timeout) {
		return fmt.Errorf("%s: %w", op, errTimeout)
	}

	return token.Error()
}

func newClient(cfg Config, logger *slog.Logger) (mqtt.Client, error) {
	logger = logger.With(slog.String("broker", cfg.URL), slog.String("client_id", cfg.ClientID))
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetMaxReconnectInterval(maxReconnect).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("MQTT connection established")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("MQTT connection lost", slog.Any("error", err))
		}).
		SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
			logger.Info("MQTT reconnecting")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, errTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, err)
	}

	return client, nil
}

func (ps *pubsub) mqttHandler(h Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		var msg map[string]any
		if err := json.Unmarshal(m.Payload(), &msg); err != nil {
			ps.logger.Warn("dropping non-JSON message", slog.String("topic", m.Topic()), slog.Any("error", err))

			return
		}

		if err := h(m.Topic(), msg); err != nil {
			ps.logger.Warn("failed to handle MQTT message", slog.String("topic", m.Topic()), slog.Any("error", err))
		}

		m.Ack()
	}
}
