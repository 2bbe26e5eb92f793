package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"yard-tracker/internal/config/components"
	"yard-tracker/internal/interfaces"
)

type Client struct {
	client    mqtt.Client
	source    string
	timeout   time.Duration
	logger    zerolog.Logger
	connected atomic.Bool
}

func NewClient(cfg *components.MQTTConfigImpl, source string, logger zerolog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(cfg.GetUrl())
	clientID := fmt.Sprintf("%s-%d", cfg.ClientID, rand.Intn(10000))
	opts.SetClientID(clientID)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetCleanSession(cfg.CleanSession)
	opts.SetConnectTimeout(cfg.ConnectTimeout)

	mqttClient := &Client{
		source:  source,
		timeout: 5 * time.Second,
		logger:  logger,
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)

	mqttClient.client = mqtt.NewClient(opts)

	logger.Debug().
		Str("broker", cfg.GetUrl()).
		Str("client_id", clientID).
		Msg("MQTT client created")

	return mqttClient, nil
}

func newClientFrom(client mqtt.Client, source string, logger zerolog.Logger) *Client {
	return &Client{
		client:  client,
		source:  source,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("error connecting to MQTT broker: %w", token.Error())
		}
		c.connected.Store(true)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection to MQTT broker timed out: %w", ctx.Err())
	}
}

// ConnectWithRetry keeps dialing with exponential backoff until the broker
// accepts the connection or ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context, policy RetryPolicy, attemptTimeout time.Duration) error {
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := c.Connect(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}

		wait := policy.Next(attempt)
		c.logger.Warn().Err(err).
			Int("attempt", attempt+1).
			Dur("retry_in", wait).
			Msg("MQTT connection failed")

		select {
		case <-ctx.Done():
			return fmt.Errorf("giving up connecting to MQTT broker after %d attempts: %w", attempt+1, ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (c *Client) Disconnect(ctx context.Context) {
	if !c.IsConnected() {
		c.logger.Warn().Msg("MQTT client is not connected, nothing to disconnect")
		return
	}

	c.client.Disconnect(250)

	select {
	case <-ctx.Done():
		c.logger.Warn().Msg("MQTT client disconnect timed out")
	default:
		c.connected.Store(false)
		c.logger.Info().Msg("MQTT client disconnected successfully")
	}
}

func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected, cannot subscribe to topic %s", topic)
	}

	token := c.client.Subscribe(topic, qos, handler)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("subscribe to topic %s timed out", topic)
	}

	if token.Error() != nil {
		return fmt.Errorf("error subscribing to topic %s: %w", topic, token.Error())
	}

	c.logger.Info().Str("topic", topic).Msg("Added topic subscription")

	return nil
}

func (c *Client) PublishWithOptions(topic string, payload []byte, options *MessageOptions) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Publish(topic, options.Qos, options.Retained, payload)
	if !token.WaitTimeout(options.Timeout) {
		return fmt.Errorf("publish to topic %s timed out", topic)
	}

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.Debug().
		Str("topic", topic).
		Int("payload_size", len(payload)).
		Bool("retained", options.Retained).
		Msg("successfully published message")

	return nil
}

// Publish sends payload unwrapped, for device-compatible messages.
func (c *Client) Publish(topic string, payload []byte) error {
	opts := DefaultMessageOptions()
	opts.Retained = false

	if err := c.PublishWithOptions(topic, payload, opts); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return nil
}

// PublishJson wraps data in the {data, source} envelope and publishes it
// retained, so late subscribers see the latest state.
func (c *Client) PublishJson(topic string, data interface{}) error {
	msgOptions := DefaultMessageOptions()
	msgOptions.Source = c.source

	message := Message{
		Data:   data,
		Source: msgOptions.Source,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return c.PublishWithOptions(topic, payload, msgOptions)
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client.IsConnected()
}

func (c *Client) onConnect(client mqtt.Client) {
	c.connected.Store(true)

	c.logger.Info().
		Msg("Successfully connected to broker")
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.connected.Store(false)
	c.logger.Warn().Err(err).Msg("lost connection to broker")
}

var _ interfaces.IMqClient = (*Client)(nil)
