package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// reconnectInterval is the fixed backoff between connection attempts.
const reconnectInterval = 5 * time.Second

// publishTimeout bounds how long a publish may wait for its token.
const publishTimeout = 5 * time.Second

// Client talks to a real MQTT broker. It implements Publisher,
// ClimaxPublisher, and ConnectionStatus.
type Client struct {
	client paho.Client
}

// NewClient connects to the broker under the given client id. paho's
// auto-reconnect handles broker loss with the fixed retry interval; the
// caller's loop keeps running regardless.
func NewClient(broker, clientID string) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(reconnectInterval)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Client{client: client}, nil
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// PublishRaw sends one message and waits briefly for the token.
func (c *Client) PublishRaw(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishContact sends a contact change at QoS 1: the controller must
// eventually see every change, and its handling is idempotent.
func (c *Client) PublishContact(msg ContactMessage) error {
	payload, err := FormatContact(msg)
	if err != nil {
		return fmt.Errorf("format contact: %w", err)
	}
	return c.PublishRaw(TopicContact, 1, false, payload)
}

// PublishSignals sends a signal report at QoS 0; reports are periodic
// and a lost one is superseded by the next.
func (c *Client) PublishSignals(msg SignalsMessage) error {
	payload, err := FormatSignals(msg)
	if err != nil {
		return fmt.Errorf("format signals: %w", err)
	}
	return c.PublishRaw(TopicSignals, 0, false, payload)
}

// PublishClimax sends the ring state, retained so late subscribers see
// the current state immediately.
func (c *Client) PublishClimax(msg ClimaxMessage) error {
	payload, err := FormatClimax(msg)
	if err != nil {
		return fmt.Errorf("format climax: %w", err)
	}
	return c.PublishRaw(TopicClimax, 1, true, payload)
}

// RequestConfig asks the controller for the statue table.
func (c *Client) RequestConfig() error {
	return c.PublishRaw(TopicConfigRequest, 0, false, []byte("true"))
}

// SubscribeContact delivers every contact message to fn. Malformed
// payloads are dropped.
func (c *Client) SubscribeContact(fn func(ContactMessage)) error {
	token := c.client.Subscribe(TopicContact, 1, func(_ paho.Client, m paho.Message) {
		msg, err := ParseContact(m.Payload())
		if err != nil {
			return
		}
		fn(msg)
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", TopicContact)
	}
	return token.Error()
}

// SubscribeConfigRequests delivers config request pings to fn.
func (c *Client) SubscribeConfigRequests(fn func()) error {
	token := c.client.Subscribe(TopicConfigRequest, 0, func(_ paho.Client, _ paho.Message) {
		fn()
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", TopicConfigRequest)
	}
	return token.Error()
}

// SubscribeConfigResponses delivers raw statue table payloads to fn.
func (c *Client) SubscribeConfigResponses(fn func(payload []byte)) error {
	token := c.client.Subscribe(TopicConfigResponse, 1, func(_ paho.Client, m paho.Message) {
		fn(m.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", TopicConfigResponse)
	}
	return token.Error()
}

// PublishConfigResponse sends the statue table, retained.
func (c *Client) PublishConfigResponse(table []byte) error {
	return c.PublishRaw(TopicConfigResponse, 1, true, table)
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // milliseconds
	return nil
}
