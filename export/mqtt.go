package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttTimeout = 5 * time.Second

var errMQTTTimeout = errors.New("mqtt: timeout")

// Publisher sends records as JSON to an MQTT topic.
type Publisher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewPublisher connects to broker, e.g. tcp://localhost:1883.
func NewPublisher(broker, clientID, topic string, qos byte) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(mqttTimeout).
		SetAutoReconnect(true)
	c := mqtt.NewClient(opts)

	token := c.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("connect to %s: %w", broker, errMQTTTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	lg.Infof("connected to MQTT broker %s as %s", broker, clientID)

	return newPublisher(c, topic, qos), nil
}

func newPublisher(c mqtt.Client, topic string, qos byte) *Publisher {
	return &Publisher{client: c, topic: topic, qos: qos, timeout: mqttTimeout}
}

func (p *Publisher) Publish(r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: %w", p.topic, errMQTTTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
