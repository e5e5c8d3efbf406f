package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mlefevre/consoscope/internal/config"
	"github.com/mlefevre/consoscope/internal/stats"
	"github.com/mlefevre/consoscope/pkg/models"
)

// Publisher handles publishing consumption readings over MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New creates a publisher connected to the configured broker
func New(cfg config.MQTTConfig, topicPrefix string) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("consoscope")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
	}, nil
}

// ReadingPayload is the JSON shape published per consumption reading
type ReadingPayload struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// PublishReading sends one reading to {prefix}/reading
func (p *Publisher) PublishReading(rec models.ConsumptionRecord) error {
	payload := ReadingPayload{
		Date:   rec.Date.Format("2006-01-02"),
		Value:  rec.Value,
		Source: rec.Source,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/reading", p.topicPrefix)
	if token := p.client.Publish(topic, 1, false, body); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// PublishSummary sends the dataset summary to {prefix}/summary as a
// retained message so subscribers always see the latest state
func (p *Publisher) PublishSummary(summary *stats.Summary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	topic := fmt.Sprintf("%s/summary", p.topicPrefix)
	if token := p.client.Publish(topic, 1, true, body); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
