package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/meterplot/internal/archive"
	"github.com/jgoulah/meterplot/internal/config"
)

// Publisher sends per-day usage summaries to an MQTT broker.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	sensorID    string
}

// New connects to the configured broker.
func New(cfg config.MQTTConfig, sensorID string) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required")
	}

	topicPrefix := cfg.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = "electric_meter"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("meterplot")
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
		sensorID:    sensorID,
	}, nil
}

// SummaryPayload is the per-day message shape.
type SummaryPayload struct {
	Date        string   `json:"date"`
	ConsumedKWh float64  `json:"consumed_kwh"`
	PeakWatt    *float64 `json:"peak_watt,omitempty"`
	PeakAt      string   `json:"peak_at,omitempty"`
	Samples     int      `json:"samples"`
}

// Publish sends one day's summary to <prefix>/<sensor>/summary.
func (p *Publisher) Publish(day archive.DailyUsage) error {
	payload := SummaryPayload{
		Date:        day.Date.Format("2006-01-02"),
		ConsumedKWh: day.ConsumedKWh,
		PeakWatt:    day.PeakWatt,
		Samples:     day.Samples,
	}
	if day.PeakWatt != nil {
		payload.PeakAt = day.PeakAt.Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/summary", p.topicPrefix, p.sensorID)
	token := p.client.Publish(topic, 0, false, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
