package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const EventLicenseActivated = "license.activated"

type LicenseActivated struct {
	Event         string    `json:"event"`
	Version       int       `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
	LicenseID     string    `json:"license_id"`
	HotelID       int64     `json:"hotel_id"`
	PlanID        string    `json:"plan_id"`
	TransactionID string    `json:"transaction_id"`
	BillingPeriod string    `json:"billing_period"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type Publisher interface {
	PublishLicenseActivated(ctx context.Context, evt LicenseActivated) error
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishLicenseActivated(context.Context, LicenseActivated) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}}
}

// PublishLicenseActivated keys messages by licence id so events for one
// licence stay ordered within a partition.
func (p *KafkaPublisher) PublishLicenseActivated(ctx context.Context, evt LicenseActivated) error {
	if evt.Event == "" {
		evt.Event = EventLicenseActivated
	}
	if evt.Version == 0 {
		evt.Version = 1
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", evt.Event, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.LicenseID),
		Value: body,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(evt.Event)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", evt.Event, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
