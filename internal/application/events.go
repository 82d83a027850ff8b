package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/kafka"
)

// EventSource is the CloudEvents source of everything this service publishes.
const EventSource = "service-adoption"

// Topics.
const (
	TopicAdoptionEvents = "adoption.events"
	TopicCatalogEvents  = "catalog.events"
	TopicCustomerEvents = "customer.events"
)

// Event types.
const (
	AdoptionRequested     = "adoption.requested"
	AdoptionApproved      = "adoption.approved"
	AdoptionDenied        = "adoption.denied"
	AdoptionCancelled     = "adoption.cancelled"
	AdoptionRecordRemoved = "adoption.record_removed"

	CatalogPetAdded   = "catalog.pet_added"
	CatalogPetUpdated = "catalog.pet_updated"
	CatalogPetRemoved = "catalog.pet_removed"

	CustomerRegistered = "customer.registered"
)

// AdoptionEvent is the payload of every adoption.* event.
type AdoptionEvent struct {
	RequestID  string    `json:"request_id"`
	CustomerID string    `json:"customer_id"`
	PetID      string    `json:"pet_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PetEvent is the payload of every catalog.* event.
type PetEvent struct {
	PetID      string    `json:"pet_id"`
	Name       string    `json:"name,omitempty"`
	Breed      string    `json:"breed,omitempty"`
	Species    string    `json:"species"`
	Adopted    bool      `json:"adopted"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CustomerRegisteredEvent announces a sign-up; the mailer greets the customer from it.
type CustomerRegisteredEvent struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers domain events after a mutation has been persisted.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, data interface{}) error
}

// KafkaPublisher publishes events as CloudEvents through a Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish implements EventPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, eventType, key string, data interface{}) error {
	cloudEvent, err := kafka.NewCloudEvent(EventSource, eventType, data)
	if err != nil {
		return err
	}
	return p.producer.PublishEvent(ctx, topic, key, cloudEvent)
}

// LogPublisher only logs events; used when Kafka is disabled.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements EventPublisher.
func (p *LogPublisher) Publish(_ context.Context, topic, eventType, key string, _ interface{}) error {
	p.logger.Info("event not published, kafka disabled",
		zap.String("topic", topic),
		zap.String("event_type", eventType),
		zap.String("key", key),
	)
	return nil
}

// publishEvent never fails the caller: the mutation is already committed.
func publishEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	if err := pub.Publish(ctx, topic, eventType, key, data); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
