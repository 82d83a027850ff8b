package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/kafka"
)

// TopicShelterEvents carries partner shelter hand-overs.
const TopicShelterEvents = "shelter.events"

// Shelter event types.
const (
	ShelterPetIntake      = "shelter.pet_intake"
	ShelterPetTransferred = "shelter.pet_transferred"
)

// PetIntakeEvent announces a pet handed over to us by a partner shelter.
type PetIntakeEvent struct {
	ShelterID string `json:"shelter_id"`
	PetID     string `json:"pet_id"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
}

// PetTransferredEvent announces a pet that left for another shelter.
type PetTransferredEvent struct {
	ShelterID string `json:"shelter_id"`
	PetID     string `json:"pet_id"`
}

// CatalogIntake is the part of the pet service the consumer drives.
type CatalogIntake interface {
	IntakePet(ctx context.Context, req application.CreatePetRequest) (*application.PetDTO, error)
	TransferPet(ctx context.Context, id string) error
}

// ShelterIntakeConsumer keeps the catalog in step with partner shelters.
type ShelterIntakeConsumer struct {
	consumer *kafka.Consumer
	catalog  CatalogIntake
	logger   *zap.Logger
}

// NewShelterIntakeConsumer creates a new ShelterIntakeConsumer.
func NewShelterIntakeConsumer(
	brokers []string,
	groupID string,
	catalog CatalogIntake,
	logger *zap.Logger,
) *ShelterIntakeConsumer {
	return &ShelterIntakeConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicShelterEvents, logger),
		catalog:  catalog,
		logger:   logger,
	}
}

// Start begins consuming shelter events. This blocks until the context is cancelled.
func (c *ShelterIntakeConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ShelterIntakeConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ShelterIntakeConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from shelter topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case ShelterPetIntake:
		return c.handleIntake(ctx, cloudEvent)
	case ShelterPetTransferred:
		return c.handleTransfer(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled shelter event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ShelterIntakeConsumer) handleIntake(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PetIntakeEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PetIntakeEvent data", zap.Error(err))
		return nil
	}

	_, err := c.catalog.IntakePet(ctx, application.CreatePetRequest{
		ID:     evt.PetID,
		Name:   evt.Name,
		Breed:  evt.Breed,
		Age:    evt.Age,
		Gender: evt.Gender,
	})
	return c.settle("intake", evt.ShelterID, evt.PetID, err)
}

func (c *ShelterIntakeConsumer) handleTransfer(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PetTransferredEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PetTransferredEvent data", zap.Error(err))
		return nil
	}

	err := c.catalog.TransferPet(ctx, evt.PetID)
	return c.settle("transfer", evt.ShelterID, evt.PetID, err)
}

// settle drops events the catalog rejects (duplicates, unknown pets) and
// returns infrastructure failures so the offset is not committed.
func (c *ShelterIntakeConsumer) settle(action, shelterID, petID string, err error) error {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("shelter_id", shelterID),
		zap.String("pet_id", petID),
	}
	switch {
	case err == nil:
		c.logger.Info("shelter event applied", fields...)
		return nil
	case domain.CodeOf(err) != "":
		c.logger.Warn("shelter event rejected", append(fields, zap.Error(err))...)
		return nil
	default:
		c.logger.Error("failed to apply shelter event", append(fields, zap.Error(err))...)
		return err
	}
}
