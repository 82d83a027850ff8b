package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	adoptionDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	petDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
)

// AdoptionRequestModel is the GORM model for the adoption_requests table.
type AdoptionRequestModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Position   int       `gorm:"not null;index" json:"position"`
	CustomerID string    `gorm:"type:varchar(20);not null;index" json:"customer_id"`
	PetID      string    `gorm:"type:varchar(50);not null;index" json:"pet_id"`
	Status     string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for the GORM model.
func (AdoptionRequestModel) TableName() string {
	return "adoption_requests"
}

// GormAdoptionRepository is the GORM-based implementation of adoption.Repository.
type GormAdoptionRepository struct {
	db *gorm.DB
}

// NewGormAdoptionRepository creates a new GormAdoptionRepository.
func NewGormAdoptionRepository(db *gorm.DB) *GormAdoptionRepository {
	return &GormAdoptionRepository{db: db}
}

// LoadRequests retrieves the ledger in insertion order.
func (r *GormAdoptionRepository) LoadRequests(ctx context.Context) ([]*adoptionDomain.Request, error) {
	var models []AdoptionRequestModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load adoption requests: %w", err)
	}
	return toRequestDomains(models)
}

// SaveRequests replaces the stored ledger.
func (r *GormAdoptionRepository) SaveRequests(ctx context.Context, requests []*adoptionDomain.Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceRequests(tx, requests)
	})
}

// SaveDecision replaces the ledger and the pets table in one transaction.
func (r *GormAdoptionRepository) SaveDecision(ctx context.Context, requests []*adoptionDomain.Request, pets []*petDomain.Pet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceRequests(tx, requests); err != nil {
			return err
		}
		return replacePets(tx, pets)
	})
}

func replaceRequests(tx *gorm.DB, requests []*adoptionDomain.Request) error {
	if err := tx.Where("1 = 1").Delete(&AdoptionRequestModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear adoption requests: %w", err)
	}
	if len(requests) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(toRequestModels(requests), 100).Error; err != nil {
		return fmt.Errorf("failed to insert adoption requests: %w", err)
	}
	return nil
}

// --- Conversions ---

func toRequestModels(requests []*adoptionDomain.Request) []AdoptionRequestModel {
	models := make([]AdoptionRequestModel, len(requests))
	for i, r := range requests {
		models[i] = AdoptionRequestModel{
			ID:         r.ID(),
			Position:   i,
			CustomerID: r.CustomerID(),
			PetID:      r.PetID(),
			Status:     r.Status().String(),
			CreatedAt:  r.CreatedAt(),
			UpdatedAt:  r.UpdatedAt(),
		}
	}
	return models
}

func toRequestDomains(models []AdoptionRequestModel) ([]*adoptionDomain.Request, error) {
	requests := make([]*adoptionDomain.Request, len(models))
	for i, m := range models {
		status, err := adoptionDomain.ParseStatus(m.Status)
		if err != nil {
			return nil, fmt.Errorf("adoption request %s: %w", m.ID, err)
		}
		requests[i] = adoptionDomain.Reconstruct(
			m.ID, m.CustomerID, m.PetID,
			status,
			m.CreatedAt, m.UpdatedAt,
		)
	}
	return requests, nil
}
