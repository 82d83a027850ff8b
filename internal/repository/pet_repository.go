package repository

import (
	"context"
	"fmt"
	"time"

	petDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
	"gorm.io/gorm"
)

// PetModel is the GORM model for the pets table. Position keeps catalog order.
type PetModel struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Position  int       `gorm:"not null;index" json:"position"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Breed     string    `gorm:"type:varchar(100)" json:"breed"`
	Age       int       `gorm:"type:int;not null;default:0" json:"age"`
	Gender    string    `gorm:"type:varchar(20)" json:"gender"`
	Adopted   bool      `gorm:"not null;default:false;index" json:"adopted"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()" json:"updated_at"`
}

func (PetModel) TableName() string { return "pets" }

// GormPetRepository implements pet.Repository using GORM.
type GormPetRepository struct {
	db *gorm.DB
}

func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

func (r *GormPetRepository) LoadPets(ctx context.Context) ([]*petDomain.Pet, error) {
	var models []PetModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}
	return toPetDomains(models), nil
}

// SavePets replaces the whole table with pets, in order.
func (r *GormPetRepository) SavePets(ctx context.Context, pets []*petDomain.Pet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replacePets(tx, pets)
	})
}

func replacePets(tx *gorm.DB, pets []*petDomain.Pet) error {
	if err := tx.Where("1 = 1").Delete(&PetModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear pets: %w", err)
	}
	if len(pets) == 0 {
		return nil
	}
	models := toPetModels(pets)
	if err := tx.CreateInBatches(models, 100).Error; err != nil {
		return fmt.Errorf("failed to insert pets: %w", err)
	}
	return nil
}

// --- Conversions ---

func toPetModels(pets []*petDomain.Pet) []PetModel {
	models := make([]PetModel, len(pets))
	for i, p := range pets {
		models[i] = PetModel{
			ID:        p.ID(),
			Position:  i,
			Name:      p.Name(),
			Breed:     p.Breed(),
			Age:       p.Age(),
			Gender:    p.Gender(),
			Adopted:   p.Adopted(),
			CreatedAt: p.CreatedAt(),
			UpdatedAt: p.UpdatedAt(),
		}
	}
	return models
}

func toPetDomains(models []PetModel) []*petDomain.Pet {
	pets := make([]*petDomain.Pet, len(models))
	for i, m := range models {
		pets[i] = petDomain.Reconstruct(
			m.ID, m.Name, m.Breed,
			m.Age, m.Gender, m.Adopted,
			m.CreatedAt, m.UpdatedAt,
		)
	}
	return pets
}
