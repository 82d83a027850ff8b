package repository

import (
	"context"
	"fmt"
	"time"

	customerDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	"gorm.io/gorm"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID        string    `gorm:"type:varchar(20);primaryKey" json:"id"`
	Position  int       `gorm:"not null;index" json:"position"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Gender    string    `gorm:"type:varchar(20)" json:"gender"`
	Address   string    `gorm:"type:text" json:"address"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	BirthYear int       `gorm:"not null" json:"birth_year"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"password"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
}

func (CustomerModel) TableName() string { return "customers" }

// GormCustomerRepository implements customer.Repository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) LoadCustomers(ctx context.Context) ([]*customerDomain.Customer, error) {
	var models []CustomerModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	return toCustomerDomains(models), nil
}

// SaveCustomers replaces the whole table with customers, in order.
func (r *GormCustomerRepository) SaveCustomers(ctx context.Context, customers []*customerDomain.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CustomerModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear customers: %w", err)
		}
		if len(customers) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(toCustomerModels(customers), 100).Error; err != nil {
			return fmt.Errorf("failed to insert customers: %w", err)
		}
		return nil
	})
}

// --- Conversions ---

func toCustomerModels(customers []*customerDomain.Customer) []CustomerModel {
	models := make([]CustomerModel, len(customers))
	for i, c := range customers {
		models[i] = CustomerModel{
			ID:        c.ID(),
			Position:  i,
			Name:      c.Name(),
			Gender:    c.Gender(),
			Address:   c.Address(),
			Email:     c.Email(),
			Phone:     c.Phone(),
			BirthYear: c.BirthYear(),
			Username:  c.Username(),
			Password:  c.Password(),
			CreatedAt: c.CreatedAt(),
		}
	}
	return models
}

func toCustomerDomains(models []CustomerModel) []*customerDomain.Customer {
	customers := make([]*customerDomain.Customer, len(models))
	for i, m := range models {
		customers[i] = customerDomain.Reconstruct(
			m.ID, m.Name, m.Gender, m.Address, m.Email, m.Phone,
			m.BirthYear,
			m.Username, m.Password,
			m.CreatedAt,
		)
	}
	return customers
}
