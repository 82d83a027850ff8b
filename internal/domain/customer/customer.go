package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

// MinimumAdoptionAge is the age, in calendar years, a customer must reach to adopt.
const MinimumAdoptionAge = 21

var (
	ErrNotFound           = errors.New("customer not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotEligible        = errors.New("customer not eligible to adopt")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCustomer    = errors.New("invalid customer")
)

// Customer is a registered adopter. It is immutable once signed up.
type Customer struct {
	id        string
	name      string
	gender    string
	address   string
	email     string
	phone     string
	birthYear int
	username  string
	password  string
	createdAt time.Time
}

// Registration carries the sign-up form of a new customer.
type Registration struct {
	Name      string
	Gender    string
	Address   string
	Email     string
	Phone     string
	BirthYear int
	Username  string
	Password  string
}

// NewCustomer validates a registration. The id is assigned by the Directory.
func NewCustomer(r Registration) (*Customer, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, domain.NewValidationError(ErrInvalidCustomer, "customer name is required")
	}
	if strings.TrimSpace(r.Username) == "" {
		return nil, domain.NewValidationError(ErrInvalidCustomer, "username is required")
	}
	if r.Password == "" {
		return nil, domain.NewValidationError(ErrInvalidCustomer, "password is required")
	}
	if r.BirthYear <= 0 {
		return nil, domain.NewValidationError(ErrInvalidCustomer, "birth year must be positive")
	}

	return &Customer{
		name:      strings.TrimSpace(r.Name),
		gender:    strings.TrimSpace(r.Gender),
		address:   strings.TrimSpace(r.Address),
		email:     strings.TrimSpace(r.Email),
		phone:     strings.TrimSpace(r.Phone),
		birthYear: r.BirthYear,
		username:  strings.TrimSpace(r.Username),
		password:  r.Password,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Customer from persistence data (no validation).
func Reconstruct(
	id, name, gender, address, email, phone string,
	birthYear int,
	username, password string,
	createdAt time.Time,
) *Customer {
	return &Customer{
		id:        id,
		name:      name,
		gender:    gender,
		address:   address,
		email:     email,
		phone:     phone,
		birthYear: birthYear,
		username:  username,
		password:  password,
		createdAt: createdAt,
	}
}

func (c *Customer) ID() string           { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Gender() string       { return c.gender }
func (c *Customer) Address() string      { return c.address }
func (c *Customer) Email() string        { return c.email }
func (c *Customer) Phone() string        { return c.phone }
func (c *Customer) BirthYear() int       { return c.birthYear }
func (c *Customer) Username() string     { return c.username }
func (c *Customer) Password() string     { return c.password }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }

// IsEligibleToAdopt compares calendar years only, so a customer born in
// 2004 is eligible for the whole of 2025.
func (c *Customer) IsEligibleToAdopt(now time.Time) bool {
	return now.Year()-c.birthYear >= MinimumAdoptionAge
}

func (c *Customer) clone() *Customer {
	cp := *c
	return &cp
}
