package pet

import (
	"errors"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

// Sentinel causes carried by catalog errors.
var (
	ErrNotFound    = errors.New("pet not found")
	ErrDuplicateID = errors.New("pet id already exists")
	ErrInvalidPet  = errors.New("invalid pet")
)

// Species is derived from the prefix code of a pet id.
type Species string

const (
	SpeciesDog     Species = "Dog"
	SpeciesCat     Species = "Cat"
	SpeciesBird    Species = "Bird"
	SpeciesReptile Species = "Reptile"
	SpeciesFish    Species = "Fish"
	SpeciesUnknown Species = "Unknown"
)

var speciesByPrefix = map[string]Species{
	"D": SpeciesDog,
	"C": SpeciesCat,
	"B": SpeciesBird,
	"R": SpeciesReptile,
	"F": SpeciesFish,
}

// SpeciesFromID maps "D_001" to Dog and so on; unrecognized prefixes are Unknown.
func SpeciesFromID(id string) Species {
	prefix, _, _ := strings.Cut(id, "_")
	if s, ok := speciesByPrefix[prefix]; ok {
		return s
	}
	return SpeciesUnknown
}

// Pet is an adoptable animal in the catalog.
type Pet struct {
	id        string
	name      string
	breed     string
	age       int
	gender    string
	adopted   bool
	createdAt time.Time
	updatedAt time.Time
}

// NewPet creates an unadopted pet with validated fields.
func NewPet(id, name, breed string, age int, gender string) (*Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError(ErrInvalidPet, "pet ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError(ErrInvalidPet, "pet name is required")
	}
	if age < 0 {
		return nil, domain.NewValidationError(ErrInvalidPet, "pet age cannot be negative")
	}

	now := time.Now().UTC()
	return &Pet{
		id:        id,
		name:      strings.TrimSpace(name),
		breed:     strings.TrimSpace(breed),
		age:       age,
		gender:    strings.TrimSpace(gender),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Pet from persistence data (no validation).
func Reconstruct(
	id, name, breed string,
	age int,
	gender string,
	adopted bool,
	createdAt, updatedAt time.Time,
) *Pet {
	return &Pet{
		id:        id,
		name:      name,
		breed:     breed,
		age:       age,
		gender:    gender,
		adopted:   adopted,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *Pet) ID() string           { return p.id }
func (p *Pet) Name() string         { return p.name }
func (p *Pet) Breed() string        { return p.breed }
func (p *Pet) Age() int             { return p.age }
func (p *Pet) Gender() string       { return p.gender }
func (p *Pet) Adopted() bool        { return p.adopted }
func (p *Pet) Species() Species     { return SpeciesFromID(p.id) }
func (p *Pet) CreatedAt() time.Time { return p.createdAt }
func (p *Pet) UpdatedAt() time.Time { return p.updatedAt }

// IsAvailable reports whether the pet can still be adopted.
func (p *Pet) IsAvailable() bool {
	return !p.adopted
}

// clone returns a detached copy so callers never share catalog state.
func (p *Pet) clone() *Pet {
	c := *p
	return &c
}

// Update carries the replacement values for an admin edit.
// Adopted is left untouched when nil.
type Update struct {
	Name    string
	Breed   string
	Age     int
	Gender  string
	Adopted *bool
}

func (u Update) validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return domain.NewValidationError(ErrInvalidPet, "pet name is required")
	}
	if u.Age < 0 {
		return domain.NewValidationError(ErrInvalidPet, "pet age cannot be negative")
	}
	return nil
}

func (p *Pet) apply(u Update) {
	p.name = strings.TrimSpace(u.Name)
	p.breed = strings.TrimSpace(u.Breed)
	p.age = u.Age
	p.gender = strings.TrimSpace(u.Gender)
	if u.Adopted != nil {
		p.adopted = *u.Adopted
	}
	p.updatedAt = time.Now().UTC()
}

func (p *Pet) setAdopted(adopted bool) {
	p.adopted = adopted
	p.updatedAt = time.Now().UTC()
}
