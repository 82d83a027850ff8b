package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	petDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
)

const (
	sourceAdmin   = "admin"
	sourceShelter = "shelter"
)

// CreatePetRequest is the request DTO for adding a pet to the catalog.
type CreatePetRequest struct {
	ID     string `json:"id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Breed  string `json:"breed"`
	Age    int    `json:"age" binding:"min=0"`
	Gender string `json:"gender"`
}

// UpdatePetRequest is the request DTO for editing a pet. Adopted is only
// applied when present.
type UpdatePetRequest struct {
	Name    string `json:"name" binding:"required"`
	Breed   string `json:"breed"`
	Age     int    `json:"age" binding:"min=0"`
	Gender  string `json:"gender"`
	Adopted *bool  `json:"adopted"`
}

// ListPetsQuery filters and orders a pet listing.
type ListPetsQuery struct {
	Breed   string
	Gender  string
	Adopted *bool
	Sort    string
}

// PetDTO is the API response representation of a pet.
type PetDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Species   string    `json:"species"`
	Adopted   bool      `json:"adopted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PetService implements the catalog use cases.
type PetService struct {
	session   *Session
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPetService creates a new PetService.
func NewPetService(session *Session, publisher EventPublisher, logger *zap.Logger) *PetService {
	return &PetService{session: session, publisher: publisher, logger: logger}
}

// AddPet adds a new, unadopted pet.
func (s *PetService) AddPet(ctx context.Context, req CreatePetRequest) (*PetDTO, error) {
	return s.addPet(ctx, req, sourceAdmin)
}

// IntakePet adds a pet handed over by a partner shelter.
func (s *PetService) IntakePet(ctx context.Context, req CreatePetRequest) (*PetDTO, error) {
	return s.addPet(ctx, req, sourceShelter)
}

func (s *PetService) addPet(ctx context.Context, req CreatePetRequest, source string) (*PetDTO, error) {
	pet, err := petDomain.NewPet(req.ID, req.Name, req.Breed, req.Age, req.Gender)
	if err != nil {
		return nil, err
	}

	err = s.session.exclusive(func() error {
		if err := s.session.catalog.Add(pet); err != nil {
			return err
		}
		return s.session.savePets(ctx)
	})
	if err != nil {
		s.logger.Error("failed to add pet", zap.String("pet_id", pet.ID()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("pet added",
		zap.String("pet_id", pet.ID()),
		zap.String("species", string(pet.Species())),
		zap.String("source", source),
	)
	s.publishPetEvent(ctx, CatalogPetAdded, pet, source)
	result := toPetDTO(pet)
	return &result, nil
}

// UpdatePet replaces a pet's details.
func (s *PetService) UpdatePet(ctx context.Context, id string, req UpdatePetRequest) (*PetDTO, error) {
	var edited *petDomain.Pet
	err := s.session.exclusive(func() error {
		var err error
		edited, err = s.session.catalog.Edit(id, petDomain.Update{
			Name:    req.Name,
			Breed:   req.Breed,
			Age:     req.Age,
			Gender:  req.Gender,
			Adopted: req.Adopted,
		})
		if err != nil {
			return err
		}
		return s.session.savePets(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet updated", zap.String("pet_id", id))
	s.publishPetEvent(ctx, CatalogPetUpdated, edited, sourceAdmin)
	result := toPetDTO(edited)
	return &result, nil
}

// RemovePet deletes a pet from the catalog. Its requests stay in the ledger.
func (s *PetService) RemovePet(ctx context.Context, id string) error {
	return s.removePet(ctx, id, sourceAdmin)
}

// TransferPet removes a pet that moved to another shelter.
func (s *PetService) TransferPet(ctx context.Context, id string) error {
	return s.removePet(ctx, id, sourceShelter)
}

func (s *PetService) removePet(ctx context.Context, id, source string) error {
	var removed *petDomain.Pet
	err := s.session.exclusive(func() error {
		var err error
		if removed, err = s.session.catalog.Remove(id); err != nil {
			return err
		}
		return s.session.savePets(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("pet removed", zap.String("pet_id", id), zap.String("source", source))
	s.publishPetEvent(ctx, CatalogPetRemoved, removed, source)
	return nil
}

// GetPet returns a single pet.
func (s *PetService) GetPet(_ context.Context, id string) (*PetDTO, error) {
	pet, err := s.session.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	result := toPetDTO(pet)
	return &result, nil
}

// ListAvailablePets returns the unadopted pets matching q. q.Adopted is ignored.
func (s *PetService) ListAvailablePets(_ context.Context, q ListPetsQuery) ([]PetDTO, error) {
	order, err := petDomain.ParseOrder(q.Sort)
	if err != nil {
		return nil, err
	}
	pets := s.session.catalog.Find(petDomain.Query{
		Breed:         q.Breed,
		Gender:        q.Gender,
		AvailableOnly: true,
		Order:         order,
	})
	return toPetDTOs(pets), nil
}

// ListPets returns every pet matching q, adopted or not.
func (s *PetService) ListPets(_ context.Context, q ListPetsQuery) ([]PetDTO, error) {
	order, err := petDomain.ParseOrder(q.Sort)
	if err != nil {
		return nil, err
	}
	pets := s.session.catalog.Find(petDomain.Query{
		Breed:   q.Breed,
		Gender:  q.Gender,
		Adopted: q.Adopted,
		Order:   order,
	})
	return toPetDTOs(pets), nil
}

// SortCatalog reorders the stored catalog by "age" or "id" and returns it.
func (s *PetService) SortCatalog(ctx context.Context, by string) ([]PetDTO, error) {
	order, err := petDomain.ParseOrder(by)
	if err != nil {
		return nil, err
	}
	err = s.session.exclusive(func() error {
		if err := s.session.catalog.Sort(order); err != nil {
			return err
		}
		return s.session.savePets(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog sorted", zap.String("order", string(order)))
	return toPetDTOs(s.session.catalog.All()), nil
}

func (s *PetService) publishPetEvent(ctx context.Context, eventType string, p *petDomain.Pet, source string) {
	evt := PetEvent{
		PetID:      p.ID(),
		Name:       p.Name(),
		Breed:      p.Breed(),
		Species:    string(p.Species()),
		Adopted:    p.Adopted(),
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, TopicCatalogEvents, eventType, p.ID(), evt)
}

func toPetDTO(p *petDomain.Pet) PetDTO {
	return PetDTO{
		ID:        p.ID(),
		Name:      p.Name(),
		Breed:     p.Breed(),
		Age:       p.Age(),
		Gender:    p.Gender(),
		Species:   string(p.Species()),
		Adopted:   p.Adopted(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toPetDTOs(pets []*petDomain.Pet) []PetDTO {
	dtos := make([]PetDTO, len(pets))
	for i, p := range pets {
		dtos[i] = toPetDTO(p)
	}
	return dtos
}
