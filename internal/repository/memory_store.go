package repository

import (
	"context"
	"slices"
	"sync"

	adoptionDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	customerDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	petDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
)

// MemoryStore keeps the three collections in process. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	pets      []*petDomain.Pet
	customers []*customerDomain.Customer
	requests  []*adoptionDomain.Request
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadPets(_ context.Context) ([]*petDomain.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pets), nil
}

func (s *MemoryStore) SavePets(_ context.Context, pets []*petDomain.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pets = slices.Clone(pets)
	return nil
}

func (s *MemoryStore) LoadCustomers(_ context.Context) ([]*customerDomain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers), nil
}

func (s *MemoryStore) SaveCustomers(_ context.Context, customers []*customerDomain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = slices.Clone(customers)
	return nil
}

func (s *MemoryStore) LoadRequests(_ context.Context) ([]*adoptionDomain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.requests), nil
}

func (s *MemoryStore) SaveRequests(_ context.Context, requests []*adoptionDomain.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = slices.Clone(requests)
	return nil
}

func (s *MemoryStore) SaveDecision(_ context.Context, requests []*adoptionDomain.Request, pets []*petDomain.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = slices.Clone(requests)
	s.pets = slices.Clone(pets)
	return nil
}
