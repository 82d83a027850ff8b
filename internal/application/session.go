package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/metrics"
)

// Stores groups the persistence ports the session flushes to.
type Stores struct {
	Pets      pet.Repository
	Customers customer.Repository
	Requests  adoption.Repository
}

// Session holds the three collections loaded at start-up. Every mutation goes
// through exclusive, so writes are serialized and a failed write is rolled back.
type Session struct {
	mu        sync.Mutex
	catalog   *pet.Catalog
	directory *customer.Directory
	ledger    *adoption.Ledger
	stores    Stores
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// OpenSession loads every collection once. clock drives the eligibility rule.
func OpenSession(ctx context.Context, stores Stores, clock func() time.Time, m *metrics.Metrics, logger *zap.Logger) (*Session, error) {
	pets, err := stores.Pets.LoadPets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}
	customers, err := stores.Customers.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	requests, err := stores.Requests.LoadRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load adoption requests: %w", err)
	}

	directory := customer.NewDirectory(clock, customers...)
	s := &Session{
		catalog:   pet.NewCatalog(pets...),
		directory: directory,
		ledger:    adoption.NewLedger(directory, requests...),
		stores:    stores,
		metrics:   m,
		logger:    logger,
	}
	s.refreshGauges()

	logger.Info("session opened",
		zap.Int("pets", len(pets)),
		zap.Int("customers", len(customers)),
		zap.Int("requests", len(requests)),
	)
	return s, nil
}

func (s *Session) Catalog() *pet.Catalog          { return s.catalog }
func (s *Session) Directory() *customer.Directory { return s.directory }
func (s *Session) Ledger() *adoption.Ledger       { return s.ledger }

type snapshot struct {
	pets      []*pet.Pet
	customers []*customer.Customer
	requests  []*adoption.Request
}

// exclusive runs fn alone. If fn fails, every collection is restored to what
// it held before fn started.
func (s *Session) exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := snapshot{
		pets:      s.catalog.All(),
		customers: s.directory.All(),
		requests:  s.ledger.All(),
	}
	if err := fn(); err != nil {
		s.catalog.Replace(before.pets)
		s.directory.Replace(before.customers)
		s.ledger.Replace(before.requests)
		return err
	}
	s.refreshGauges()
	return nil
}

func (s *Session) savePets(ctx context.Context) error {
	if err := s.stores.Pets.SavePets(ctx, s.catalog.All()); err != nil {
		return fmt.Errorf("failed to save pets: %w", err)
	}
	return nil
}

func (s *Session) saveCustomers(ctx context.Context) error {
	if err := s.stores.Customers.SaveCustomers(ctx, s.directory.All()); err != nil {
		return fmt.Errorf("failed to save customers: %w", err)
	}
	return nil
}

func (s *Session) saveRequests(ctx context.Context) error {
	if err := s.stores.Requests.SaveRequests(ctx, s.ledger.All()); err != nil {
		return fmt.Errorf("failed to save adoption requests: %w", err)
	}
	return nil
}

func (s *Session) saveDecision(ctx context.Context) error {
	if err := s.stores.Requests.SaveDecision(ctx, s.ledger.All(), s.catalog.All()); err != nil {
		return fmt.Errorf("failed to save adoption decision: %w", err)
	}
	return nil
}

func (s *Session) refreshGauges() {
	s.metrics.CatalogAvailable.Set(float64(s.catalog.CountAvailable()))
	s.metrics.PendingRequests.Set(float64(len(s.ledger.ListByStatus(adoption.StatusPending))))
}
