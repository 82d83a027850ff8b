package application_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/repository"
)

var errDiskFull = errors.New("disk full")

// flakyStore wraps the memory store and fails every save while failing is set.
type flakyStore struct {
	*repository.MemoryStore
	failing atomic.Bool
}

func (s *flakyStore) err() error {
	if s.failing.Load() {
		return errDiskFull
	}
	return nil
}

func (s *flakyStore) SavePets(ctx context.Context, pets []*pet.Pet) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.MemoryStore.SavePets(ctx, pets)
}

func (s *flakyStore) SaveCustomers(ctx context.Context, customers []*customer.Customer) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.MemoryStore.SaveCustomers(ctx, customers)
}

func (s *flakyStore) SaveRequests(ctx context.Context, requests []*adoption.Request) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.MemoryStore.SaveRequests(ctx, requests)
}

func (s *flakyStore) SaveDecision(ctx context.Context, requests []*adoption.Request, pets []*pet.Pet) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.MemoryStore.SaveDecision(ctx, requests, pets)
}

// recordingPublisher remembers the event types it was asked to publish.
type recordingPublisher struct {
	types chan string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{types: make(chan string, 64)}
}

func (p *recordingPublisher) Publish(_ context.Context, _, eventType, _ string, _ interface{}) error {
	p.types <- eventType
	return nil
}

func (p *recordingPublisher) drain() []string {
	var out []string
	for {
		select {
		case t := <-p.types:
			out = append(out, t)
		default:
			return out
		}
	}
}

type fixture struct {
	store     *flakyStore
	session   *application.Session
	pets      *application.PetService
	customers *application.CustomerService
	adoptions *application.AdoptionService
	events    *recordingPublisher
	metrics   *metrics.Metrics
}

func clock2025() time.Time {
	return time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC)
}

// newFixture seeds three pets and three customers: CUST001 and CUST002 are
// adults, CUST003 was born in 2006 and cannot adopt yet.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := clock2025()

	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	require.NoError(t, store.SavePets(ctx, []*pet.Pet{
		pet.Reconstruct("D_001", "Rex", "Labrador", 4, "Male", false, now, now),
		pet.Reconstruct("C_002", "Tom", "Siamese", 2, "Male", false, now, now),
		pet.Reconstruct("B_003", "Kiwi", "Parrot", 1, "Female", false, now, now),
	}))
	require.NoError(t, store.SaveCustomers(ctx, []*customer.Customer{
		customer.Reconstruct("CUST001", "Alice", "Female", "1 Main St", "alice@example.com", "555-0101", 1990, "alice", "pw1", now),
		customer.Reconstruct("CUST002", "Bob", "Male", "2 Main St", "bob@example.com", "555-0102", 1985, "bob", "pw2", now),
		customer.Reconstruct("CUST003", "Cara", "Female", "3 Main St", "cara@example.com", "555-0103", 2006, "cara", "pw3", now),
	}))

	m := metrics.NewNop()
	logger := zap.NewNop()
	session, err := application.OpenSession(ctx, application.Stores{
		Pets:      store,
		Customers: store,
		Requests:  store,
	}, clock2025, m, logger)
	require.NoError(t, err)

	events := newRecordingPublisher()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return &fixture{
		store:   store,
		session: session,
		pets:    application.NewPetService(session, events, logger),
		customers: application.NewCustomerService(session, jwtManager,
			application.AdminCredentials{Username: "admin", Password: "password"}, events, logger),
		adoptions: application.NewAdoptionService(session, events, logger),
		events:    events,
		metrics:   m,
	}
}

func (f *fixture) pet(t *testing.T, id string) *pet.Pet {
	t.Helper()
	p, err := f.session.Catalog().Get(id)
	require.NoError(t, err)
	return p
}

func (f *fixture) storedPet(t *testing.T, id string) *pet.Pet {
	t.Helper()
	pets, err := f.store.LoadPets(context.Background())
	require.NoError(t, err)
	for _, p := range pets {
		if p.ID() == id {
			return p
		}
	}
	t.Fatalf("pet %s not stored", id)
	return nil
}

func (f *fixture) storedRequests(t *testing.T) []*adoption.Request {
	t.Helper()
	requests, err := f.store.LoadRequests(context.Background())
	require.NoError(t, err)
	return requests
}
