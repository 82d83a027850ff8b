package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	adoptionDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	customerDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	petDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
)

const (
	bucketPets      = "pets"
	bucketCustomers = "customers"
	bucketRequests  = "adoption_requests"
)

// SnapshotStore keeps each collection as one JSON blob in a single SQLite
// table. Every save rewrites the affected buckets in one transaction.
type SnapshotStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewSnapshotStore opens (or creates) the SQLite file at path.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	if path == "" {
		path = "adoption.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SnapshotStore{db: db, path: path}, nil
}

// Path returns the configured database path.
func (s *SnapshotStore) Path() string { return s.path }

// Close closes the underlying database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

func (s *SnapshotStore) LoadPets(ctx context.Context) ([]*petDomain.Pet, error) {
	var models []PetModel
	if err := s.load(ctx, bucketPets, &models); err != nil {
		return nil, err
	}
	return toPetDomains(models), nil
}

func (s *SnapshotStore) SavePets(ctx context.Context, pets []*petDomain.Pet) error {
	return s.persist(ctx, bucket{bucketPets, toPetModels(pets)})
}

func (s *SnapshotStore) LoadCustomers(ctx context.Context) ([]*customerDomain.Customer, error) {
	var models []CustomerModel
	if err := s.load(ctx, bucketCustomers, &models); err != nil {
		return nil, err
	}
	return toCustomerDomains(models), nil
}

func (s *SnapshotStore) SaveCustomers(ctx context.Context, customers []*customerDomain.Customer) error {
	return s.persist(ctx, bucket{bucketCustomers, toCustomerModels(customers)})
}

func (s *SnapshotStore) LoadRequests(ctx context.Context) ([]*adoptionDomain.Request, error) {
	var models []AdoptionRequestModel
	if err := s.load(ctx, bucketRequests, &models); err != nil {
		return nil, err
	}
	return toRequestDomains(models)
}

func (s *SnapshotStore) SaveRequests(ctx context.Context, requests []*adoptionDomain.Request) error {
	return s.persist(ctx, bucket{bucketRequests, toRequestModels(requests)})
}

// SaveDecision writes the ledger and the catalog in the same transaction.
func (s *SnapshotStore) SaveDecision(ctx context.Context, requests []*adoptionDomain.Request, pets []*petDomain.Pet) error {
	return s.persist(ctx,
		bucket{bucketRequests, toRequestModels(requests)},
		bucket{bucketPets, toPetModels(pets)},
	)
}

type bucket struct {
	name string
	data interface{}
}

// load leaves out untouched when the bucket has never been written.
func (s *SnapshotStore) load(ctx context.Context, name string, out interface{}) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *SnapshotStore) persist(ctx context.Context, buckets ...bucket) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		data, err := json.Marshal(b.data)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, b.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	return tx.Commit()
}

// Ping verifies the database file is reachable.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
