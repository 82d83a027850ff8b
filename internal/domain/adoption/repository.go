package adoption

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
)

// Repository defines persistence operations for the request ledger.
type Repository interface {
	LoadRequests(ctx context.Context) ([]*Request, error)
	SaveRequests(ctx context.Context, requests []*Request) error
	// SaveDecision stores the ledger and the catalog in a single transaction,
	// so an approval or denial is never half persisted.
	SaveDecision(ctx context.Context, requests []*Request, pets []*pet.Pet) error
}
