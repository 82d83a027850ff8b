package pet

import "context"

// Repository persists the whole catalog. Loads happen once at startup; every
// committed catalog mutation is followed by SavePets with the full list.
type Repository interface {
	LoadPets(ctx context.Context) ([]*Pet, error)
	SavePets(ctx context.Context, pets []*Pet) error
}
