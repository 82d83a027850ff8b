package customer

import "context"

// Repository defines persistence operations for the customer directory.
type Repository interface {
	LoadCustomers(ctx context.Context) ([]*Customer, error)
	SaveCustomers(ctx context.Context, customers []*Customer) error
}
