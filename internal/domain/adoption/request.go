package adoption

import (
	"time"

	"github.com/google/uuid"
)

// Request links a customer to a pet they asked to adopt.
type Request struct {
	id         uuid.UUID
	customerID string
	petID      string
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

func newRequest(customerID, petID string) *Request {
	now := time.Now().UTC()
	return &Request{
		id:         uuid.New(),
		customerID: customerID,
		petID:      petID,
		status:     StatusPending,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Reconstruct rebuilds a Request from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	customerID, petID string,
	status Status,
	createdAt, updatedAt time.Time,
) *Request {
	return &Request{
		id:         id,
		customerID: customerID,
		petID:      petID,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (r *Request) ID() uuid.UUID        { return r.id }
func (r *Request) CustomerID() string   { return r.customerID }
func (r *Request) PetID() string        { return r.petID }
func (r *Request) Status() Status       { return r.status }
func (r *Request) CreatedAt() time.Time { return r.createdAt }
func (r *Request) UpdatedAt() time.Time { return r.updatedAt }

// IsPending reports whether the request still awaits a decision.
func (r *Request) IsPending() bool { return r.status == StatusPending }

// IsApproved reports whether the adoption went through.
func (r *Request) IsApproved() bool { return r.status == StatusApproved }

func (r *Request) matches(customerID, petID string) bool {
	return r.customerID == customerID && r.petID == petID
}

func (r *Request) clone() *Request {
	c := *r
	return &c
}
