package adoption

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

var (
	ErrRequestNotFound     = errors.New("adoption request not found")
	ErrInvalidRequest      = errors.New("invalid adoption request")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPetUnavailable      = errors.New("pet is not available")
	ErrDuplicateRequest    = errors.New("adoption request already exists")
	ErrRequestStillPending = errors.New("adoption request is still pending")
	ErrAlreadyApproved     = errors.New("adoption already approved")
)

// Eligibility tells the ledger whether a customer exists and may adopt.
type Eligibility interface {
	Eligible(customerID string) error
}

// Ledger owns every adoption request in insertion order.
type Ledger struct {
	mu       sync.RWMutex
	requests []*Request
	checker  Eligibility
}

// NewLedger creates a ledger that consults checker before creating requests.
func NewLedger(checker Eligibility, requests ...*Request) *Ledger {
	l := &Ledger{checker: checker}
	l.Replace(requests)
	return l
}

// Replace swaps the whole content.
func (l *Ledger) Replace(requests []*Request) {
	cloned := make([]*Request, 0, len(requests))
	for _, r := range requests {
		cloned = append(cloned, r.clone())
	}
	l.mu.Lock()
	l.requests = cloned
	l.mu.Unlock()
}

// Create records a new Pending request. Pet availability is the workflow's concern.
func (l *Ledger) Create(customerID, petID string) (*Request, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, domain.NewValidationError(ErrInvalidRequest, "pet ID is required")
	}
	if err := l.checker.Eligible(customerID); err != nil {
		return nil, err
	}

	r := newRequest(customerID, petID)
	l.mu.Lock()
	l.requests = append(l.requests, r)
	l.mu.Unlock()
	return r.clone(), nil
}

// Cancel removes the first request for the pair, whatever its status.
func (l *Ledger) Cancel(customerID, petID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(customerID, petID)
	if i < 0 {
		return false
	}
	l.requests = slices.Delete(l.requests, i, i+1)
	return true
}

// Find returns the first request for the pair.
func (l *Ledger) Find(customerID, petID string) (*Request, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(customerID, petID)
	if i < 0 {
		return nil, notFound(customerID, petID)
	}
	return l.requests[i].clone(), nil
}

// FindByCustomer returns the first request made by the customer.
func (l *Ledger) FindByCustomer(customerID string) (*Request, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.requests {
		if r.customerID == customerID {
			return r.clone(), nil
		}
	}
	return nil, domain.NewNotFoundError(ErrRequestNotFound, "AdoptionRequest for customer", customerID)
}

// ListByCustomer returns the customer's requests in insertion order.
func (l *Ledger) ListByCustomer(customerID string) []*Request {
	return l.collect(func(r *Request) bool { return r.customerID == customerID })
}

// ListByPet returns the pet's requests in insertion order.
func (l *Ledger) ListByPet(petID string) []*Request {
	return l.collect(func(r *Request) bool { return r.petID == petID })
}

// ListByStatus returns the requests currently in status s.
func (l *Ledger) ListByStatus(s Status) []*Request {
	return l.collect(func(r *Request) bool { return r.status == s })
}

// All returns every request in insertion order.
func (l *Ledger) All() []*Request {
	return l.collect(func(*Request) bool { return true })
}

// HasApproved reports whether any request for the pet is Approved.
func (l *Ledger) HasApproved(petID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.ContainsFunc(l.requests, func(r *Request) bool {
		return r.petID == petID && r.status == StatusApproved
	})
}

// SetStatus moves the first request for the pair to status. Denying an
// already denied request is a no-op.
func (l *Ledger) SetStatus(customerID, petID string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(customerID, petID)
	if i < 0 {
		return notFound(customerID, petID)
	}
	r := l.requests[i]
	if r.status == StatusDenied && status == StatusDenied {
		return nil
	}
	if !r.status.CanTransitionTo(status) {
		return domain.NewInvalidStateError(ErrInvalidTransition,
			fmt.Sprintf("cannot change adoption request from %s to %s", r.status, status))
	}
	r.status = status
	r.updatedAt = time.Now().UTC()
	return nil
}

// Remove deletes the request with the given id.
func (l *Ledger) Remove(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.requests, func(r *Request) bool { return r.id == id })
	if i < 0 {
		return domain.NewNotFoundError(ErrRequestNotFound, "AdoptionRequest", id.String())
	}
	l.requests = slices.Delete(l.requests, i, i+1)
	return nil
}

// CountByStatus tallies the requests per status; every status is present.
func (l *Ledger) CountByStatus() map[Status]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[Status]int, len(validTransitions))
	for s := range validTransitions {
		counts[s] = 0
	}
	for _, r := range l.requests {
		counts[r.status]++
	}
	return counts
}

func (l *Ledger) collect(keep func(*Request) bool) []*Request {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Request, 0)
	for _, r := range l.requests {
		if keep(r) {
			out = append(out, r.clone())
		}
	}
	return out
}

// indexOf must be called with l.mu held.
func (l *Ledger) indexOf(customerID, petID string) int {
	return slices.IndexFunc(l.requests, func(r *Request) bool { return r.matches(customerID, petID) })
}

func notFound(customerID, petID string) error {
	return domain.NewNotFoundError(ErrRequestNotFound, "AdoptionRequest",
		fmt.Sprintf("%s/%s", customerID, petID))
}
