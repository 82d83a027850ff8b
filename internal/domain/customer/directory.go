package customer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

const idPrefix = "CUST"

// Directory owns the registered customers.
type Directory struct {
	mu        sync.RWMutex
	customers []*Customer
	now       func() time.Time
}

// NewDirectory creates a directory. now is the clock used for eligibility; nil means time.Now.
func NewDirectory(now func() time.Time, customers ...*Customer) *Directory {
	if now == nil {
		now = time.Now
	}
	d := &Directory{now: now}
	d.Replace(customers)
	return d
}

// Replace swaps the whole content.
func (d *Directory) Replace(customers []*Customer) {
	cloned := make([]*Customer, 0, len(customers))
	for _, c := range customers {
		cloned = append(cloned, c.clone())
	}
	d.mu.Lock()
	d.customers = cloned
	d.mu.Unlock()
}

// All returns every customer in registration order.
func (d *Directory) All() []*Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Customer, 0, len(d.customers))
	for _, c := range d.customers {
		out = append(out, c.clone())
	}
	return out
}

// Add registers c under the next free CUSTnnn id and returns the stored copy.
// A birth year after the directory clock's current year is rejected.
func (d *Directory) Add(c *Customer) (*Customer, error) {
	if year := d.now().Year(); c.birthYear > year {
		return nil, domain.NewValidationError(ErrInvalidCustomer,
			fmt.Sprintf("birth year %d is in the future (current year %d)", c.birthYear, year))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.customers {
		if strings.EqualFold(existing.username, c.username) {
			return nil, domain.NewConflictError(ErrDuplicateUsername,
				fmt.Sprintf("username '%s' is already taken", c.username))
		}
	}

	stored := c.clone()
	stored.id = d.nextID()
	d.customers = append(d.customers, stored)
	return stored.clone(), nil
}

// FindByID returns the customer with the given id.
func (d *Directory) FindByID(id string) (*Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.customers {
		if c.id == id {
			return c.clone(), nil
		}
	}
	return nil, domain.NewNotFoundError(ErrNotFound, "Customer", id)
}

// FindByCredentials returns the customer whose username and password both match exactly.
func (d *Directory) FindByCredentials(username, password string) (*Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.customers {
		if c.username == username && c.password == password {
			return c.clone(), nil
		}
	}
	return nil, domain.NewUnauthorizedError(ErrInvalidCredentials, "invalid username or password")
}

// IsEligibleToAdopt applies the age rule with the directory clock.
func (d *Directory) IsEligibleToAdopt(c *Customer) bool {
	return c.IsEligibleToAdopt(d.now())
}

// Eligible returns nil when the customer exists and may adopt.
func (d *Directory) Eligible(customerID string) error {
	c, err := d.FindByID(customerID)
	if err != nil {
		return err
	}
	if !d.IsEligibleToAdopt(c) {
		return domain.NewInvalidStateError(ErrNotEligible,
			fmt.Sprintf("customer '%s' must be at least %d years old to adopt", customerID, MinimumAdoptionAge))
	}
	return nil
}

// nextID must be called with d.mu held. Ids that do not follow the CUSTnnn
// pattern are ignored when looking for the highest suffix.
func (d *Directory) nextID() string {
	highest := 0
	for _, c := range d.customers {
		suffix, ok := strings.CutPrefix(c.id, idPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s%03d", idPrefix, highest+1)
}
