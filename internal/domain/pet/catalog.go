package pet

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

// Catalog owns the ordered collection of adoptable pets. It hands out copies,
// so the only way to change a pet is through a Catalog method.
type Catalog struct {
	mu   sync.RWMutex
	pets []*Pet
}

// NewCatalog creates a catalog holding pets in the given order.
func NewCatalog(pets ...*Pet) *Catalog {
	c := &Catalog{}
	c.Replace(pets)
	return c
}

// Replace swaps the whole content, used when loading and when rolling back a failed save.
func (c *Catalog) Replace(pets []*Pet) {
	cloned := make([]*Pet, 0, len(pets))
	for _, p := range pets {
		cloned = append(cloned, p.clone())
	}
	c.mu.Lock()
	c.pets = cloned
	c.mu.Unlock()
}

// All returns every pet in catalog order.
func (c *Catalog) All() []*Pet {
	return c.collect(func(*Pet) bool { return true })
}

// Len returns the number of pets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pets)
}

// Add appends a pet; the id must be unused.
func (c *Catalog) Add(p *Pet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(p.ID()) >= 0 {
		return domain.NewConflictError(ErrDuplicateID, fmt.Sprintf("pet with ID '%s' already exists", p.ID()))
	}
	c.pets = append(c.pets, p.clone())
	return nil
}

// Remove deletes the pet with the given id and returns it.
func (c *Catalog) Remove(id string) (*Pet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, domain.NewNotFoundError(ErrNotFound, "Pet", id)
	}
	removed := c.pets[i]
	c.pets = slices.Delete(c.pets, i, i+1)
	return removed.clone(), nil
}

// Edit replaces the mutable fields of the pet with the given id.
func (c *Catalog) Edit(id string, u Update) (*Pet, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, domain.NewNotFoundError(ErrNotFound, "Pet", id)
	}
	c.pets[i].apply(u)
	return c.pets[i].clone(), nil
}

// SetAdopted flips the adoption flag of one pet.
func (c *Catalog) SetAdopted(id string, adopted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return domain.NewNotFoundError(ErrNotFound, "Pet", id)
	}
	c.pets[i].setAdopted(adopted)
	return nil
}

// Get returns the pet with the given id.
func (c *Catalog) Get(id string) (*Pet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, domain.NewNotFoundError(ErrNotFound, "Pet", id)
	}
	return c.pets[i].clone(), nil
}

// ListAvailable returns the unadopted pets in catalog order.
func (c *Catalog) ListAvailable() []*Pet {
	return c.collect(func(p *Pet) bool { return !p.adopted })
}

// SortByAge stably reorders the catalog by ascending age.
func (c *Catalog) SortByAge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices.SortStableFunc(c.pets, byAge)
}

// SortByID stably reorders the catalog by id, ignoring case.
func (c *Catalog) SortByID() {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices.SortStableFunc(c.pets, byID)
}

// FilterByBreed returns pets whose breed equals breed, ignoring case.
func (c *Catalog) FilterByBreed(breed string) []*Pet {
	return c.collect(func(p *Pet) bool { return strings.EqualFold(p.breed, breed) })
}

// FilterByGender returns pets whose gender equals gender, ignoring case.
func (c *Catalog) FilterByGender(gender string) []*Pet {
	return c.collect(func(p *Pet) bool { return strings.EqualFold(p.gender, gender) })
}

// FilterByAdopted returns pets whose adoption flag equals adopted.
func (c *Catalog) FilterByAdopted(adopted bool) []*Pet {
	return c.collect(func(p *Pet) bool { return p.adopted == adopted })
}

// CountAvailable returns how many pets are unadopted.
func (c *Catalog) CountAvailable() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, p := range c.pets {
		if !p.adopted {
			n++
		}
	}
	return n
}

// Order names a catalog sort key.
type Order string

const (
	OrderNone Order = ""
	OrderAge  Order = "age"
	OrderID   Order = "id"
)

// ParseOrder accepts "", "age" and "id", ignoring case.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderNone, OrderAge, OrderID:
		return o, nil
	}
	return "", domain.NewValidationError(ErrInvalidPet, fmt.Sprintf("unknown sort key '%s'", s))
}

// Query selects pets without reordering the catalog. Empty fields match everything.
type Query struct {
	Breed         string
	Gender        string
	Adopted       *bool
	AvailableOnly bool
	Order         Order
}

func (q Query) matches(p *Pet) bool {
	if q.Breed != "" && !strings.EqualFold(p.breed, q.Breed) {
		return false
	}
	if q.Gender != "" && !strings.EqualFold(p.gender, q.Gender) {
		return false
	}
	if q.Adopted != nil && p.adopted != *q.Adopted {
		return false
	}
	return !q.AvailableOnly || !p.adopted
}

// Find returns the pets matching q, sorted on a copy when q.Order is set.
func (c *Catalog) Find(q Query) []*Pet {
	out := c.collect(q.matches)
	switch q.Order {
	case OrderAge:
		slices.SortStableFunc(out, byAge)
	case OrderID:
		slices.SortStableFunc(out, byID)
	}
	return out
}

// Sort reorders the catalog itself by the given key.
func (c *Catalog) Sort(o Order) error {
	switch o {
	case OrderAge:
		c.SortByAge()
	case OrderID:
		c.SortByID()
	default:
		return domain.NewValidationError(ErrInvalidPet, fmt.Sprintf("cannot sort catalog by '%s'", o))
	}
	return nil
}

func byAge(a, b *Pet) int { return a.age - b.age }

func byID(a, b *Pet) int {
	return strings.Compare(strings.ToLower(a.id), strings.ToLower(b.id))
}

func (c *Catalog) collect(keep func(*Pet) bool) []*Pet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Pet, 0, len(c.pets))
	for _, p := range c.pets {
		if keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

// indexOf must be called with c.mu held.
func (c *Catalog) indexOf(id string) int {
	return slices.IndexFunc(c.pets, func(p *Pet) bool { return p.id == id })
}
