package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	adoptionDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/metrics"
)

// Workflow operation names, used as metric labels.
const (
	opRequest = "request"
	opApprove = "approve"
	opDeny    = "deny"
	opCancel  = "cancel"
	opRemove  = "remove_record"
)

// CreateAdoptionRequest is the request DTO a customer submits.
type CreateAdoptionRequest struct {
	PetID string `json:"pet_id" binding:"required"`
}

// AdoptionDecisionRequest identifies a request by its customer and pet.
type AdoptionDecisionRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	PetID      string `json:"pet_id" binding:"required"`
}

// AdoptionRequestDTO is the API response representation of an adoption request.
type AdoptionRequestDTO struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	PetID      string    `json:"pet_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AdoptionDetailsDTO joins a request with its customer and pet. Either side
// is nil when it no longer exists.
type AdoptionDetailsDTO struct {
	Request  AdoptionRequestDTO `json:"request"`
	Customer *CustomerDTO       `json:"customer,omitempty"`
	Pet      *PetDTO            `json:"pet,omitempty"`
}

// AdoptionStatsDTO summarizes the ledger and the catalog.
type AdoptionStatsDTO struct {
	TotalRequests int `json:"total_requests"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Denied        int `json:"denied"`
	TotalPets     int `json:"total_pets"`
	AvailablePets int `json:"available_pets"`
}

// AdoptionService is the adoption workflow: every change that touches more
// than one collection goes through it.
type AdoptionService struct {
	session   *Session
	publisher EventPublisher
	logger    *zap.Logger
}

// NewAdoptionService creates a new AdoptionService.
func NewAdoptionService(session *Session, publisher EventPublisher, logger *zap.Logger) *AdoptionService {
	return &AdoptionService{session: session, publisher: publisher, logger: logger}
}

// RequestAdoption files a Pending request. The pet is left untouched.
func (s *AdoptionService) RequestAdoption(ctx context.Context, customerID, petID string) (*AdoptionRequestDTO, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, domain.NewValidationError(adoptionDomain.ErrInvalidRequest, "pet ID is required")
	}

	var created *adoptionDomain.Request
	err := s.session.exclusive(func() error {
		if err := s.checkAdoptable(customerID, petID); err != nil {
			return err
		}
		if existing, err := s.session.ledger.Find(customerID, petID); err == nil {
			return domain.NewConflictError(adoptionDomain.ErrDuplicateRequest,
				fmt.Sprintf("an adoption request for pet '%s' already exists with status %s", petID, existing.Status()))
		}

		var err error
		if created, err = s.session.ledger.Create(customerID, petID); err != nil {
			return err
		}
		return s.session.saveRequests(ctx)
	})
	s.observe(opRequest, customerID, petID, err)
	if err != nil {
		return nil, err
	}

	s.publishAdoptionEvent(ctx, AdoptionRequested, created)
	result := toAdoptionRequestDTO(created)
	return &result, nil
}

// ApproveAdoption approves a Pending request and marks the pet adopted. The
// ledger and the catalog are persisted together.
func (s *AdoptionService) ApproveAdoption(ctx context.Context, customerID, petID string) (*AdoptionRequestDTO, error) {
	var approved *adoptionDomain.Request
	err := s.session.exclusive(func() error {
		if err := s.checkAdoptable(customerID, petID); err != nil {
			return err
		}
		req, err := s.session.ledger.Find(customerID, petID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.NewInvalidStateError(adoptionDomain.ErrInvalidTransition,
				fmt.Sprintf("only pending requests can be approved, this one is %s", req.Status()))
		}

		if err := s.session.ledger.SetStatus(customerID, petID, adoptionDomain.StatusApproved); err != nil {
			return err
		}
		if err := s.session.catalog.SetAdopted(petID, true); err != nil {
			return err
		}
		if err := s.session.saveDecision(ctx); err != nil {
			return err
		}
		approved, err = s.session.ledger.Find(customerID, petID)
		return err
	})
	s.observe(opApprove, customerID, petID, err)
	if err != nil {
		return nil, err
	}

	s.publishAdoptionEvent(ctx, AdoptionApproved, approved)
	result := toAdoptionRequestDTO(approved)
	return &result, nil
}

// DenyAdoption denies a request. The pet becomes available again unless
// another request for it is still approved.
func (s *AdoptionService) DenyAdoption(ctx context.Context, customerID, petID string) (*AdoptionRequestDTO, error) {
	var denied *adoptionDomain.Request
	err := s.session.exclusive(func() error {
		if _, err := s.session.catalog.Get(petID); err != nil {
			return err
		}
		if err := s.session.ledger.SetStatus(customerID, petID, adoptionDomain.StatusDenied); err != nil {
			return err
		}
		// adopted must mirror the ledger, so another customer's approval outlives this denial.
		adopted := s.session.ledger.HasApproved(petID)
		if err := s.session.catalog.SetAdopted(petID, adopted); err != nil {
			return err
		}
		if err := s.session.saveDecision(ctx); err != nil {
			return err
		}
		var err error
		denied, err = s.session.ledger.Find(customerID, petID)
		return err
	})
	s.observe(opDeny, customerID, petID, err)
	if err != nil {
		return nil, err
	}

	s.publishAdoptionEvent(ctx, AdoptionDenied, denied)
	result := toAdoptionRequestDTO(denied)
	return &result, nil
}

// CancelAdoptionRequest withdraws a customer's request. Approved adoptions
// cannot be withdrawn; the pet is never touched.
func (s *AdoptionService) CancelAdoptionRequest(ctx context.Context, customerID, petID string) error {
	var cancelled *adoptionDomain.Request
	err := s.session.exclusive(func() error {
		var err error
		if cancelled, err = s.session.ledger.Find(customerID, petID); err != nil {
			return err
		}
		if cancelled.IsApproved() {
			return domain.NewInvalidStateError(adoptionDomain.ErrAlreadyApproved,
				fmt.Sprintf("adoption of pet '%s' is already approved and cannot be cancelled", petID))
		}
		s.session.ledger.Cancel(customerID, petID)
		return s.session.saveRequests(ctx)
	})
	s.observe(opCancel, customerID, petID, err)
	if err != nil {
		return err
	}

	s.publishAdoptionEvent(ctx, AdoptionCancelled, cancelled)
	return nil
}

// RemoveRequestRecord deletes a decided request from the ledger.
func (s *AdoptionService) RemoveRequestRecord(ctx context.Context, customerID, petID string) error {
	var removed *adoptionDomain.Request
	err := s.session.exclusive(func() error {
		var err error
		if removed, err = s.session.ledger.Find(customerID, petID); err != nil {
			return err
		}
		if removed.IsPending() {
			return domain.NewInvalidStateError(adoptionDomain.ErrRequestStillPending,
				"the request must be approved or denied before it can be removed")
		}
		if err := s.session.ledger.Remove(removed.ID()); err != nil {
			return err
		}
		return s.session.saveRequests(ctx)
	})
	s.observe(opRemove, customerID, petID, err)
	if err != nil {
		return err
	}

	s.publishAdoptionEvent(ctx, AdoptionRecordRemoved, removed)
	return nil
}

// ListMyRequests returns the customer's requests in submission order.
func (s *AdoptionService) ListMyRequests(_ context.Context, customerID string) []AdoptionRequestDTO {
	return toAdoptionRequestDTOs(s.session.ledger.ListByCustomer(customerID))
}

// ListRequests returns every request, or only those in status when it is set.
func (s *AdoptionService) ListRequests(_ context.Context, status string) ([]AdoptionRequestDTO, error) {
	if status == "" {
		return toAdoptionRequestDTOs(s.session.ledger.All()), nil
	}
	st, err := adoptionDomain.ParseStatus(status)
	if err != nil {
		return nil, domain.NewValidationError(adoptionDomain.ErrInvalidRequest, err.Error())
	}
	return toAdoptionRequestDTOs(s.session.ledger.ListByStatus(st)), nil
}

// GetRequestDetails returns a request together with its customer and pet.
func (s *AdoptionService) GetRequestDetails(_ context.Context, customerID, petID string) (*AdoptionDetailsDTO, error) {
	req, err := s.session.ledger.Find(customerID, petID)
	if err != nil {
		return nil, err
	}

	details := &AdoptionDetailsDTO{Request: toAdoptionRequestDTO(req)}
	if c, err := s.session.directory.FindByID(customerID); err == nil {
		dto := toCustomerDTO(s.session, c)
		details.Customer = &dto
	}
	if p, err := s.session.catalog.Get(petID); err == nil {
		dto := toPetDTO(p)
		details.Pet = &dto
	}
	return details, nil
}

// Stats counts requests per status alongside catalog availability.
func (s *AdoptionService) Stats(_ context.Context) AdoptionStatsDTO {
	counts := s.session.ledger.CountByStatus()
	return AdoptionStatsDTO{
		TotalRequests: counts[adoptionDomain.StatusPending] + counts[adoptionDomain.StatusApproved] + counts[adoptionDomain.StatusDenied],
		Pending:       counts[adoptionDomain.StatusPending],
		Approved:      counts[adoptionDomain.StatusApproved],
		Denied:        counts[adoptionDomain.StatusDenied],
		TotalPets:     s.session.catalog.Len(),
		AvailablePets: s.session.catalog.CountAvailable(),
	}
}

// checkAdoptable runs the shared checks in order: pet exists, customer
// exists, customer is eligible, pet is available. A pet with an approved
// request on record is unavailable even if its adopted flag was edited away
// or the pet was removed and added again under the same id.
func (s *AdoptionService) checkAdoptable(customerID, petID string) error {
	p, err := s.session.catalog.Get(petID)
	if err != nil {
		return err
	}
	if err := s.session.directory.Eligible(customerID); err != nil {
		return err
	}
	if !p.IsAvailable() || s.session.ledger.HasApproved(petID) {
		return domain.NewInvalidStateError(adoptionDomain.ErrPetUnavailable,
			fmt.Sprintf("pet '%s' has already been adopted", petID))
	}
	return nil
}

func (s *AdoptionService) observe(op, customerID, petID string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
		s.logger.Info("adoption workflow step committed",
			zap.String("operation", op),
			zap.String("customer_id", customerID),
			zap.String("pet_id", petID),
		)
	case domain.CodeOf(err) != "":
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
		s.logger.Error("adoption workflow step failed",
			zap.String("operation", op),
			zap.String("customer_id", customerID),
			zap.String("pet_id", petID),
			zap.Error(err),
		)
	}
	s.session.metrics.ObserveWorkflow(op, outcome)
}

func (s *AdoptionService) publishAdoptionEvent(ctx context.Context, eventType string, r *adoptionDomain.Request) {
	evt := AdoptionEvent{
		RequestID:  r.ID().String(),
		CustomerID: r.CustomerID(),
		PetID:      r.PetID(),
		Status:     r.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, TopicAdoptionEvents, eventType, r.PetID(), evt)
}

func toAdoptionRequestDTO(r *adoptionDomain.Request) AdoptionRequestDTO {
	return AdoptionRequestDTO{
		ID:         r.ID().String(),
		CustomerID: r.CustomerID(),
		PetID:      r.PetID(),
		Status:     r.Status().String(),
		CreatedAt:  r.CreatedAt(),
		UpdatedAt:  r.UpdatedAt(),
	}
}

func toAdoptionRequestDTOs(requests []*adoptionDomain.Request) []AdoptionRequestDTO {
	dtos := make([]AdoptionRequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toAdoptionRequestDTO(r)
	}
	return dtos
}
