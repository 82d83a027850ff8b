package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	customerDomain "github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
)

// AdminID is the user id carried by admin tokens.
const AdminID = "admin"

// AdminCredentials is the single administrator account.
type AdminCredentials struct {
	Username string
	Password string
}

// SignUpRequest is the request DTO for customer registration.
type SignUpRequest struct {
	Name      string `json:"name" binding:"required"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	BirthYear int    `json:"birth_year" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest is the request DTO for customer and admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO is returned by a successful login.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// CustomerDTO is the API response representation of a customer. The
// password is never exposed.
type CustomerDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Gender          string    `json:"gender"`
	Address         string    `json:"address"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	BirthYear       int       `json:"birth_year"`
	Username        string    `json:"username"`
	EligibleToAdopt bool      `json:"eligible_to_adopt"`
	AdoptedPets     []string  `json:"adopted_pets"`
	RegisteredAt    time.Time `json:"registered_at"`
}

// CustomerService implements sign-up, login and profile use cases.
type CustomerService struct {
	session    *Session
	jwtManager *auth.JWTManager
	admin      AdminCredentials
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(
	session *Session,
	jwtManager *auth.JWTManager,
	admin AdminCredentials,
	publisher EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		session:    session,
		jwtManager: jwtManager,
		admin:      admin,
		publisher:  publisher,
		logger:     logger,
	}
}

// SignUp registers a new customer and assigns the next CUSTnnn id.
func (s *CustomerService) SignUp(ctx context.Context, req SignUpRequest) (*CustomerDTO, error) {
	c, err := customerDomain.NewCustomer(customerDomain.Registration{
		Name:      req.Name,
		Gender:    req.Gender,
		Address:   req.Address,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthYear: req.BirthYear,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		return nil, err
	}

	var stored *customerDomain.Customer
	err = s.session.exclusive(func() error {
		var err error
		if stored, err = s.session.directory.Add(c); err != nil {
			return err
		}
		return s.session.saveCustomers(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", stored.ID()),
		zap.String("username", stored.Username()),
	)
	evt := CustomerRegisteredEvent{
		CustomerID: stored.ID(),
		Name:       stored.Name(),
		Email:      stored.Email(),
		Username:   stored.Username(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, TopicCustomerEvents, CustomerRegistered, stored.ID(), evt)

	result := toCustomerDTO(s.session, stored)
	return &result, nil
}

// Login authenticates a customer and issues a customer token.
func (s *CustomerService) Login(_ context.Context, req LoginRequest) (*TokenDTO, error) {
	c, err := s.session.directory.FindByCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueToken(c.ID(), auth.RoleCustomer)
}

// AdminLogin authenticates the administrator and issues an admin token.
func (s *CustomerService) AdminLogin(_ context.Context, req LoginRequest) (*TokenDTO, error) {
	if req.Username != s.admin.Username || req.Password != s.admin.Password {
		return nil, domain.NewUnauthorizedError(customerDomain.ErrInvalidCredentials, "invalid username or password")
	}
	return s.issueToken(AdminID, auth.RoleAdmin)
}

// GetProfile returns a customer with the pets they have adopted.
func (s *CustomerService) GetProfile(_ context.Context, customerID string) (*CustomerDTO, error) {
	c, err := s.session.directory.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	result := toCustomerDTO(s.session, c)
	return &result, nil
}

// ListCustomers returns every registered customer.
func (s *CustomerService) ListCustomers(_ context.Context) []CustomerDTO {
	customers := s.session.directory.All()
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(s.session, c)
	}
	return dtos
}

func (s *CustomerService) issueToken(userID, role string) (*TokenDTO, error) {
	token, err := s.jwtManager.Generate(userID, role)
	if err != nil {
		s.logger.Error("failed to sign token", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &TokenDTO{AccessToken: token, TokenType: "Bearer", UserID: userID, Role: role}, nil
}

func toCustomerDTO(session *Session, c *customerDomain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:              c.ID(),
		Name:            c.Name(),
		Gender:          c.Gender(),
		Address:         c.Address(),
		Email:           c.Email(),
		Phone:           c.Phone(),
		BirthYear:       c.BirthYear(),
		Username:        c.Username(),
		EligibleToAdopt: session.directory.IsEligibleToAdopt(c),
		AdoptedPets:     adoptedPets(session.ledger, c.ID()),
		RegisteredAt:    c.CreatedAt(),
	}
}

// adoptedPets derives a customer's adopted pets from their approved requests.
func adoptedPets(ledger *adoption.Ledger, customerID string) []string {
	ids := make([]string, 0)
	for _, r := range ledger.ListByCustomer(customerID) {
		if r.IsApproved() {
			ids = append(ids, r.PetID())
		}
	}
	return ids
}
