package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer mints signed session tokens for authenticated users
type TokenIssuer interface {
	Issue(user *identity.User) (token string, expiresAt time.Time, err error)
}

// AuthService registers and authenticates users
type AuthService struct {
	userRepo     identity.UserRepository
	customerRepo partner.CustomerRepository
	tokens       TokenIssuer
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo identity.UserRepository,
	customerRepo partner.CustomerRepository,
	tokens TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		tokens:       tokens,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterCustomerRequest signs up a new customer with their connection
type RegisterCustomerRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	FullName    string          `json:"full_name"`
	MeterNumber string          `json:"meter_number"`
	Category    tariff.Category `json:"category"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
}

// LoginRequest authenticates a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	Token      string        `json:"token"`
	ExpiresAt  time.Time     `json:"expires_at"`
	UserID     uuid.UUID     `json:"user_id"`
	Role       identity.Role `json:"role"`
	FullName   string        `json:"full_name"`
	CustomerID *uuid.UUID    `json:"customer_id,omitempty"`
	EmployeeID *uuid.UUID    `json:"employee_id,omitempty"`
}

// RegisterCustomer creates a customer user together with its connection
// record and returns a fresh session
func (s *AuthService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Password, req.FullName, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	customer, err := partner.NewCustomer(
		user.ID,
		generateAccountNumber(now),
		req.MeterNumber,
		req.FullName,
		req.Category,
		now,
	)
	if err != nil {
		return nil, err
	}
	customer.Address = req.Address
	customer.City = req.City

	if err := user.LinkCustomer(customer.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	return s.session(user)
}

// Login authenticates by email and password. Failed attempts get one
// generic error so the response does not leak which part was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil || !user.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Email or password is incorrect")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "This account has been disabled")
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Warn("failed to record login time",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	return s.session(user)
}

func (s *AuthService) session(user *identity.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{
		Token:      token,
		ExpiresAt:  expiresAt,
		UserID:     user.ID,
		Role:       user.Role,
		FullName:   user.FullName,
		CustomerID: user.CustomerID,
		EmployeeID: user.EmployeeID,
	}, nil
}

// generateAccountNumber allocates an ELX-YYYY-XXXXXX account number. The
// random tail comes from a fresh UUID so collisions are practically
// impossible within a year.
func generateAccountNumber(now time.Time) string {
	tail := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("ELX-%d-%s", now.Year(), tail)
}
