package auth

import (
	"errors"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMissingRole      = errors.New("missing role in claims")
)

// Claims represents custom JWT claims. The role and the customer/employee
// links are baked into the token so request handling never needs a user
// lookup to build the caller's principal.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// JWTService issues and validates signed session tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// Issue mints a signed token for the user. Implements the application
// layer's TokenIssuer port.
func (s *JWTService) Issue(user *identity.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
	}
	if user.CustomerID != nil {
		claims.CustomerID = user.CustomerID.String()
	}
	if user.EmployeeID != nil {
		claims.EmployeeID = user.EmployeeID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate validates a token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}

	return claims, nil
}

// Principal reconstructs the caller's principal from validated claims
func (c *Claims) Principal() (identity.Principal, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return identity.Principal{}, ErrInvalidClaims
	}

	role := identity.Role(c.Role)
	if !role.IsValid() {
		return identity.Principal{}, ErrInvalidClaims
	}

	p := identity.Principal{UserID: userID, Role: role}
	if c.CustomerID != "" {
		customerID, err := uuid.Parse(c.CustomerID)
		if err != nil {
			return identity.Principal{}, ErrInvalidClaims
		}
		p.CustomerID = &customerID
	}
	if c.EmployeeID != "" {
		employeeID, err := uuid.Parse(c.EmployeeID)
		if err != nil {
			return identity.Principal{}, ErrInvalidClaims
		}
		p.EmployeeID = &employeeID
	}
	return p, nil
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}
