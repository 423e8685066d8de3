package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role determines what a user may do. Customers see their own account only,
// employees work the complaint and billing desks, admins additionally manage
// tariffs and priorities.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

// IsStaff returns true for roles that act on behalf of customers
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is the aggregate root for authentication and authorization. A
// customer user links to its Customer row; an employee user carries an
// employee ID used for complaint and work order assignment.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Status       UserStatus
	CustomerID   *uuid.UUID
	EmployeeID   *uuid.UUID
	LastLoginAt  *time.Time
}

// NewUser creates a new active user with a hashed password
func NewUser(email, password, fullName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FullName:          fullName,
		Role:              role,
		Status:            UserStatusActive,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("HASH_FAILED", "Could not hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// CheckPassword verifies a password attempt against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// LinkCustomer ties a customer-role user to its connection record
func (u *User) LinkCustomer(customerID uuid.UUID) error {
	if u.Role != RoleCustomer {
		return shared.NewDomainError("INVALID_ROLE", "Only customer users link to a connection")
	}
	u.CustomerID = &customerID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// LinkEmployee assigns the staff identifier used for work assignment
func (u *User) LinkEmployee(employeeID uuid.UUID) error {
	if !u.Role.IsStaff() {
		return shared.NewDomainError("INVALID_ROLE", "Only staff users carry an employee ID")
	}
	u.EmployeeID = &employeeID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
}

// IsActive returns true if the user can log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}
