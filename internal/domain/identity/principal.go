package identity

import "github.com/google/uuid"

// Principal is the authenticated caller as supplied by the session layer.
// Services trust these fields and enforce the role rules themselves.
type Principal struct {
	UserID     uuid.UUID
	Role       Role
	CustomerID *uuid.UUID
	EmployeeID *uuid.UUID
}

// IsAdmin returns true for administrative callers
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsStaff returns true for admin and employee callers
func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// OwnsCustomer reports whether the caller is the customer with the given ID
func (p Principal) OwnsCustomer(customerID uuid.UUID) bool {
	return p.Role == RoleCustomer && p.CustomerID != nil && *p.CustomerID == customerID
}

// CanActFor reports whether the caller may operate on the customer's data:
// staff always, a customer only on their own account.
func (p Principal) CanActFor(customerID uuid.UUID) bool {
	return p.IsStaff() || p.OwnsCustomer(customerID)
}
