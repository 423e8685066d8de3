package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detail carries machine-readable context for conflict errors, e.g. the
	// receipt number of an already-recorded payment so a retrying client can
	// treat the conflict as success.
	Detail map[string]string `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// WithDetail attaches a detail entry and returns the error for chaining
func (e *DomainError) WithDetail(key, value string) *DomainError {
	if e.Detail == nil {
		e.Detail = make(map[string]string)
	}
	e.Detail[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Billing and ledger error codes. Conflict-class errors carry enough detail
// for the caller to treat a repeated submission as an idempotent success.
const (
	CodeNoTariffFound          = "NO_TARIFF_FOUND"
	CodeNoMeterReading         = "NO_METER_READING"
	CodeDuplicateBillingPeriod = "DUPLICATE_BILLING_PERIOD"
	CodeAlreadyPaid            = "ALREADY_PAID"
	CodeDuplicatePayment       = "DUPLICATE_PAYMENT"
	CodeConsistencyError       = "CONSISTENCY_ERROR"
	CodeIntegrationError       = "INTEGRATION_ERROR"
)
