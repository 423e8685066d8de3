package persistence

import (
	"fmt"
	"strings"

	"github.com/powergrid/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"bill_number":   true,
	"billing_month": true,
	"total_amount":  true,
	"status":        true,
	"issue_date":    true,
	"due_date":      true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"receipt_number": true,
	"amount":         true,
	"method":         true,
	"status":         true,
	"payment_date":   true,
}

// TariffSortFields contains allowed sort fields for tariffs
var TariffSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"category":       true,
	"effective_date": true,
}

// applySort appends a validated ORDER BY clause built from the filter
func applySort(db *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return db.Order(fmt.Sprintf("%s %s", field, dir))
}

// applyPagination appends LIMIT/OFFSET from the filter, normalising
// out-of-range values to the defaults
func applyPagination(db *gorm.DB, filter shared.Filter) *gorm.DB {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return db.Limit(pageSize).Offset((page - 1) * pageSize)
}
