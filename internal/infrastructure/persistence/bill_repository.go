package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// GenerateBillNumber allocates the next bill number, format
// BILL-YYYY-XXXXXXXX. The counter is a database sequence, so two concurrent
// generations can never draw the same number. The sequence does not reset
// at year boundaries; numbers stay unique across years.
func (r *GormBillRepository) GenerateBillNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval('bill_number_seq')").
		Scan(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("BILL-%d-%08d", time.Now().Year(), seq), nil
}

// CreateIssued persists an issued bill together with its ledger effects:
// the meter reading flips to billed and the customer's outstanding balance
// grows by the bill total, all in one transaction. The balance update is a
// single SQL expression so concurrent issuances never lose an increment.
func (r *GormBillRepository) CreateIssued(ctx context.Context, bill *billing.Bill, reading *billing.MeterReading) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.BillModel{}).
			Where("customer_id = ? AND billing_month = ? AND status <> ?",
				bill.CustomerID, bill.BillingMonth, string(billing.BillStatusCancelled)).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return shared.NewDomainError(shared.CodeDuplicateBillingPeriod,
				"A bill already exists for billing month "+bill.BillingMonth)
		}

		if err := tx.Create(models.BillModelFromDomain(bill)).Error; err != nil {
			return err
		}

		res := tx.Model(&models.MeterReadingModel{}).
			Where("id = ? AND billed = ?", reading.ID, false).
			Updates(map[string]interface{}{
				"billed":     true,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConsistencyError,
				"Meter reading was already billed")
		}

		total := bill.TotalAmount.Amount()
		return tx.Model(&models.CustomerModel{}).
			Where("id = ?", bill.CustomerID).
			Updates(map[string]interface{}{
				"outstanding_balance": gorm.Expr("outstanding_balance + ?", total),
				"last_bill_amount":    total,
				"payment_status":      string(partner.PaymentStatusPending),
				"updated_at":          time.Now(),
			}).Error
	})
}

// CancelIssued voids a bill and unwinds its ledger effects in one
// transaction. The bill row is locked first so a concurrent payment either
// settles before the cancel (which then refuses) or blocks until the bill
// is cancelled (and then fails the payable check).
func (r *GormBillRepository) CancelIssued(ctx context.Context, billID uuid.UUID, reason string) (*billing.Bill, error) {
	var bill *billing.Bill
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		bill = model.ToDomain()
		wasCharged := bill.Status == billing.BillStatusIssued || bill.Status == billing.BillStatusOverdue
		if err := bill.Cancel(reason); err != nil {
			return err
		}

		if err := tx.Model(&models.BillModel{}).
			Where("id = ?", billID).
			Updates(map[string]interface{}{
				"status":     string(billing.BillStatusCancelled),
				"version":    bill.Version,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		// Release the reading so the period can be rebilled; the duplicate
		// guard ignores cancelled bills.
		if err := tx.Model(&models.MeterReadingModel{}).
			Where("id = ?", bill.MeterReadingID).
			Updates(map[string]interface{}{
				"billed":     false,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		if !wasCharged {
			return nil
		}

		total := bill.TotalAmount.Amount()
		return tx.Model(&models.CustomerModel{}).
			Where("id = ?", bill.CustomerID).
			Updates(map[string]interface{}{
				"outstanding_balance": gorm.Expr("GREATEST(outstanding_balance - ?, 0)", total),
				"payment_status":      gorm.Expr("CASE WHEN outstanding_balance - ? <= 0.005 THEN 'paid' ELSE payment_status END", total),
				"updated_at":          time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Save persists status changes to an existing bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBillNumber finds a bill by its bill number
func (r *GormBillRepository) FindByBillNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("bill_number = ?", billNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerAndMonth returns the non-cancelled bill for the period, or
// nil when the period has not been billed
func (r *GormBillRepository) FindByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, billingMonth string) (*billing.Bill, error) {
	var model models.BillModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND billing_month = ? AND status <> ?",
			customerID, billingMonth, string(billing.BillStatusCancelled)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's bills with the total count
func (r *GormBillRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Bill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{}).
		Where("customer_id = ?", customerID)
	return r.page(query, filter)
}

// FindAll returns bills across all customers with the total count
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{})
	if filter.Search != "" {
		query = query.Where("bill_number ILIKE ?", "%"+filter.Search+"%")
	}
	return r.page(query, filter)
}

// FindIssuedDueBefore returns issued bills whose due date has passed
func (r *GormBillRepository) FindIssuedDueBefore(ctx context.Context, cutoff time.Time) ([]billing.Bill, error) {
	var rows []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", string(billing.BillStatusIssued), cutoff).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

func (r *GormBillRepository) page(query *gorm.DB, filter shared.Filter) ([]billing.Bill, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.BillModel
	query = applySort(query, filter, BillSortFields, "issue_date")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return billsToDomain(rows), total, nil
}

func billsToDomain(rows []models.BillModel) []billing.Bill {
	result := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result
}
