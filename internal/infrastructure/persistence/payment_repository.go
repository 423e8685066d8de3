package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/finance"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Apply records a completed payment and its ledger effects in one
// transaction. The bill row is locked first, so two concurrent submissions
// for the same bill serialise: the second re-reads the settled bill or the
// inserted payment and fails its guard instead of double-charging.
func (r *GormPaymentRepository) Apply(ctx context.Context, input finance.ApplyPaymentInput) (*finance.Payment, error) {
	var payment *finance.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var billModel models.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&billModel, "id = ?", input.BillID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		bill := billModel.ToDomain()

		if bill.Status == billing.BillStatusPaid {
			return r.alreadyPaidError(tx, bill)
		}

		txnRef := input.TransactionRef
		if txnRef == "" {
			txnRef = generateTransactionRef()
		} else {
			var dup models.PaymentModel
			err := tx.Where("bill_id = ? AND transaction_ref = ? AND status = ?",
				bill.ID, txnRef, string(finance.PaymentStatusCompleted)).
				First(&dup).Error
			if err == nil {
				return shared.NewDomainError(shared.CodeDuplicatePayment,
					fmt.Sprintf("Transaction %s was already applied to bill %s", txnRef, bill.BillNumber)).
					WithDetail("receipt_number", dup.ReceiptNumber).
					WithDetail("transaction_ref", dup.TransactionRef)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		receiptNumber, err := generateReceiptNumber(tx)
		if err != nil {
			return err
		}

		paidAt := time.Now()
		p, err := finance.NewPayment(receiptNumber, txnRef, bill.ID, bill.CustomerID,
			input.Amount, input.Method, input.PaidByUserID, paidAt, input.Notes)
		if err != nil {
			return err
		}

		settled, err := bill.RegisterPayment(input.Amount, paidAt)
		if err != nil {
			return err
		}

		if err := tx.Create(models.PaymentModelFromDomain(p)).Error; err != nil {
			return err
		}

		if settled {
			if err := tx.Model(&models.BillModel{}).
				Where("id = ?", bill.ID).
				Updates(map[string]interface{}{
					"status":       string(billing.BillStatusPaid),
					"payment_date": paidAt,
					"version":      gorm.Expr("version + 1"),
					"updated_at":   time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		amount := input.Amount.Amount()
		if err := tx.Model(&models.CustomerModel{}).
			Where("id = ?", bill.CustomerID).
			Updates(map[string]interface{}{
				"outstanding_balance": gorm.Expr("GREATEST(outstanding_balance - ?, 0)", amount),
				"payment_status":      gorm.Expr("CASE WHEN outstanding_balance - ? <= 0.005 THEN 'paid' ELSE payment_status END", amount),
				"last_payment_date":   paidAt,
				"updated_at":          time.Now(),
			}).Error; err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// alreadyPaidError builds the ALREADY_PAID conflict with the settling
// payment's receipt in the detail, when it can be found
func (r *GormPaymentRepository) alreadyPaidError(tx *gorm.DB, bill *billing.Bill) error {
	domainErr := shared.NewDomainError(shared.CodeAlreadyPaid,
		fmt.Sprintf("Bill %s is already paid", bill.BillNumber))

	var prior models.PaymentModel
	err := tx.Where("bill_id = ? AND status = ?", bill.ID, string(finance.PaymentStatusCompleted)).
		Order("payment_date DESC").
		First(&prior).Error
	if err == nil {
		domainErr.WithDetail("receipt_number", prior.ReceiptNumber).
			WithDetail("transaction_ref", prior.TransactionRef)
	}
	return domainErr
}

// generateReceiptNumber allocates the next RCP-YYYY-XXXXXXXX number from a
// database sequence, so payments on different bills cannot draw the same
// number
func generateReceiptNumber(tx *gorm.DB) (string, error) {
	var seq int64
	if err := tx.Raw("SELECT nextval('receipt_number_seq')").Scan(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("RCP-%d-%08d", time.Now().Year(), seq), nil
}

// generateTransactionRef mints a reference for callers that did not supply
// one. Such payments get no replay protection, each submission is distinct.
func generateTransactionRef() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReceiptNumber finds a payment by its receipt number
func (r *GormPaymentRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("receipt_number = ?", receiptNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBill returns every payment recorded against the bill
func (r *GormPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("payment_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// FindByCustomer returns the customer's payment history with the total count
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]finance.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("customer_id = ?", customerID)
	return r.page(query, filter)
}

// FindAll returns payments across all customers with the total count
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("receipt_number ILIKE ? OR transaction_ref ILIKE ?", term, term)
	}
	return r.page(query, filter)
}

// Save persists status changes to an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *GormPaymentRepository) page(query *gorm.DB, filter shared.Filter) ([]finance.Payment, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PaymentModel
	query = applySort(query, filter, PaymentSortFields, "payment_date")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return paymentsToDomain(rows), total, nil
}

func paymentsToDomain(rows []models.PaymentModel) []finance.Payment {
	result := make([]finance.Payment, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result
}
