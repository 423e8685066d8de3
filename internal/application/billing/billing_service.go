package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TariffResolver resolves the tariff version in force for a category at a
// date. The tariff service implements it with its cache in front.
type TariffResolver interface {
	Resolve(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, error)
}

// BillingService generates and manages bills
type BillingService struct {
	billRepo       billing.BillRepository
	readingRepo    billing.MeterReadingRepository
	customerRepo   partner.CustomerRepository
	tariffs        TariffResolver
	notifier       notification.Sink
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewBillingService creates a new BillingService
func NewBillingService(
	billRepo billing.BillRepository,
	readingRepo billing.MeterReadingRepository,
	customerRepo partner.CustomerRepository,
	tariffs TariffResolver,
	notifier notification.Sink,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		billRepo:     billRepo,
		readingRepo:  readingRepo,
		customerRepo: customerRepo,
		tariffs:      tariffs,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BillingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the service clock, for tests
func (s *BillingService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordReadingRequest records a new meter reading for a customer
type RecordReadingRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	CurrentReading decimal.Decimal `json:"current_reading"`
	ReadingDate    time.Time       `json:"reading_date"`
}

// GenerateBillRequest issues a bill for one customer and billing period
type GenerateBillRequest struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	BillingMonth string    `json:"billing_month"`
}

// CancelBillRequest voids a bill issued in error
type CancelBillRequest struct {
	Reason string `json:"reason"`
}

// BillResponse is the API-facing view of a bill
type BillResponse struct {
	ID              uuid.UUID          `json:"id"`
	BillNumber      string             `json:"bill_number"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	BillingMonth    string             `json:"billing_month"`
	UnitsConsumed   decimal.Decimal    `json:"units_consumed"`
	BaseAmount      decimal.Decimal    `json:"base_amount"`
	FixedCharges    decimal.Decimal    `json:"fixed_charges"`
	ElectricityDuty decimal.Decimal    `json:"electricity_duty"`
	GSTAmount       decimal.Decimal    `json:"gst_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          billing.BillStatus `json:"status"`
	IssueDate       time.Time          `json:"issue_date"`
	DueDate         time.Time          `json:"due_date"`
	PaymentDate     *time.Time         `json:"payment_date,omitempty"`
}

// ToBillResponse converts a bill aggregate to its response form
func ToBillResponse(b *billing.Bill) BillResponse {
	return BillResponse{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		BillingMonth:    b.BillingMonth,
		UnitsConsumed:   b.UnitsConsumed,
		BaseAmount:      b.BaseAmount.Amount(),
		FixedCharges:    b.FixedCharges.Amount(),
		ElectricityDuty: b.ElectricityDuty.Amount(),
		GSTAmount:       b.GSTAmount.Amount(),
		TotalAmount:     b.TotalAmount.Amount(),
		Status:          b.Status,
		IssueDate:       b.IssueDate,
		DueDate:         b.DueDate,
		PaymentDate:     b.PaymentDate,
	}
}

// BillPreviewResponse is a priced breakdown that was not persisted
type BillPreviewResponse struct {
	CustomerID      uuid.UUID       `json:"customer_id"`
	TariffID        uuid.UUID       `json:"tariff_id"`
	UnitsConsumed   decimal.Decimal `json:"units_consumed"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	FixedCharges    decimal.Decimal `json:"fixed_charges"`
	ElectricityDuty decimal.Decimal `json:"electricity_duty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// RecordReading records a meter reading. Staff only; the reading's previous
// value is chained from the latest stored reading so consumption can never
// be double-counted or skipped.
func (s *BillingService) RecordReading(ctx context.Context, principal identity.Principal, req RecordReadingRequest) (*billing.MeterReading, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	previous := decimal.Zero
	latest, err := s.readingRepo.FindLatestByCustomer(ctx, req.CustomerID)
	if err == nil && latest != nil {
		previous = latest.CurrentReading
	} else if err != nil && !isNoReading(err) {
		return nil, err
	}

	readBy := uuid.Nil
	if principal.EmployeeID != nil {
		readBy = *principal.EmployeeID
	}

	reading, err := billing.NewMeterReading(customer.ID, customer.MeterNumber, previous, req.CurrentReading, req.ReadingDate, readBy)
	if err != nil {
		return nil, err
	}
	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to save meter reading: %w", err)
	}
	return reading, nil
}

// GenerateBill issues a bill for the customer's latest unbilled reading. The
// bill insert, the reading's billed flag and the customer balance increment
// commit in one transaction; the whole operation either lands or rolls back.
func (s *BillingService) GenerateBill(ctx context.Context, principal identity.Principal, req GenerateBillRequest) (*BillResponse, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.billRepo.FindByCustomerAndMonth(ctx, req.CustomerID, req.BillingMonth)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeDuplicateBillingPeriod,
			fmt.Sprintf("Customer already has bill %s for %s", existing.BillNumber, req.BillingMonth)).
			WithDetail("bill_number", existing.BillNumber)
	}

	reading, err := s.readingRepo.FindLatestByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, shared.NewDomainError(shared.CodeNoMeterReading,
			"Customer has no meter reading to bill")
	}

	// Price against the tariff in force when the meter was read, not when
	// the bill is generated. A version change between the two must not
	// reprice the consumption.
	trf, err := s.tariffs.Resolve(ctx, customer.Category, reading.ReadingDate)
	if err != nil {
		return nil, err
	}

	charges, err := billing.ComputeCharges(trf, reading.UnitsConsumed)
	if err != nil {
		return nil, err
	}

	billNumber, err := s.billRepo.GenerateBillNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bill number: %w", err)
	}

	bill, err := billing.NewBill(billNumber, customer.ID, reading.ID, trf.ID, req.BillingMonth, charges, s.now())
	if err != nil {
		return nil, err
	}
	// Generation and issue are one operation here; the bill is persisted
	// already issued so it lands together with its balance increment.
	if err := bill.Issue(); err != nil {
		return nil, err
	}
	if err := reading.MarkBilled(); err != nil {
		return nil, err
	}

	if err := s.billRepo.CreateIssued(ctx, bill, reading); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, bill)
	s.notify(ctx, customer.UserID, notification.KindBillIssued,
		"New electricity bill",
		fmt.Sprintf("Bill %s for %s: PKR %s, due %s",
			bill.BillNumber, bill.BillingMonth, bill.TotalAmount.StringFixed(2), bill.DueDate.Format("2006-01-02")),
		bill.BillNumber)

	resp := ToBillResponse(bill)
	return &resp, nil
}

// CancelBill voids a bill issued in error. The repository unwinds the
// ledger effects in the same transaction that flips the status; paid bills
// refuse cancellation. Admin only.
func (s *BillingService) CancelBill(ctx context.Context, principal identity.Principal, billID uuid.UUID, reason string) (*BillResponse, error) {
	if !principal.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cancellation reason is required")
	}

	bill, err := s.billRepo.CancelIssued(ctx, billID, reason)
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, bill)
	if customer, err := s.customerRepo.FindByID(ctx, bill.CustomerID); err == nil {
		s.notify(ctx, customer.UserID, notification.KindSystem,
			"Bill cancelled",
			fmt.Sprintf("Bill %s for %s was cancelled: %s", bill.BillNumber, bill.BillingMonth, reason),
			bill.BillNumber)
	}

	resp := ToBillResponse(bill)
	return &resp, nil
}

// PreviewBill prices the customer's latest reading without writing anything
func (s *BillingService) PreviewBill(ctx context.Context, principal identity.Principal, customerID uuid.UUID) (*BillPreviewResponse, error) {
	if !principal.CanActFor(customerID) {
		return nil, shared.ErrForbidden
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	reading, err := s.readingRepo.FindLatestByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, shared.NewDomainError(shared.CodeNoMeterReading, "Customer has no meter reading to price")
	}
	trf, err := s.tariffs.Resolve(ctx, customer.Category, reading.ReadingDate)
	if err != nil {
		return nil, err
	}
	charges, err := billing.ComputeCharges(trf, reading.UnitsConsumed)
	if err != nil {
		return nil, err
	}

	return &BillPreviewResponse{
		CustomerID:      customer.ID,
		TariffID:        trf.ID,
		UnitsConsumed:   charges.UnitsConsumed,
		BaseAmount:      charges.BaseAmount.Amount(),
		FixedCharges:    charges.FixedCharges.Amount(),
		ElectricityDuty: charges.ElectricityDuty.Amount(),
		Subtotal:        charges.Subtotal.Amount(),
		GSTAmount:       charges.GSTAmount.Amount(),
		TotalAmount:     charges.TotalAmount.Amount(),
	}, nil
}

// GetBill returns one bill, customers only their own
func (s *BillingService) GetBill(ctx context.Context, principal identity.Principal, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActFor(bill.CustomerID) {
		return nil, shared.ErrForbidden
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// ListBills returns bills for a customer, customers only their own
func (s *BillingService) ListBills(ctx context.Context, principal identity.Principal, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[BillResponse], error) {
	if !principal.CanActFor(customerID) {
		return nil, shared.ErrForbidden
	}

	bills, total, err := s.billRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = ToBillResponse(&bills[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SweepOverdue flags issued bills past their due date and marks their
// customers overdue. Invoked by an external scheduler, not by the core.
func (s *BillingService) SweepOverdue(ctx context.Context) (int, error) {
	asOf := s.now()
	bills, err := s.billRepo.FindIssuedDueBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range bills {
		bill := &bills[i]
		if err := bill.MarkOverdue(asOf); err != nil {
			continue
		}
		if err := s.billRepo.Save(ctx, bill); err != nil {
			s.logger.Error("failed to mark bill overdue",
				zap.String("bill_number", bill.BillNumber),
				zap.Error(err))
			continue
		}
		swept++

		if customer, err := s.customerRepo.FindByID(ctx, bill.CustomerID); err == nil {
			customer.MarkOverdue()
			if err := s.customerRepo.Save(ctx, customer); err != nil {
				s.logger.Error("failed to mark customer overdue",
					zap.String("account_number", customer.AccountNumber),
					zap.Error(err))
			}
			s.notify(ctx, customer.UserID, notification.KindSystem,
				"Bill overdue",
				fmt.Sprintf("Bill %s was due on %s and is now overdue", bill.BillNumber, bill.DueDate.Format("2006-01-02")),
				bill.BillNumber)
		}
	}
	return swept, nil
}

// notify delivers fire-and-forget; a sink failure is logged and swallowed so
// it can never fail a billing operation.
func (s *BillingService) notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, message, actionRef string) {
	if s.notifier == nil || userID == uuid.Nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, title, message, actionRef); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("kind", string(kind)),
			zap.String("action_ref", actionRef),
			zap.Error(err))
	}
}

func (s *BillingService) publishEvents(ctx context.Context, bill *billing.Bill) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range bill.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish billing event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	bill.ClearDomainEvents()
}

func isNoReading(err error) bool {
	if derr, ok := err.(*shared.DomainError); ok {
		return derr.Code == shared.CodeNoMeterReading
	}
	return false
}
