package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/finance"
	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService applies payments to bills and serves payment history
type PaymentService struct {
	paymentRepo    finance.PaymentRepository
	billRepo       billing.BillRepository
	customerRepo   partner.CustomerRepository
	notifier       notification.Sink
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo finance.PaymentRepository,
	billRepo billing.BillRepository,
	customerRepo partner.CustomerRepository,
	notifier notification.Sink,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		billRepo:     billRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyPaymentRequest applies one payment to one bill. TransactionRef is the
// client's idempotency key; resubmitting the same ref can never move money
// twice.
type ApplyPaymentRequest struct {
	BillID         uuid.UUID             `json:"bill_id"`
	Amount         decimal.Decimal       `json:"amount"`
	Method         finance.PaymentMethod `json:"method"`
	TransactionRef string                `json:"transaction_ref,omitempty"`
	Notes          string                `json:"notes,omitempty"`
}

// PaymentResponse is the API-facing view of a payment
type PaymentResponse struct {
	ID             uuid.UUID             `json:"id"`
	ReceiptNumber  string                `json:"receipt_number"`
	TransactionRef string                `json:"transaction_ref"`
	BillID         uuid.UUID             `json:"bill_id"`
	BillNumber     string                `json:"bill_number,omitempty"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	Amount         decimal.Decimal       `json:"amount"`
	Method         finance.PaymentMethod `json:"method"`
	Status         finance.PaymentStatus `json:"status"`
	BillStatus     billing.BillStatus    `json:"bill_status,omitempty"`
	PaymentDate    time.Time             `json:"payment_date"`
}

// ToPaymentResponse converts a payment aggregate to its response form
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		ReceiptNumber:  p.ReceiptNumber,
		TransactionRef: p.TransactionRef,
		BillID:         p.BillID,
		CustomerID:     p.CustomerID,
		Amount:         p.Amount.Amount(),
		Method:         p.Method,
		Status:         p.Status,
		PaymentDate:    p.PaymentDate,
	}
}

// ApplyPayment applies a payment against a bill. All ledger writes (payment
// insert, bill status, customer balance decrement) are one transaction inside
// the repository; this layer enforces the role rules and handles the
// post-commit side effects. A customer may only pay their own bill; staff
// may collect for anyone.
func (s *PaymentService) ApplyPayment(ctx context.Context, principal identity.Principal, req ApplyPaymentRequest) (*PaymentResponse, error) {
	amount := valueobject.NewMoneyPKR(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %q", req.Method))
	}

	bill, err := s.billRepo.FindByID(ctx, req.BillID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActFor(bill.CustomerID) {
		return nil, shared.ErrForbidden
	}

	payment, err := s.paymentRepo.Apply(ctx, finance.ApplyPaymentInput{
		BillID:         bill.ID,
		Amount:         amount,
		Method:         req.Method,
		TransactionRef: req.TransactionRef,
		PaidByUserID:   principal.UserID,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	// Re-read the bill for the post-payment status; the transaction that
	// wrote it has committed.
	settledBill, err := s.billRepo.FindByID(ctx, bill.ID)
	if err != nil {
		settledBill = bill
	}

	s.publishEvents(ctx, payment)
	s.notifyPaid(ctx, payment, settledBill)

	resp := ToPaymentResponse(payment)
	resp.BillNumber = settledBill.BillNumber
	resp.BillStatus = settledBill.Status
	return &resp, nil
}

// GetPayment returns one payment, customers only their own
func (s *PaymentService) GetPayment(ctx context.Context, principal identity.Principal, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActFor(payment.CustomerID) {
		return nil, shared.ErrForbidden
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// GetReceipt returns a payment by its receipt number
func (s *PaymentService) GetReceipt(ctx context.Context, principal identity.Principal, receiptNumber string) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	if !principal.CanActFor(payment.CustomerID) {
		return nil, shared.ErrForbidden
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListPayments returns a customer's payment history, customers only their own
func (s *PaymentService) ListPayments(ctx context.Context, principal identity.Principal, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[PaymentResponse], error) {
	if !principal.CanActFor(customerID) {
		return nil, shared.ErrForbidden
	}

	payments, total, err := s.paymentRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// notifyPaid delivers the post-commit receipt notification. Failures are
// logged and swallowed; the payment has already committed and must present
// as success.
func (s *PaymentService) notifyPaid(ctx context.Context, payment *finance.Payment, bill *billing.Bill) {
	if s.notifier == nil {
		return
	}
	customer, err := s.customerRepo.FindByID(ctx, payment.CustomerID)
	if err != nil || customer.UserID == uuid.Nil {
		return
	}
	msg := fmt.Sprintf("Payment of PKR %s received for bill %s, receipt %s",
		payment.Amount.StringFixed(2), bill.BillNumber, payment.ReceiptNumber)
	if err := s.notifier.Notify(ctx, customer.UserID, notification.KindPaymentReceived,
		"Payment received", msg, payment.ReceiptNumber); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("receipt_number", payment.ReceiptNumber),
			zap.Error(err))
	}
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *finance.Payment) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish payment event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	payment.ClearDomainEvents()
}
