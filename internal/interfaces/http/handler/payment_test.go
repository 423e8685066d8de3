package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	financeapp "github.com/powergrid/backend/internal/application/finance"
	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/finance"
	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/powergrid/backend/internal/interfaces/http/dto"
	"github.com/powergrid/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPaymentRepository implements finance.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Apply(ctx context.Context, input finance.ApplyPaymentInput) (*finance.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*finance.Payment, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]finance.Payment, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]finance.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Payment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockBillRepository implements billing.BillRepository for testing
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) GenerateBillNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBillRepository) CreateIssued(ctx context.Context, bill *billing.Bill, reading *billing.MeterReading) error {
	args := m.Called(ctx, bill, reading)
	return args.Error(0)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByBillNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, billingMonth string) (*billing.Bill, error) {
	args := m.Called(ctx, customerID, billingMonth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Bill, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]billing.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) CancelIssued(ctx context.Context, billID uuid.UUID, reason string) (*billing.Bill, error) {
	args := m.Called(ctx, billID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindIssuedDueBefore(ctx context.Context, cutoff time.Time) ([]billing.Bill, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

// MockCustomerRepository implements partner.CustomerRepository for testing
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*partner.Customer, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockSink implements notification.Sink for testing
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, message, actionRef string) error {
	args := m.Called(ctx, userID, kind, title, message, actionRef)
	return args.Error(0)
}

func (m *MockSink) NotifyAdmins(ctx context.Context, kind notification.Kind, title, message, actionRef string) error {
	args := m.Called(ctx, kind, title, message, actionRef)
	return args.Error(0)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// principalSetter simulates the auth middleware for tests
func principalSetter(principal identity.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, principal)
		c.Next()
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func billFixture(t *testing.T, customerID uuid.UUID) *billing.Bill {
	t.Helper()
	tar, err := tariff.NewTariff(
		tariff.CategoryResidential,
		d("50"), d("16"), d("18"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		[]tariff.Slab{
			{Order: 0, StartUnits: d("0"), EndUnits: dp("100"), RatePerUnit: d("5.0")},
			{Order: 1, StartUnits: d("100"), EndUnits: dp("300"), RatePerUnit: d("7.5")},
			{Order: 2, StartUnits: d("300"), EndUnits: nil, RatePerUnit: d("10.0")},
		},
	)
	require.NoError(t, err)
	charges, err := billing.ComputeCharges(tar, d("250"))
	require.NoError(t, err)
	bill, err := billing.NewBill("BILL-2024-00000042", customerID, uuid.New(), tar.ID,
		"2024-06", charges, time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, bill.Issue())
	return bill
}

func paymentFixture(t *testing.T, bill *billing.Bill) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment(
		"RCP-2024-00000001", "TXN-1717754400-4821", bill.ID, bill.CustomerID,
		valueobject.NewMoneyPKR(bill.TotalAmount.Amount()),
		finance.PaymentMethodOnline, uuid.New(),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), "",
	)
	require.NoError(t, err)
	return p
}

func customerFixture(t *testing.T, customerID uuid.UUID) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(
		uuid.New(), "ELX-2024-A1B2C3", "MTR-584721", "Ayesha Khan",
		tariff.CategoryResidential, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	customer.ID = customerID
	return customer
}

func newPaymentHandler(paymentRepo *MockPaymentRepository, billRepo *MockBillRepository, customerRepo *MockCustomerRepository, sink *MockSink) *PaymentHandler {
	service := financeapp.NewPaymentService(paymentRepo, billRepo, customerRepo, sink, zap.NewNop())
	return NewPaymentHandler(service)
}

func staffPrincipal() identity.Principal {
	employeeID := uuid.New()
	return identity.Principal{UserID: uuid.New(), Role: identity.RoleEmployee, EmployeeID: &employeeID}
}

func TestPaymentHandler_Apply_Success(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	billRepo := new(MockBillRepository)
	customerRepo := new(MockCustomerRepository)
	sink := new(MockSink)
	h := newPaymentHandler(paymentRepo, billRepo, customerRepo, sink)

	customerID := uuid.New()
	bill := billFixture(t, customerID)
	payment := paymentFixture(t, bill)
	customer := customerFixture(t, customerID)

	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	paymentRepo.On("Apply", mock.Anything, mock.AnythingOfType("finance.ApplyPaymentInput")).Return(payment, nil)
	customerRepo.On("FindByID", mock.Anything, customerID).Return(customer, nil)
	sink.On("Notify", mock.Anything, customer.UserID, notification.KindPaymentReceived,
		mock.Anything, mock.Anything, payment.ReceiptNumber).Return(nil)

	router := setupTestRouter()
	router.POST("/payments", principalSetter(staffPrincipal()), h.Apply)

	reqBody := financeapp.ApplyPaymentRequest{
		BillID:         bill.ID,
		Amount:         bill.TotalAmount.Amount(),
		Method:         finance.PaymentMethodOnline,
		TransactionRef: "TXN-1717754400-4821",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "RCP-2024-00000001", data["receipt_number"])
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Apply_AlreadyPaid_CarriesOriginalReceipt(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	billRepo := new(MockBillRepository)
	customerRepo := new(MockCustomerRepository)
	sink := new(MockSink)
	h := newPaymentHandler(paymentRepo, billRepo, customerRepo, sink)

	customerID := uuid.New()
	bill := billFixture(t, customerID)

	conflict := shared.NewDomainError("ALREADY_PAID", "Bill is already paid").
		WithDetail("receipt_number", "RCP-2024-00000011")
	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	paymentRepo.On("Apply", mock.Anything, mock.AnythingOfType("finance.ApplyPaymentInput")).Return(nil, conflict)

	router := setupTestRouter()
	router.POST("/payments", principalSetter(staffPrincipal()), h.Apply)

	reqBody := financeapp.ApplyPaymentRequest{
		BillID: bill.ID,
		Amount: bill.TotalAmount.Amount(),
		Method: finance.PaymentMethodCash,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_PAID", resp.Error.Code)
	assert.Equal(t, "RCP-2024-00000011", resp.Error.Detail["receipt_number"])
}

func TestPaymentHandler_Apply_InvalidJSON(t *testing.T) {
	h := newPaymentHandler(new(MockPaymentRepository), new(MockBillRepository), new(MockCustomerRepository), new(MockSink))

	router := setupTestRouter()
	router.POST("/payments", principalSetter(staffPrincipal()), h.Apply)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_Apply_NoPrincipal(t *testing.T) {
	h := newPaymentHandler(new(MockPaymentRepository), new(MockBillRepository), new(MockCustomerRepository), new(MockSink))

	router := setupTestRouter()
	router.POST("/payments", h.Apply)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentHandler_Receipt_ForbiddenForOtherCustomer(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	h := newPaymentHandler(paymentRepo, new(MockBillRepository), new(MockCustomerRepository), new(MockSink))

	customerID := uuid.New()
	bill := billFixture(t, customerID)
	payment := paymentFixture(t, bill)
	paymentRepo.On("FindByReceiptNumber", mock.Anything, payment.ReceiptNumber).Return(payment, nil)

	otherCustomerID := uuid.New()
	principal := identity.Principal{UserID: uuid.New(), Role: identity.RoleCustomer, CustomerID: &otherCustomerID}

	router := setupTestRouter()
	router.GET("/receipts/:number", principalSetter(principal), h.Receipt)

	req := httptest.NewRequest(http.MethodGet, "/receipts/"+payment.ReceiptNumber, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
