package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	financeapp "github.com/powergrid/backend/internal/application/finance"
)

// PaymentHandler handles payment application and receipt lookup
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Apply handles POST /api/v1/payments
func (h *PaymentHandler) Apply(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req financeapp.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.paymentService.ApplyPayment(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get handles GET /api/v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	resp, err := h.paymentService.GetPayment(c.Request.Context(), principal, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Receipt handles GET /api/v1/receipts/:number
func (h *PaymentHandler) Receipt(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	receiptNumber := strings.TrimSpace(c.Param("number"))
	if receiptNumber == "" {
		h.BadRequest(c, "Receipt number is required")
		return
	}

	resp, err := h.paymentService.GetReceipt(c.Request.Context(), principal, receiptNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForCustomer handles GET /api/v1/customers/:id/payments
func (h *PaymentHandler) ListForCustomer(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), principal, customerID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
