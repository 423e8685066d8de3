package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/powergrid/backend/internal/application/billing"
)

// BillingHandler handles meter readings and bill issuance
type BillingHandler struct {
	BaseHandler
	billingService *billingapp.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *billingapp.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// RecordReading handles POST /api/v1/readings
func (h *BillingHandler) RecordReading(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	reading, err := h.billingService.RecordReading(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, reading)
}

// GenerateBill handles POST /api/v1/bills
func (h *BillingHandler) GenerateBill(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.GenerateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.billingService.GenerateBill(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Cancel handles POST /api/v1/bills/:id/cancel
func (h *BillingHandler) Cancel(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req billingapp.CancelBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.billingService.CancelBill(c.Request.Context(), principal, billID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Preview handles GET /api/v1/customers/:id/bills/preview
func (h *BillingHandler) Preview(c *gin.Context) {
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

	resp, err := h.billingService.PreviewBill(c.Request.Context(), principal, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get handles GET /api/v1/bills/:id
func (h *BillingHandler) Get(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	resp, err := h.billingService.GetBill(c.Request.Context(), principal, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForCustomer handles GET /api/v1/customers/:id/bills
func (h *BillingHandler) ListForCustomer(c *gin.Context) {
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

	page, err := h.billingService.ListBills(c.Request.Context(), principal, customerID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
