package handler

import (
	"github.com/gin-gonic/gin"

	worktrackingapp "github.com/powergrid/backend/internal/application/worktracking"
)

// ComplaintHandler handles customer complaints
type ComplaintHandler struct {
	BaseHandler
	complaintService *worktrackingapp.ComplaintService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaintService *worktrackingapp.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// Submit handles POST /api/v1/complaints
func (h *ComplaintHandler) Submit(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req worktrackingapp.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.complaintService.Submit(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Update handles PATCH /api/v1/complaints/:id
func (h *ComplaintHandler) Update(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	complaintID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid complaint ID")
		return
	}

	var req worktrackingapp.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.complaintService.Update(c.Request.Context(), principal, complaintID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get handles GET /api/v1/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	complaintID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid complaint ID")
		return
	}

	resp, err := h.complaintService.Get(c.Request.Context(), principal, complaintID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForCustomer handles GET /api/v1/customers/:id/complaints
func (h *ComplaintHandler) ListForCustomer(c *gin.Context) {
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

	page, err := h.complaintService.ListForCustomer(c.Request.Context(), principal, customerID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Queue handles GET /api/v1/complaints/queue
func (h *ComplaintHandler) Queue(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.complaintService.Queue(c.Request.Context(), principal, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
