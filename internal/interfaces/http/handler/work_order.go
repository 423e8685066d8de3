package handler

import (
	"github.com/gin-gonic/gin"

	worktrackingapp "github.com/powergrid/backend/internal/application/worktracking"
)

// WorkOrderHandler handles field work orders
type WorkOrderHandler struct {
	BaseHandler
	workOrderService *worktrackingapp.WorkOrderService
}

// NewWorkOrderHandler creates a new work order handler
func NewWorkOrderHandler(workOrderService *worktrackingapp.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderService: workOrderService}
}

// Create handles POST /api/v1/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req worktrackingapp.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.workOrderService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Update handles PATCH /api/v1/work-orders/:id
func (h *WorkOrderHandler) Update(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	workOrderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	var req worktrackingapp.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.workOrderService.Update(c.Request.Context(), principal, workOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get handles GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	workOrderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}

	resp, err := h.workOrderService.Get(c.Request.Context(), principal, workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForEmployee handles GET /api/v1/employees/:id/work-orders
func (h *WorkOrderHandler) ListForEmployee(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	employeeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid employee ID")
		return
	}

	page, err := h.workOrderService.ListForEmployee(c.Request.Context(), principal, employeeID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Queue handles GET /api/v1/work-orders/queue
func (h *WorkOrderHandler) Queue(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.workOrderService.Queue(c.Request.Context(), principal, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
