package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	tariffapp "github.com/powergrid/backend/internal/application/tariff"
	"github.com/powergrid/backend/internal/domain/tariff"
)

// TariffHandler handles tariff management and resolution
type TariffHandler struct {
	BaseHandler
	tariffService *tariffapp.TariffService
}

// NewTariffHandler creates a new tariff handler
func NewTariffHandler(tariffService *tariffapp.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// Create handles POST /api/v1/tariffs
func (h *TariffHandler) Create(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tariffapp.CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.tariffService.CreateVersion(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Resolve handles GET /api/v1/tariffs/resolve?category=residential&as_of=2024-06-01
func (h *TariffHandler) Resolve(c *gin.Context) {
	category := tariff.Category(c.Query("category"))
	if !category.IsValid() {
		h.BadRequest(c, "Unknown tariff category")
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "as_of must be formatted as YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	resolved, err := h.tariffService.Resolve(c.Request.Context(), category, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resolved)
}

// Get handles GET /api/v1/tariffs/:id
func (h *TariffHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tariff ID")
		return
	}

	resp, err := h.tariffService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /api/v1/tariffs?category=residential
func (h *TariffHandler) List(c *gin.Context) {
	var category *tariff.Category
	if raw := c.Query("category"); raw != "" {
		parsed := tariff.Category(raw)
		if !parsed.IsValid() {
			h.BadRequest(c, "Unknown tariff category")
			return
		}
		category = &parsed
	}

	resp, err := h.tariffService.List(c.Request.Context(), category, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
