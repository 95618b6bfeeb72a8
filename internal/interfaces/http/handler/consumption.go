package handler

import (
	"time"

	contractapp "github.com/erp/contracts/internal/application/contract"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ConsumptionHandler handles consumption generation and query endpoints
type ConsumptionHandler struct {
	BaseHandler
	consumptionService *contractapp.ConsumptionService
}

// NewConsumptionHandler creates a new ConsumptionHandler
func NewConsumptionHandler(consumptionService *contractapp.ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{
		consumptionService: consumptionService,
	}
}

// Run generates consumptions for every validated contract of the tenant, up
// to the requested date (default today).
func (h *ConsumptionHandler) Run(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	targetDate, ok := h.bindTargetDate(c)
	if !ok {
		return
	}

	result, err := h.consumptionService.ConsumeUntil(c.Request.Context(), tenantID, targetDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RunForContract generates consumptions for a single contract
func (h *ConsumptionHandler) RunForContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	targetDate, ok := h.bindTargetDate(c)
	if !ok {
		return
	}

	result, err := h.consumptionService.ConsumeContract(c.Request.Context(), tenantID, contractID, targetDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByContract retrieves the consumptions generated for a contract
func (h *ConsumptionHandler) ListByContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	consumptions, total, err := h.consumptionService.ListByContract(c.Request.Context(), tenantID, contractID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, consumptions, total, filter.Page, filter.PageSize)
}

// bindTargetDate reads the optional run date from the request body. An empty
// body means "run up to today".
func (h *ConsumptionHandler) bindTargetDate(c *gin.Context) (*time.Time, bool) {
	if c.Request.ContentLength == 0 {
		return nil, true
	}

	var req contractapp.ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return nil, false
	}
	if req.Date == "" {
		return nil, true
	}

	date, err := contractapp.ParseDate(req.Date)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return &date, true
}
