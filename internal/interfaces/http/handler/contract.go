package handler

import (
	"context"

	contractapp "github.com/erp/contracts/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles contract-related API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *contractapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *contractapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// Create creates a new draft contract
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req contractapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID retrieves a contract by its ID
func (h *ContractHandler) GetByID(c *gin.Context) {
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

	contract, err := h.contractService.GetByID(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}

// List retrieves a paginated list of contracts
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter contractapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// Update updates a draft contract
func (h *ContractHandler) Update(c *gin.Context) {
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

	var req contractapp.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), tenantID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}

// Delete deletes a draft contract
func (h *ContractHandler) Delete(c *gin.Context) {
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

	if err := h.contractService.Delete(c.Request.Context(), tenantID, contractID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLine adds a service line to a draft contract
func (h *ContractHandler) AddLine(c *gin.Context) {
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

	var req contractapp.ContractLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contract, err := h.contractService.AddLine(c.Request.Context(), tenantID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}

// UpdateLine updates a service line on a draft contract
func (h *ContractHandler) UpdateLine(c *gin.Context) {
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

	lineID, err := parseIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req contractapp.ContractLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contract, err := h.contractService.UpdateLine(c.Request.Context(), tenantID, contractID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}

// RemoveLine removes a service line from a draft contract
func (h *ContractHandler) RemoveLine(c *gin.Context) {
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

	lineID, err := parseIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	contract, err := h.contractService.RemoveLine(c.Request.Context(), tenantID, contractID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}

// Validate transitions a draft contract to the validated state
func (h *ContractHandler) Validate(c *gin.Context) {
	h.transition(c, h.contractService.Validate)
}

// Cancel cancels a contract
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.transition(c, h.contractService.Cancel)
}

// Draft returns a cancelled contract to the draft state
func (h *ContractHandler) Draft(c *gin.Context) {
	h.transition(c, h.contractService.Draft)
}

// Copy duplicates a contract as a new draft
func (h *ContractHandler) Copy(c *gin.Context) {
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

	contract, err := h.contractService.Copy(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contract)
}

func (h *ContractHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, tenantID, contractID uuid.UUID) (*contractapp.ContractResponse, error),
) {
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

	contract, err := fn(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contract)
}
