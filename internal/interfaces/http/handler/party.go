package handler

import (
	partnerapp "github.com/erp/contracts/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// PartyHandler handles party-related API endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partnerapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
	}
}

// Create creates a new party
func (h *PartyHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partnerapp.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, party)
}

// GetByID retrieves a party by its ID
func (h *PartyHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	party, err := h.partyService.GetByID(c.Request.Context(), tenantID, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// List retrieves a paginated list of parties
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter partnerapp.PartyListFilter
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

	parties, total, err := h.partyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, parties, total, filter.Page, filter.PageSize)
}

// Update updates a party
func (h *PartyHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	var req partnerapp.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), tenantID, partyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// Delete deletes a party
func (h *PartyHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	if err := h.partyService.Delete(c.Request.Context(), tenantID, partyID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddTaxSubstitution adds a tax substitution to the party's tax rule
func (h *PartyHandler) AddTaxSubstitution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	var req partnerapp.TaxSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	party, err := h.partyService.AddTaxSubstitution(c.Request.Context(), tenantID, partyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// RemoveTaxSubstitution removes a tax substitution from the party's tax rule
func (h *PartyHandler) RemoveTaxSubstitution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	sourceTaxCode := c.Param("tax_code")
	if sourceTaxCode == "" {
		h.BadRequest(c, "Tax code is required")
		return
	}

	party, err := h.partyService.RemoveTaxSubstitution(c.Request.Context(), tenantID, partyID, sourceTaxCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}
