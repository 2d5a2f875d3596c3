package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/ledgerbooks/backend/internal/application/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
)

// ChartAccountHandler handles chart of accounts endpoints
type ChartAccountHandler struct {
	BaseHandler
	service *ledgerapp.ChartAccountService
}

// NewChartAccountHandler creates a new ChartAccountHandler
func NewChartAccountHandler(service *ledgerapp.ChartAccountService) *ChartAccountHandler {
	return &ChartAccountHandler{service: service}
}

// Create creates a chart account for an entity
func (h *ChartAccountHandler) Create(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var req ledgerapp.CreateChartAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// List returns the entity's account tree with derived balances
func (h *ChartAccountHandler) List(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	tree, err := h.service.ListAccounts(c.Request.Context(), entityID, activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tree)
}

// GetByID returns a single chart account
func (h *ChartAccountHandler) GetByID(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), entityID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Deactivate marks a chart account inactive. History stays; new postings
// against the account are rejected.
func (h *ChartAccountHandler) Deactivate(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.service.DeactivateAccount(c.Request.Context(), entityID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// AccountBalanceResponse carries a single account balance as money
type AccountBalanceResponse struct {
	AccountID uuid.UUID         `json:"account_id"`
	Balance   valueobject.Money `json:"balance"`
}

// GetBalance returns the incrementally maintained balance for one account
func (h *ChartAccountHandler) GetBalance(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	balance, err := h.service.BalanceOf(c.Request.Context(), entityID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, AccountBalanceResponse{AccountID: id, Balance: balance})
}

// RecomputeBalance rebuilds the cached account balance from posted lines
func (h *ChartAccountHandler) RecomputeBalance(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.service.RecomputeBalance(c.Request.Context(), entityID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}
