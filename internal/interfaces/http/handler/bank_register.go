package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/ledgerbooks/backend/internal/application/ledger"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
)

// BankRegisterHandler handles bank account and register endpoints
type BankRegisterHandler struct {
	BaseHandler
	service *ledgerapp.BankRegisterService
}

// NewBankRegisterHandler creates a new BankRegisterHandler
func NewBankRegisterHandler(service *ledgerapp.BankRegisterService) *BankRegisterHandler {
	return &BankRegisterHandler{service: service}
}

// CreateBankAccount registers a bank account for an entity
func (h *BankRegisterHandler) CreateBankAccount(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var req ledgerapp.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.service.CreateBankAccount(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// ListBankAccounts returns the entity's bank accounts
func (h *BankRegisterHandler) ListBankAccounts(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	accounts, err := h.service.ListBankAccounts(c.Request.Context(), entityID, activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, accounts)
}

// GetBankAccount returns a single bank account with its cached balance
func (h *BankRegisterHandler) GetBankAccount(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	account, err := h.service.GetBankAccount(c.Request.Context(), entityID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// registerListQuery is the query shape for register listings
type registerListQuery struct {
	Page             int        `form:"page" binding:"omitempty,min=1"`
	PageSize         int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	StartDate        *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate          *time.Time `form:"end_date" time_format:"2006-01-02"`
	Order            string     `form:"order" binding:"omitempty,oneof=ASC DESC asc desc"`
	UnreconciledOnly bool       `form:"unreconciled_only"`
	Search           string     `form:"search" binding:"omitempty,max=100"`
}

// ListTransactions returns register transactions in statement order, each
// carrying its running balance
func (h *BankRegisterHandler) ListTransactions(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	var q registerListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}

	filter := ledger.BankTransactionFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderDir: q.Order,
			Search:   q.Search,
		},
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		UnreconciledOnly: q.UnreconciledOnly,
	}

	transactions, total, err := h.service.ListTransactions(c.Request.Context(), entityID, accountID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, transactions, total, q.Page, q.PageSize)
}

// RecordTransaction records a manual register entry. The transaction is
// inserted at its date position and later running balances are recomputed.
func (h *BankRegisterHandler) RecordTransaction(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	var req ledgerapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.RecordTransaction(c.Request.Context(), entityID, accountID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, txn)
}

// DeleteTransaction removes a register transaction and closes the gap in
// the running balances. Reconciled transactions are refused.
func (h *BankRegisterHandler) DeleteTransaction(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	txnID, err := uuid.Parse(c.Param("txnId"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.service.DeleteTransaction(c.Request.Context(), entityID, txnID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RebuildBalance replays the full register history and rewrites every
// running balance plus the cached current balance
func (h *BankRegisterHandler) RebuildBalance(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	account, err := h.service.RebuildBalance(c.Request.Context(), entityID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}
