package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/ledgerbooks/backend/internal/application/ledger"
)

// ReconciliationHandler handles statement reconciliation endpoints
type ReconciliationHandler struct {
	BaseHandler
	service *ledgerapp.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *ledgerapp.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// Reconcile marks a register transaction as confirmed against a bank
// statement. Repeating the call with the same statement reference is a
// no-op; a different reference is a conflict.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
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

	var req ledgerapp.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.Reconcile(c.Request.Context(), entityID, txnID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, txn)
}

// Unreconcile clears a transaction's reconciliation mark
func (h *ReconciliationHandler) Unreconcile(c *gin.Context) {
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

	txn, err := h.service.Unreconcile(c.Request.Context(), entityID, txnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, txn)
}

// ListUnreconciled returns the transactions still awaiting statement
// confirmation, optionally up to a cutoff date
func (h *ReconciliationHandler) ListUnreconciled(c *gin.Context) {
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

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = &t
	}

	transactions, err := h.service.ListUnreconciled(c.Request.Context(), entityID, accountID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transactions)
}

// Summary returns reconciliation counts and totals for a bank account
func (h *ReconciliationHandler) Summary(c *gin.Context) {
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

	summary, err := h.service.Summary(c.Request.Context(), entityID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
