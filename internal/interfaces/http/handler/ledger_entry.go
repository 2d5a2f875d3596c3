package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/ledgerbooks/backend/internal/application/ledger"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerEntryHandler handles journal entry endpoints
type LedgerEntryHandler struct {
	BaseHandler
	service *ledgerapp.JournalEntryService
}

// NewLedgerEntryHandler creates a new LedgerEntryHandler
func NewLedgerEntryHandler(service *ledgerapp.JournalEntryService) *LedgerEntryHandler {
	return &LedgerEntryHandler{service: service}
}

// MultiLineEntryInput is one line of a multi-line posting. Callers fill
// exactly one of debit_amount or credit_amount; the other stays zero.
type MultiLineEntryInput struct {
	ChartAccountID string          `json:"chart_account_id" binding:"required,uuid"`
	DebitAmount    decimal.Decimal `json:"debit_amount"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	Description    string          `json:"description,omitempty" binding:"max=500"`
}

// PostMultipleRequest is the boundary shape for balanced multi-line
// postings. Lines arrive as debit/credit amount pairs and are normalized
// into typed journal lines before they reach the posting engine.
type PostMultipleRequest struct {
	TransactionDate        time.Time             `json:"transaction_date" binding:"required"`
	TransactionDescription string                `json:"transaction_description" binding:"required,max=500"`
	ReferenceNumber        string                `json:"reference_number,omitempty" binding:"max=100"`
	Entries                []MultiLineEntryInput `json:"entries" binding:"required,min=2,dive"`
}

// normalizeLines converts debit/credit amount pairs into typed line inputs.
// A line carrying both amounts, or neither, is malformed.
func normalizeLines(entries []MultiLineEntryInput) ([]ledgerapp.JournalLineInput, error) {
	lines := make([]ledgerapp.JournalLineInput, 0, len(entries))
	for i, e := range entries {
		hasDebit := e.DebitAmount.IsPositive()
		hasCredit := e.CreditAmount.IsPositive()
		if hasDebit == hasCredit {
			return nil, shared.NewDomainError("INVALID_LINE",
				fmt.Sprintf("Entry %d must carry exactly one of debit_amount or credit_amount", i))
		}
		line := ledgerapp.JournalLineInput{
			ChartAccountID: e.ChartAccountID,
			Description:    e.Description,
		}
		if hasDebit {
			line.EntryType = string(ledger.EntryTypeDebit)
			line.Amount = e.DebitAmount
		} else {
			line.EntryType = string(ledger.EntryTypeCredit)
			line.Amount = e.CreditAmount
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// PostMultiple posts a balanced multi-line journal entry
func (h *LedgerEntryHandler) PostMultiple(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var req PostMultipleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines, err := normalizeLines(req.Entries)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	entry, err := h.service.PostEntry(c.Request.Context(), entityID, ledgerapp.PostEntryRequest{
		TransactionDate: req.TransactionDate,
		Description:     req.TransactionDescription,
		ReferenceNumber: req.ReferenceNumber,
		Lines:           lines,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// ledgerEntryListQuery is the query shape for listing journal entries
type ledgerEntryListQuery struct {
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	FromDate       *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate         *time.Time `form:"to_date" time_format:"2006-01-02"`
	ChartAccountID string     `form:"chart_account_id" binding:"omitempty,uuid"`
	Search         string     `form:"search" binding:"omitempty,max=100"`
}

// List returns journal entries for an entity, newest first
func (h *LedgerEntryHandler) List(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var q ledgerEntryListQuery
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

	filter := ledger.JournalEntryFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			Search:   q.Search,
		},
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
	}
	if q.ChartAccountID != "" {
		id, err := uuid.Parse(q.ChartAccountID)
		if err != nil {
			h.BadRequest(c, "Invalid chart account ID format")
			return
		}
		filter.ChartAccountID = &id
	}

	entries, total, err := h.service.ListEntries(c.Request.Context(), entityID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, q.Page, q.PageSize)
}

// GetByID returns a single journal entry with its lines
func (h *LedgerEntryHandler) GetByID(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), entityID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// UpdateMetadata changes an entry's description and reference number.
// Amounts, dates and account assignments are immutable after posting.
func (h *LedgerEntryHandler) UpdateMetadata(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	var req ledgerapp.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.service.UpdateEntry(c.Request.Context(), entityID, entryID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// Delete removes a journal entry, reversing its balance effects and any
// register transactions it emitted
func (h *LedgerEntryHandler) Delete(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), entityID, entryID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
