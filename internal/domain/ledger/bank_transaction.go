package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BankTransaction is one row in a bank account's register. Amount is signed:
// positive for inflows, negative for outflows. RunningBalance is derived by
// the register calculator and rewritten whenever an earlier row changes.
//
// Rows are ordered by (Date, Sequence); Sequence is the insertion tie-break
// assigned by the store so same-day transactions have one canonical order.
type BankTransaction struct {
	shared.BaseEntity
	EntityID           uuid.UUID       `json:"entity_id"`
	BankAccountID      uuid.UUID       `json:"bank_account_id"`
	Date               time.Time       `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	ReferenceNumber    string          `json:"reference_number,omitempty"`
	Sequence           uint64          `json:"sequence"`
	RunningBalance     decimal.Decimal `json:"running_balance"`
	JournalEntryID     *uuid.UUID      `json:"journal_entry_id,omitempty"`
	ReconciledAt       *time.Time      `json:"reconciled_at,omitempty"`
	StatementReference string          `json:"statement_reference,omitempty"`
}

// NewBankTransaction creates a register transaction. A zero amount carries
// no information and is rejected.
func NewBankTransaction(entityID, bankAccountID uuid.UUID, date time.Time, amount decimal.Decimal, description, referenceNumber string) (*BankTransaction, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}
	return &BankTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		EntityID:        entityID,
		BankAccountID:   bankAccountID,
		Date:            date,
		Amount:          amount,
		Description:     description,
		ReferenceNumber: referenceNumber,
	}, nil
}

// FromJournalEntry stamps the transaction with the posting that emitted it
func (t *BankTransaction) FromJournalEntry(entryID uuid.UUID) {
	t.JournalEntryID = &entryID
}

// IsInflow returns true for deposits/credits to the bank account
func (t *BankTransaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// IsReconciled returns true once the transaction is matched to a statement
func (t *BankTransaction) IsReconciled() bool {
	return t.ReconciledAt != nil
}

// Reconcile marks the transaction as matched against an external bank
// statement. Reconciling an already-reconciled transaction with the same
// statement reference is a no-op; a different reference is a conflict so a
// prior match is never silently overwritten.
func (t *BankTransaction) Reconcile(reconciledAt time.Time, statementReference string) error {
	if t.ReconciledAt != nil {
		if t.StatementReference == statementReference {
			return nil
		}
		return shared.NewDomainError("RECONCILIATION_CONFLICT",
			"Transaction is already reconciled against a different statement reference")
	}
	t.ReconciledAt = &reconciledAt
	t.StatementReference = statementReference
	t.UpdatedAt = time.Now()
	return nil
}

// Unreconcile clears the statement match. Always legal; manual bookkeeping
// corrections must be able to walk back a match.
func (t *BankTransaction) Unreconcile() {
	t.ReconciledAt = nil
	t.StatementReference = ""
	t.UpdatedAt = time.Now()
}

// Before reports whether t precedes other in the canonical register order
func (t *BankTransaction) Before(other *BankTransaction) bool {
	if !t.Date.Equal(other.Date) {
		return t.Date.Before(other.Date)
	}
	return t.Sequence < other.Sequence
}
