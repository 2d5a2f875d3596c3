package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MinJournalLines is the smallest line count that can express a balanced
// business event.
const MinJournalLines = 2

// JournalLine is one debit or credit within a journal entry. Lines are owned
// exclusively by their entry and are immutable once posted; financial
// correction is delete-and-recreate of the whole entry.
type JournalLine struct {
	ID             uuid.UUID       `json:"id"`
	JournalEntryID uuid.UUID       `json:"journal_entry_id"`
	ChartAccountID uuid.UUID       `json:"chart_account_id"`
	EntryType      EntryType       `json:"entry_type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
}

// NewJournalLine creates a journal line. Amount must be strictly positive;
// the debit/credit direction is carried by EntryType, never by sign.
func NewJournalLine(chartAccountID uuid.UUID, entryType EntryType, amount decimal.Decimal, description string) (*JournalLine, error) {
	if chartAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Journal line account cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", fmt.Sprintf("Entry type %q is not valid", entryType))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Journal line amount must be positive")
	}
	return &JournalLine{
		ID:             uuid.New(),
		ChartAccountID: chartAccountID,
		EntryType:      entryType,
		Amount:         amount,
		Description:    description,
	}, nil
}

// IsDebit returns true for debit lines
func (l *JournalLine) IsDebit() bool {
	return l.EntryType == EntryTypeDebit
}

// IsCredit returns true for credit lines
func (l *JournalLine) IsCredit() bool {
	return l.EntryType == EntryTypeCredit
}

// JournalEntry is the atomic unit of posting: a balanced group of at least
// two lines representing one business event. The aggregate is created whole
// or not at all; readers never observe partial-line state.
type JournalEntry struct {
	shared.EntityAggregateRoot
	TransactionDate time.Time     `json:"transaction_date"`
	Description     string        `json:"description"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	Lines           []JournalLine `json:"lines"`
}

// NewJournalEntry creates a balanced journal entry. All structural and
// financial validation happens here, before anything is persisted:
// at least two lines, every amount positive, and total debits equal total
// credits within the tolerance.
func NewJournalEntry(entityID uuid.UUID, transactionDate time.Time, description string, referenceNumber string, lines []*JournalLine) (*JournalEntry, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if len(lines) < MinJournalLines {
		return nil, shared.NewDomainError("INSUFFICIENT_LINES",
			fmt.Sprintf("A journal entry requires at least %d lines, got %d", MinJournalLines, len(lines)))
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range lines {
		if line == nil {
			return nil, shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Journal line %d is missing", i))
		}
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Journal line %d amount must be positive", i))
		}
		if line.IsDebit() {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !valueobject.NewMoneyUSD(debits).EqualsWithinTolerance(valueobject.NewMoneyUSD(credits)) {
		return nil, shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("Debits %s do not equal credits %s", debits.StringFixed(2), credits.StringFixed(2)))
	}

	entry := &JournalEntry{
		EntityAggregateRoot: shared.NewEntityAggregateRoot(entityID),
		TransactionDate:     transactionDate,
		Description:         description,
		ReferenceNumber:     referenceNumber,
		Lines:               make([]JournalLine, 0, len(lines)),
	}
	for _, line := range lines {
		line.JournalEntryID = entry.ID
		entry.Lines = append(entry.Lines, *line)
	}

	entry.AddDomainEvent(NewJournalEntryPostedEvent(entry))

	return entry, nil
}

// TotalDebits returns the sum of all debit line amounts
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.IsDebit() {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// TotalCredits returns the sum of all credit line amounts
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.IsCredit() {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// IsBalanced reports whether debits equal credits within the tolerance.
// Holds for every constructed entry; exposed for consistency checks.
func (e *JournalEntry) IsBalanced() bool {
	return valueobject.NewMoneyUSD(e.TotalDebits()).EqualsWithinTolerance(valueobject.NewMoneyUSD(e.TotalCredits()))
}

// UpdateMetadata changes the non-financial fields of a posted entry.
// Amounts, dates and account assignments are immutable after posting.
func (e *JournalEntry) UpdateMetadata(description, referenceNumber string) {
	e.Description = description
	e.ReferenceNumber = referenceNumber
	e.Touch()
}

// LinesForAccount returns the lines posted against the given account
func (e *JournalEntry) LinesForAccount(chartAccountID uuid.UUID) []JournalLine {
	var out []JournalLine
	for _, line := range e.Lines {
		if line.ChartAccountID == chartAccountID {
			out = append(out, line)
		}
	}
	return out
}
