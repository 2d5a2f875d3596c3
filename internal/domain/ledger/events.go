package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChartAccountCreatedEvent is raised when a new chart account is created
type ChartAccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID   `json:"account_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
}

// EventType returns the event type name
func (e *ChartAccountCreatedEvent) EventType() string {
	return "ChartAccountCreated"
}

// NewChartAccountCreatedEvent creates a new ChartAccountCreatedEvent
func NewChartAccountCreatedEvent(account *ChartAccount) *ChartAccountCreatedEvent {
	return &ChartAccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChartAccountCreated", "ChartAccount", account.ID, account.EntityID),
		AccountID:       account.ID,
		Code:            account.Code,
		Name:            account.Name,
		Type:            account.Type,
	}
}

// ChartAccountDeactivatedEvent is raised when a chart account is deactivated
type ChartAccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Code      string    `json:"code"`
}

// EventType returns the event type name
func (e *ChartAccountDeactivatedEvent) EventType() string {
	return "ChartAccountDeactivated"
}

// NewChartAccountDeactivatedEvent creates a new ChartAccountDeactivatedEvent
func NewChartAccountDeactivatedEvent(account *ChartAccount) *ChartAccountDeactivatedEvent {
	return &ChartAccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChartAccountDeactivated", "ChartAccount", account.ID, account.EntityID),
		AccountID:       account.ID,
		Code:            account.Code,
	}
}

// JournalEntryPostedEvent is raised when a balanced entry is posted
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	JournalEntryID  uuid.UUID       `json:"journal_entry_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	LineCount       int             `json:"line_count"`
	TotalDebits     decimal.Decimal `json:"total_debits"`
}

// EventType returns the event type name
func (e *JournalEntryPostedEvent) EventType() string {
	return "JournalEntryPosted"
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(entry *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("JournalEntryPosted", "JournalEntry", entry.ID, entry.EntityID),
		JournalEntryID:  entry.ID,
		TransactionDate: entry.TransactionDate,
		LineCount:       len(entry.Lines),
		TotalDebits:     entry.TotalDebits(),
	}
}

// JournalEntryDeletedEvent is raised when an entry and its lines are removed
type JournalEntryDeletedEvent struct {
	shared.BaseDomainEvent
	JournalEntryID uuid.UUID `json:"journal_entry_id"`
}

// EventType returns the event type name
func (e *JournalEntryDeletedEvent) EventType() string {
	return "JournalEntryDeleted"
}

// NewJournalEntryDeletedEvent creates a new JournalEntryDeletedEvent
func NewJournalEntryDeletedEvent(entry *JournalEntry) *JournalEntryDeletedEvent {
	return &JournalEntryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("JournalEntryDeleted", "JournalEntry", entry.ID, entry.EntityID),
		JournalEntryID:  entry.ID,
	}
}

// BankAccountCreatedEvent is raised when a bank account is registered
type BankAccountCreatedEvent struct {
	shared.BaseDomainEvent
	BankAccountID  uuid.UUID       `json:"bank_account_id"`
	AccountName    string          `json:"account_name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// EventType returns the event type name
func (e *BankAccountCreatedEvent) EventType() string {
	return "BankAccountCreated"
}

// NewBankAccountCreatedEvent creates a new BankAccountCreatedEvent
func NewBankAccountCreatedEvent(account *BankAccount) *BankAccountCreatedEvent {
	return &BankAccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BankAccountCreated", "BankAccount", account.ID, account.EntityID),
		BankAccountID:   account.ID,
		AccountName:     account.AccountName,
		OpeningBalance:  account.OpeningBalance,
	}
}
