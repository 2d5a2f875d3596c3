package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JournalEntryFilter defines filtering options for journal entry queries
type JournalEntryFilter struct {
	shared.Filter
	FromDate       *time.Time
	ToDate         *time.Time
	ChartAccountID *uuid.UUID
}

// BankTransactionFilter defines filtering options for register queries
type BankTransactionFilter struct {
	shared.Filter
	StartDate        *time.Time
	EndDate          *time.Time
	UnreconciledOnly bool
}

// ChartAccountRepository defines persistence for the chart of accounts
type ChartAccountRepository interface {
	// FindByIDForEntity finds an account by ID scoped to an entity
	FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ChartAccount, error)

	// FindByIDs finds accounts by IDs scoped to an entity
	FindByIDs(ctx context.Context, entityID uuid.UUID, ids []uuid.UUID) ([]ChartAccount, error)

	// FindByCode finds an account by its code within an entity
	FindByCode(ctx context.Context, entityID uuid.UUID, code string) (*ChartAccount, error)

	// FindAllForEntity lists accounts for an entity, optionally active only
	FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ChartAccount, error)

	// FindByBankAccount finds the chart account linked to a bank account
	FindByBankAccount(ctx context.Context, entityID, bankAccountID uuid.UUID) (*ChartAccount, error)

	// ExistsByCode checks code uniqueness within an entity
	ExistsByCode(ctx context.Context, entityID uuid.UUID, code string) (bool, error)

	// HasPostedLines reports whether any journal line references the account
	HasPostedLines(ctx context.Context, accountID uuid.UUID) (bool, error)

	// SumPostedLines sums all posted line amounts against the account,
	// returned as (debits, credits). Source of truth for balance repair.
	SumPostedLines(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *ChartAccount) error

	// SaveAll persists a batch of accounts
	SaveAll(ctx context.Context, accounts []*ChartAccount) error
}

// JournalEntryRepository defines persistence for journal entries and lines
type JournalEntryRepository interface {
	// FindByIDForEntity loads an entry with all its lines
	FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*JournalEntry, error)

	// FindAllForEntity lists entries (with lines) for an entity
	FindAllForEntity(ctx context.Context, entityID uuid.UUID, filter JournalEntryFilter) ([]JournalEntry, error)

	// CountForEntity counts entries matching the filter
	CountForEntity(ctx context.Context, entityID uuid.UUID, filter JournalEntryFilter) (int64, error)

	// Save persists a new entry together with all of its lines
	Save(ctx context.Context, entry *JournalEntry) error

	// UpdateMetadata persists metadata-only changes to a posted entry
	UpdateMetadata(ctx context.Context, entry *JournalEntry) error

	// Delete removes an entry and all of its lines
	Delete(ctx context.Context, id uuid.UUID) error
}

// BankAccountRepository defines persistence for bank accounts
type BankAccountRepository interface {
	// FindByIDForEntity finds a bank account by ID scoped to an entity
	FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*BankAccount, error)

	// FindAllForEntity lists bank accounts for an entity
	FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]BankAccount, error)

	// Save creates or updates a bank account
	Save(ctx context.Context, account *BankAccount) error
}

// BankTransactionRepository defines persistence for register transactions
type BankTransactionRepository interface {
	// FindByIDForEntity finds a register transaction scoped to an entity
	FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*BankTransaction, error)

	// FindByBankAccount lists transactions in register order with filtering
	FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter BankTransactionFilter) ([]BankTransaction, error)

	// CountByBankAccount counts transactions matching the filter
	CountByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter BankTransactionFilter) (int64, error)

	// FindRegister loads the complete register in canonical order
	FindRegister(ctx context.Context, bankAccountID uuid.UUID) ([]*BankTransaction, error)

	// FindFrom loads transactions at or after the (date, sequence) position,
	// in canonical order. The recompute range for an insert or delete.
	FindFrom(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) ([]*BankTransaction, error)

	// LastBefore returns the transaction immediately preceding the
	// (date, sequence) position, or nil if the position is first.
	LastBefore(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) (*BankTransaction, error)

	// FindByJournalEntry lists the transactions emitted by a posting
	FindByJournalEntry(ctx context.Context, journalEntryID uuid.UUID) ([]*BankTransaction, error)

	// FindUnreconciled lists unreconciled transactions, optionally dated at
	// or before asOf, in canonical order
	FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID, asOf *time.Time) ([]BankTransaction, error)

	// Save inserts or updates a transaction. Inserts assign Sequence.
	Save(ctx context.Context, txn *BankTransaction) error

	// SaveAll persists a batch of transactions (running-balance rewrites)
	SaveAll(ctx context.Context, txns []*BankTransaction) error

	// Delete removes a transaction
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories bundles the ledger repositories participating in one
// transactional unit of work.
type Repositories struct {
	ChartAccounts    ChartAccountRepository
	JournalEntries   JournalEntryRepository
	BankAccounts     BankAccountRepository
	BankTransactions BankTransactionRepository
}

// UnitOfWork executes fn against repositories bound to a single database
// transaction. If fn returns an error everything rolls back; a posting is
// never visible with only some of its lines or side effects persisted.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
