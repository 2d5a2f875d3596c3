package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JournalEntryService is the ledger transaction engine. It accepts balanced
// multi-line entries, persists them atomically, keeps chart-account balances
// in step, and feeds bank-linked postings into the register calculator.
type JournalEntryService struct {
	uow          ledger.UnitOfWork
	entries      ledger.JournalEntryRepository
	accounts     ledger.ChartAccountRepository
	transactions ledger.BankTransactionRepository
	locks        *RegisterLocks
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewJournalEntryService creates a new JournalEntryService. The lock
// registry must be the same instance the register service uses: both
// mutate bank registers and must serialize against the same locks.
func NewJournalEntryService(uow ledger.UnitOfWork, entries ledger.JournalEntryRepository, accounts ledger.ChartAccountRepository, transactions ledger.BankTransactionRepository, locks *RegisterLocks, events shared.EventPublisher, logger *zap.Logger) *JournalEntryService {
	return &JournalEntryService{
		uow:          uow,
		entries:      entries,
		accounts:     accounts,
		transactions: transactions,
		locks:        locks,
		events:       events,
		logger:       logger,
	}
}

// JournalLineInput is one line of a posting request
type JournalLineInput struct {
	ChartAccountID string          `json:"chart_account_id" binding:"required,uuid"`
	EntryType      string          `json:"entry_type" binding:"required,oneof=DEBIT CREDIT"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Description    string          `json:"description,omitempty" binding:"max=500"`
}

// PostEntryRequest represents a request to post a journal entry
type PostEntryRequest struct {
	TransactionDate time.Time          `json:"transaction_date" binding:"required"`
	Description     string             `json:"description" binding:"required,max=500"`
	ReferenceNumber string             `json:"reference_number,omitempty" binding:"max=100"`
	Lines           []JournalLineInput `json:"lines" binding:"required,min=2,dive"`
}

// UpdateEntryRequest carries the only fields that may change after posting.
// Amounts, dates and account assignments are immutable; financial
// correction is delete-and-recreate.
type UpdateEntryRequest struct {
	Description     string `json:"description" binding:"required,max=500"`
	ReferenceNumber string `json:"reference_number,omitempty" binding:"max=100"`
}

// JournalLineResponse represents a journal line in API responses
type JournalLineResponse struct {
	ID             uuid.UUID        `json:"id"`
	ChartAccountID uuid.UUID        `json:"chart_account_id"`
	EntryType      ledger.EntryType `json:"entry_type"`
	Amount         decimal.Decimal  `json:"amount"`
	Description    string           `json:"description,omitempty"`
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID              uuid.UUID             `json:"id"`
	EntityID        uuid.UUID             `json:"entity_id"`
	TransactionDate time.Time             `json:"transaction_date"`
	Description     string                `json:"description"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
	Lines           []JournalLineResponse `json:"lines"`
	TotalDebits     decimal.Decimal       `json:"total_debits"`
	TotalCredits    decimal.Decimal       `json:"total_credits"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func toJournalEntryResponse(e *ledger.JournalEntry) *JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:             l.ID,
			ChartAccountID: l.ChartAccountID,
			EntryType:      l.EntryType,
			Amount:         l.Amount,
			Description:    l.Description,
		}
	}
	return &JournalEntryResponse{
		ID:              e.ID,
		EntityID:        e.EntityID,
		TransactionDate: e.TransactionDate,
		Description:     e.Description,
		ReferenceNumber: e.ReferenceNumber,
		Lines:           lines,
		TotalDebits:     e.TotalDebits(),
		TotalCredits:    e.TotalCredits(),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// PostEntry validates and posts a balanced journal entry. All validation
// runs before anything touches the store; persistence of the entry, its
// lines, the chart-account balance updates and any emitted bank register
// transactions happens in one database transaction. Nothing is visible on
// failure.
func (s *JournalEntryService) PostEntry(ctx context.Context, entityID uuid.UUID, req PostEntryRequest) (*JournalEntryResponse, error) {
	lines := make([]*ledger.JournalLine, 0, len(req.Lines))
	for i, in := range req.Lines {
		accountID, err := uuid.Parse(in.ChartAccountID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ACCOUNT", fmt.Sprintf("Line %d account ID is not a valid UUID", i))
		}
		line, err := ledger.NewJournalLine(accountID, ledger.EntryType(in.EntryType), in.Amount, in.Description)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	entry, err := ledger.NewJournalEntry(entityID, req.TransactionDate, req.Description, req.ReferenceNumber, lines)
	if err != nil {
		return nil, err
	}

	// Resolve which bank registers the posting touches before opening the
	// transaction, so the register locks can be held across the commit. A
	// lock released inside the transaction closure would let a concurrent
	// writer read the register before this writer's rows are committed and
	// compute running balances without them. The bank linkage of a chart
	// account never changes after creation, so the lock set resolved here
	// stays valid; the accounts themselves are reloaded inside the
	// transaction for fresh balances.
	preloaded, err := s.loadPostingAccounts(ctx, s.accounts, entityID, entry)
	if err != nil {
		return nil, err
	}
	bankAccountIDs := make([]uuid.UUID, 0)
	for _, account := range preloaded {
		if account.IsBankLinked() {
			bankAccountIDs = append(bankAccountIDs, *account.BankAccountID)
		}
	}
	if len(bankAccountIDs) > 0 {
		unlock := s.locks.LockAll(bankAccountIDs)
		defer unlock()
	}

	err = s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		accounts, err := s.loadPostingAccounts(ctx, repos.ChartAccounts, entityID, entry)
		if err != nil {
			return err
		}

		if err := repos.JournalEntries.Save(ctx, entry); err != nil {
			return err
		}

		for _, line := range entry.Lines {
			accounts[line.ChartAccountID].ApplyLine(line.EntryType, line.Amount)
		}
		updated := make([]*ledger.ChartAccount, 0, len(accounts))
		for _, account := range accounts {
			updated = append(updated, account)
		}
		if err := repos.ChartAccounts.SaveAll(ctx, updated); err != nil {
			return err
		}

		return s.emitBankTransactions(ctx, repos, entry, accounts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("journal entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("entity_id", entityID.String()),
		zap.Int("lines", len(entry.Lines)),
		zap.String("total", entry.TotalDebits().StringFixed(2)),
	)
	publishEvents(ctx, s.events, entry)

	return toJournalEntryResponse(entry), nil
}

// loadPostingAccounts resolves every referenced account and rejects the
// posting if any is missing, inactive or belongs to another entity. It runs
// once against the plain repository to size the lock set and again inside
// the transaction for authoritative balances.
func (s *JournalEntryService) loadPostingAccounts(ctx context.Context, accountRepo ledger.ChartAccountRepository, entityID uuid.UUID, entry *ledger.JournalEntry) (map[uuid.UUID]*ledger.ChartAccount, error) {
	ids := make([]uuid.UUID, 0, len(entry.Lines))
	seen := make(map[uuid.UUID]struct{}, len(entry.Lines))
	for _, line := range entry.Lines {
		if _, ok := seen[line.ChartAccountID]; !ok {
			seen[line.ChartAccountID] = struct{}{}
			ids = append(ids, line.ChartAccountID)
		}
	}

	found, err := accountRepo.FindByIDs(ctx, entityID, ids)
	if err != nil {
		return nil, err
	}

	accounts := make(map[uuid.UUID]*ledger.ChartAccount, len(found))
	for i := range found {
		accounts[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		account, ok := accounts[id]
		if !ok {
			return nil, shared.NewDomainError("UNKNOWN_ACCOUNT",
				fmt.Sprintf("Account %s does not exist for this entity", id))
		}
		if !account.IsActive {
			return nil, shared.NewDomainError("INACTIVE_ACCOUNT",
				fmt.Sprintf("Account %s (%s) is inactive", account.Code, account.Name))
		}
	}
	return accounts, nil
}

// emitBankTransactions creates a register transaction for every line posted
// against a bank-linked account, in the same unit of work as the entry. A
// debit to a bank (asset) account is an inflow; a credit is an outflow.
func (s *JournalEntryService) emitBankTransactions(ctx context.Context, repos ledger.Repositories, entry *ledger.JournalEntry, accounts map[uuid.UUID]*ledger.ChartAccount) error {
	for _, line := range entry.Lines {
		account := accounts[line.ChartAccountID]
		if !account.IsBankLinked() {
			continue
		}

		bankAccount, err := repos.BankAccounts.FindByIDForEntity(ctx, entry.EntityID, *account.BankAccountID)
		if err != nil {
			return err
		}

		amount := line.Amount
		if line.EntryType == ledger.EntryTypeCredit {
			amount = amount.Neg()
		}

		description := line.Description
		if description == "" {
			description = entry.Description
		}

		txn, err := ledger.NewBankTransaction(entry.EntityID, bankAccount.ID, entry.TransactionDate, amount, description, entry.ReferenceNumber)
		if err != nil {
			return err
		}
		txn.FromJournalEntry(entry.ID)

		if err := applyRegisterInsert(ctx, repos, bankAccount, txn); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes an entry and all its lines, reverses the chart-account
// balance contributions, and deletes any register transactions the entry
// emitted, recomputing their running balances. One database transaction.
//
// Policy: if an emitted register transaction is already reconciled the
// delete is refused; the caller must unreconcile first so a confirmed
// statement match is never silently destroyed.
func (s *JournalEntryService) DeleteEntry(ctx context.Context, entityID, entryID uuid.UUID) error {
	// Size the lock set from a pre-read of the emitted transactions so the
	// register locks span the commit; the reconciled check repeats inside
	// the transaction against authoritative rows.
	emitted, err := s.transactions.FindByJournalEntry(ctx, entryID)
	if err != nil {
		return err
	}
	bankAccountIDs := make([]uuid.UUID, 0, len(emitted))
	for _, txn := range emitted {
		bankAccountIDs = append(bankAccountIDs, txn.BankAccountID)
	}
	if len(bankAccountIDs) > 0 {
		unlock := s.locks.LockAll(bankAccountIDs)
		defer unlock()
	}

	var entry *ledger.JournalEntry
	err = s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		var err error
		entry, err = repos.JournalEntries.FindByIDForEntity(ctx, entityID, entryID)
		if err != nil {
			return err
		}

		txns, err := repos.BankTransactions.FindByJournalEntry(ctx, entry.ID)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			if txn.IsReconciled() {
				return shared.NewDomainError("RECONCILED_ENTRY",
					"Entry funds a reconciled bank transaction; unreconcile it before deleting")
			}
		}

		accounts, err := s.loadEntryAccounts(ctx, repos, entityID, entry)
		if err != nil {
			return err
		}
		for _, line := range entry.Lines {
			accounts[line.ChartAccountID].ReverseLine(line.EntryType, line.Amount)
		}
		reversed := make([]*ledger.ChartAccount, 0, len(accounts))
		for _, account := range accounts {
			reversed = append(reversed, account)
		}
		if err := repos.ChartAccounts.SaveAll(ctx, reversed); err != nil {
			return err
		}

		for _, txn := range txns {
			bankAccount, err := repos.BankAccounts.FindByIDForEntity(ctx, entityID, txn.BankAccountID)
			if err != nil {
				return err
			}
			if err := applyRegisterDelete(ctx, repos, bankAccount, txn); err != nil {
				return err
			}
		}

		if err := repos.JournalEntries.Delete(ctx, entry.ID); err != nil {
			return err
		}

		s.logger.Info("journal entry deleted",
			zap.String("entry_id", entry.ID.String()),
			zap.String("entity_id", entityID.String()),
			zap.Int("bank_transactions_removed", len(txns)),
		)
		return nil
	})
	if err != nil {
		return err
	}

	entry.AddDomainEvent(ledger.NewJournalEntryDeletedEvent(entry))
	publishEvents(ctx, s.events, entry)
	return nil
}

// loadEntryAccounts loads the accounts an existing entry posted against.
// Unlike the posting path, inactive accounts are acceptable here: deleting
// history against a deactivated account must still reverse its balance.
func (s *JournalEntryService) loadEntryAccounts(ctx context.Context, repos ledger.Repositories, entityID uuid.UUID, entry *ledger.JournalEntry) (map[uuid.UUID]*ledger.ChartAccount, error) {
	ids := make([]uuid.UUID, 0, len(entry.Lines))
	seen := make(map[uuid.UUID]struct{}, len(entry.Lines))
	for _, line := range entry.Lines {
		if _, ok := seen[line.ChartAccountID]; !ok {
			seen[line.ChartAccountID] = struct{}{}
			ids = append(ids, line.ChartAccountID)
		}
	}
	found, err := repos.ChartAccounts.FindByIDs(ctx, entityID, ids)
	if err != nil {
		return nil, err
	}
	accounts := make(map[uuid.UUID]*ledger.ChartAccount, len(found))
	for i := range found {
		accounts[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, shared.NewDomainError("UNKNOWN_ACCOUNT",
				fmt.Sprintf("Account %s referenced by the entry no longer exists", id))
		}
	}
	return accounts, nil
}

// UpdateEntry changes the non-financial metadata of a posted entry
func (s *JournalEntryService) UpdateEntry(ctx context.Context, entityID, entryID uuid.UUID, req UpdateEntryRequest) (*JournalEntryResponse, error) {
	entry, err := s.entries.FindByIDForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	entry.UpdateMetadata(req.Description, req.ReferenceNumber)
	if err := s.entries.UpdateMetadata(ctx, entry); err != nil {
		return nil, err
	}
	return toJournalEntryResponse(entry), nil
}

// GetEntry returns one entry with its lines
func (s *JournalEntryService) GetEntry(ctx context.Context, entityID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.entries.FindByIDForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}
	return toJournalEntryResponse(entry), nil
}

// ListEntries returns entries for an entity with pagination
func (s *JournalEntryService) ListEntries(ctx context.Context, entityID uuid.UUID, filter ledger.JournalEntryFilter) ([]JournalEntryResponse, int64, error) {
	entries, err := s.entries.FindAllForEntity(ctx, entityID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entries.CountForEntity(ctx, entityID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *toJournalEntryResponse(&entries[i])
	}
	return responses, total, nil
}
