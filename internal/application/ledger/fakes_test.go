package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	return domainErr.Code
}

// In-memory repository fakes for the unit-of-work services. The register
// flows are stateful (sequence assignment, recompute ranges), so the tests
// run them against a real store rather than scripted expectations.

type fakeChartAccountRepo struct {
	accounts map[uuid.UUID]ledger.ChartAccount
	debits   decimal.Decimal
	credits  decimal.Decimal
}

func newFakeChartAccountRepo() *fakeChartAccountRepo {
	return &fakeChartAccountRepo{accounts: make(map[uuid.UUID]ledger.ChartAccount)}
}

func (f *fakeChartAccountRepo) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.ChartAccount, error) {
	a, ok := f.accounts[id]
	if !ok || a.EntityID != entityID {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (f *fakeChartAccountRepo) FindByIDs(ctx context.Context, entityID uuid.UUID, ids []uuid.UUID) ([]ledger.ChartAccount, error) {
	var out []ledger.ChartAccount
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeChartAccountRepo) FindByCode(ctx context.Context, entityID uuid.UUID, code string) (*ledger.ChartAccount, error) {
	for _, a := range f.accounts {
		if a.EntityID == entityID && strings.EqualFold(a.Code, code) {
			found := a
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeChartAccountRepo) FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ledger.ChartAccount, error) {
	var out []ledger.ChartAccount
	for _, a := range f.accounts {
		if a.EntityID != entityID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeChartAccountRepo) FindByBankAccount(ctx context.Context, entityID, bankAccountID uuid.UUID) (*ledger.ChartAccount, error) {
	for _, a := range f.accounts {
		if a.EntityID == entityID && a.BankAccountID != nil && *a.BankAccountID == bankAccountID {
			found := a
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeChartAccountRepo) ExistsByCode(ctx context.Context, entityID uuid.UUID, code string) (bool, error) {
	_, err := f.FindByCode(ctx, entityID, code)
	return err == nil, nil
}

func (f *fakeChartAccountRepo) HasPostedLines(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeChartAccountRepo) SumPostedLines(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	return f.debits, f.credits, nil
}

func (f *fakeChartAccountRepo) Save(ctx context.Context, account *ledger.ChartAccount) error {
	stored := *account
	stored.ClearDomainEvents()
	f.accounts[account.ID] = stored
	return nil
}

func (f *fakeChartAccountRepo) SaveAll(ctx context.Context, accounts []*ledger.ChartAccount) error {
	for _, a := range accounts {
		if err := f.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

type fakeJournalEntryRepo struct {
	entries map[uuid.UUID]ledger.JournalEntry
}

func newFakeJournalEntryRepo() *fakeJournalEntryRepo {
	return &fakeJournalEntryRepo{entries: make(map[uuid.UUID]ledger.JournalEntry)}
}

func (f *fakeJournalEntryRepo) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.JournalEntry, error) {
	e, ok := f.entries[id]
	if !ok || e.EntityID != entityID {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (f *fakeJournalEntryRepo) FindAllForEntity(ctx context.Context, entityID uuid.UUID, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, error) {
	var out []ledger.JournalEntry
	for _, e := range f.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeJournalEntryRepo) CountForEntity(ctx context.Context, entityID uuid.UUID, filter ledger.JournalEntryFilter) (int64, error) {
	entries, _ := f.FindAllForEntity(ctx, entityID, filter)
	return int64(len(entries)), nil
}

// Pending domain events are not persisted columns; stored copies are
// stripped so reloaded aggregates come back clean, as they do from the
// database.
func (f *fakeJournalEntryRepo) Save(ctx context.Context, entry *ledger.JournalEntry) error {
	stored := *entry
	stored.ClearDomainEvents()
	f.entries[entry.ID] = stored
	return nil
}

func (f *fakeJournalEntryRepo) UpdateMetadata(ctx context.Context, entry *ledger.JournalEntry) error {
	f.entries[entry.ID] = *entry
	return nil
}

func (f *fakeJournalEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

type fakeBankAccountRepo struct {
	accounts map[uuid.UUID]ledger.BankAccount
}

func newFakeBankAccountRepo() *fakeBankAccountRepo {
	return &fakeBankAccountRepo{accounts: make(map[uuid.UUID]ledger.BankAccount)}
}

func (f *fakeBankAccountRepo) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.BankAccount, error) {
	a, ok := f.accounts[id]
	if !ok || a.EntityID != entityID {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (f *fakeBankAccountRepo) FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ledger.BankAccount, error) {
	var out []ledger.BankAccount
	for _, a := range f.accounts {
		if a.EntityID != entityID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeBankAccountRepo) Save(ctx context.Context, account *ledger.BankAccount) error {
	stored := *account
	stored.ClearDomainEvents()
	f.accounts[account.ID] = stored
	return nil
}

type fakeBankTransactionRepo struct {
	txns    map[uuid.UUID]ledger.BankTransaction
	nextSeq uint64
}

func newFakeBankTransactionRepo() *fakeBankTransactionRepo {
	return &fakeBankTransactionRepo{txns: make(map[uuid.UUID]ledger.BankTransaction)}
}

func (f *fakeBankTransactionRepo) register(bankAccountID uuid.UUID) []*ledger.BankTransaction {
	var out []*ledger.BankTransaction
	for _, t := range f.txns {
		if t.BankAccountID == bankAccountID {
			copied := t
			out = append(out, &copied)
		}
	}
	ledger.SortRegister(out)
	return out
}

func atOrAfter(t *ledger.BankTransaction, date time.Time, sequence uint64) bool {
	if !t.Date.Equal(date) {
		return t.Date.After(date)
	}
	return t.Sequence >= sequence
}

func (f *fakeBankTransactionRepo) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.BankTransaction, error) {
	t, ok := f.txns[id]
	if !ok || t.EntityID != entityID {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (f *fakeBankTransactionRepo) FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter ledger.BankTransactionFilter) ([]ledger.BankTransaction, error) {
	var out []ledger.BankTransaction
	for _, t := range f.register(bankAccountID) {
		if filter.StartDate != nil && t.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.Date.After(*filter.EndDate) {
			continue
		}
		if filter.UnreconciledOnly && t.IsReconciled() {
			continue
		}
		out = append(out, *t)
	}
	if strings.EqualFold(filter.OrderDir, "desc") {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (f *fakeBankTransactionRepo) CountByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter ledger.BankTransactionFilter) (int64, error) {
	txns, _ := f.FindByBankAccount(ctx, bankAccountID, filter)
	return int64(len(txns)), nil
}

func (f *fakeBankTransactionRepo) FindRegister(ctx context.Context, bankAccountID uuid.UUID) ([]*ledger.BankTransaction, error) {
	return f.register(bankAccountID), nil
}

func (f *fakeBankTransactionRepo) FindFrom(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) ([]*ledger.BankTransaction, error) {
	var out []*ledger.BankTransaction
	for _, t := range f.register(bankAccountID) {
		if atOrAfter(t, date, sequence) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeBankTransactionRepo) LastBefore(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) (*ledger.BankTransaction, error) {
	var pred *ledger.BankTransaction
	for _, t := range f.register(bankAccountID) {
		if atOrAfter(t, date, sequence) {
			break
		}
		pred = t
	}
	return pred, nil
}

func (f *fakeBankTransactionRepo) FindByJournalEntry(ctx context.Context, journalEntryID uuid.UUID) ([]*ledger.BankTransaction, error) {
	var out []*ledger.BankTransaction
	for _, t := range f.txns {
		if t.JournalEntryID != nil && *t.JournalEntryID == journalEntryID {
			copied := t
			out = append(out, &copied)
		}
	}
	ledger.SortRegister(out)
	return out, nil
}

func (f *fakeBankTransactionRepo) FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID, asOf *time.Time) ([]ledger.BankTransaction, error) {
	var out []ledger.BankTransaction
	for _, t := range f.register(bankAccountID) {
		if t.IsReconciled() {
			continue
		}
		if asOf != nil && t.Date.After(*asOf) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeBankTransactionRepo) Save(ctx context.Context, txn *ledger.BankTransaction) error {
	if _, exists := f.txns[txn.ID]; !exists && txn.Sequence == 0 {
		f.nextSeq++
		txn.Sequence = f.nextSeq
	}
	f.txns[txn.ID] = *txn
	return nil
}

func (f *fakeBankTransactionRepo) SaveAll(ctx context.Context, txns []*ledger.BankTransaction) error {
	for _, t := range txns {
		if err := f.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBankTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.txns, id)
	return nil
}

// fakeUnitOfWork runs the work function against the shared fake store.
// Rollback is not simulated; tests assert failures happen before any write.
// onCommit, when set, runs after the work function succeeds, at the point
// where a real unit of work would commit the database transaction.
type fakeUnitOfWork struct {
	repos    ledger.Repositories
	onCommit func()
}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	if err := fn(f.repos); err != nil {
		return err
	}
	if f.onCommit != nil {
		f.onCommit()
	}
	return nil
}

// fakeEventPublisher records published events for assertions
type fakeEventPublisher struct {
	events []shared.DomainEvent
}

func (p *fakeEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *fakeEventPublisher) eventTypes() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

type fakeStore struct {
	chartAccounts    *fakeChartAccountRepo
	journalEntries   *fakeJournalEntryRepo
	bankAccounts     *fakeBankAccountRepo
	bankTransactions *fakeBankTransactionRepo
	uow              *fakeUnitOfWork
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		chartAccounts:    newFakeChartAccountRepo(),
		journalEntries:   newFakeJournalEntryRepo(),
		bankAccounts:     newFakeBankAccountRepo(),
		bankTransactions: newFakeBankTransactionRepo(),
	}
	s.uow = &fakeUnitOfWork{repos: ledger.Repositories{
		ChartAccounts:    s.chartAccounts,
		JournalEntries:   s.journalEntries,
		BankAccounts:     s.bankAccounts,
		BankTransactions: s.bankTransactions,
	}}
	return s
}
