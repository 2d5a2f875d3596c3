package persistence

import (
	"context"

	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormUnitOfWork implements ledger.UnitOfWork by binding all ledger
// repositories to one database transaction. If the callback returns an
// error the whole transaction rolls back, so a posting is never visible
// with only some of its lines, balance updates or register rows persisted.
type GormUnitOfWork struct {
	db               *Database
	chartAccounts    *GormChartAccountRepository
	journalEntries   *GormJournalEntryRepository
	bankAccounts     *GormBankAccountRepository
	bankTransactions *GormBankTransactionRepository
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *Database) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:               db,
		chartAccounts:    NewGormChartAccountRepository(db.DB),
		journalEntries:   NewGormJournalEntryRepository(db.DB),
		bankAccounts:     NewGormBankAccountRepository(db.DB),
		bankTransactions: NewGormBankTransactionRepository(db.DB),
	}
}

// Execute runs fn against transaction-scoped repositories
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return u.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ledger.Repositories{
			ChartAccounts:    u.chartAccounts.WithTx(tx),
			JournalEntries:   u.journalEntries.WithTx(tx),
			BankAccounts:     u.bankAccounts.WithTx(tx),
			BankTransactions: u.bankTransactions.WithTx(tx),
		})
	})
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ ledger.UnitOfWork = (*GormUnitOfWork)(nil)
