package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLite-compatible versions of the persistence models for testing. The
// production schema lives in the SQL migrations; these only need the right
// table and column names so the repositories can run against an in-memory
// database. Sequence has no autoincrement here, so register fixtures assign
// it explicitly.

type chartAccountSQLite struct {
	ID            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
	EntityID      string `gorm:"index;not null"`
	Code          string `gorm:"not null"`
	Name          string `gorm:"not null"`
	Type          string `gorm:"not null"`
	ParentID      *string
	IsActive      bool `gorm:"not null;default:true"`
	BankAccountID *string
	Balance       string `gorm:"not null"`
	Description   string
}

func (chartAccountSQLite) TableName() string { return "chart_accounts" }

type journalEntrySQLite struct {
	ID              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int
	EntityID        string    `gorm:"index;not null"`
	TransactionDate time.Time `gorm:"not null"`
	Description     string    `gorm:"not null"`
	ReferenceNumber string
}

func (journalEntrySQLite) TableName() string { return "journal_entries" }

type journalLineSQLite struct {
	ID             string `gorm:"primaryKey"`
	JournalEntryID string `gorm:"index;not null"`
	ChartAccountID string `gorm:"index;not null"`
	EntryType      string `gorm:"not null"`
	Amount         string `gorm:"not null"`
	Description    string
}

func (journalLineSQLite) TableName() string { return "journal_lines" }

type bankAccountSQLite struct {
	ID             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int
	EntityID       string `gorm:"index;not null"`
	BankName       string `gorm:"not null"`
	AccountName    string `gorm:"not null"`
	AccountNumber  string `gorm:"not null"`
	Type           string `gorm:"not null"`
	OpeningBalance string `gorm:"not null"`
	CurrentBalance string `gorm:"not null"`
	IsActive       bool   `gorm:"not null;default:true"`
}

func (bankAccountSQLite) TableName() string { return "bank_accounts" }

type bankTransactionSQLite struct {
	ID                 string `gorm:"primaryKey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	EntityID           string    `gorm:"index;not null"`
	BankAccountID      string    `gorm:"index;not null"`
	Date               time.Time `gorm:"not null"`
	Amount             string    `gorm:"not null"`
	Description        string    `gorm:"not null"`
	ReferenceNumber    string
	Sequence           uint64 `gorm:"index"`
	RunningBalance     string `gorm:"not null"`
	JournalEntryID     *string
	ReconciledAt       *time.Time
	StatementReference string
}

func (bankTransactionSQLite) TableName() string { return "bank_transactions" }

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&chartAccountSQLite{},
		&journalEntrySQLite{},
		&journalLineSQLite{},
		&bankAccountSQLite{},
		&bankTransactionSQLite{},
	)
	require.NoError(t, err)

	return db
}

func seedChartAccount(t *testing.T, repo *GormChartAccountRepository, entityID uuid.UUID, code, name string, accountType ledger.AccountType) *ledger.ChartAccount {
	t.Helper()
	account, err := ledger.NewChartAccount(entityID, code, name, accountType, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), account))
	return account
}

func seedBankAccount(t *testing.T, repo *GormBankAccountRepository, entityID uuid.UUID, name string, opening decimal.Decimal) *ledger.BankAccount {
	t.Helper()
	account, err := ledger.NewBankAccount(entityID, "First National", name, "****1234", ledger.BankAccountTypeChecking, opening)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), account))
	return account
}

// seedBankTransaction inserts a register row with an explicit sequence,
// standing in for the value the production database would assign.
func seedBankTransaction(t *testing.T, repo *GormBankTransactionRepository, entityID, bankAccountID uuid.UUID, date time.Time, seq uint64, amount decimal.Decimal) *ledger.BankTransaction {
	t.Helper()
	txn, err := ledger.NewBankTransaction(entityID, bankAccountID, date, amount, "Register row", "")
	require.NoError(t, err)
	txn.Sequence = seq
	require.NoError(t, repo.Save(context.Background(), txn))
	return txn
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}
