package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChartAccountModel is the persistence model for the ChartAccount aggregate root.
type ChartAccountModel struct {
	EntityAggregateModel
	Code          string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_chart_account_entity_code,priority:2"`
	Name          string             `gorm:"type:varchar(200);not null"`
	Type          ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	ParentID      *uuid.UUID         `gorm:"type:uuid;index"`
	IsActive      bool               `gorm:"not null;default:true;index"`
	BankAccountID *uuid.UUID         `gorm:"type:uuid;uniqueIndex"`
	Balance       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Description   string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ChartAccountModel) TableName() string {
	return "chart_accounts"
}

// ToDomain converts the persistence model to a domain ChartAccount entity.
func (m *ChartAccountModel) ToDomain() *ledger.ChartAccount {
	a := &ledger.ChartAccount{
		Code:          m.Code,
		Name:          m.Name,
		Type:          m.Type,
		ParentID:      m.ParentID,
		IsActive:      m.IsActive,
		BankAccountID: m.BankAccountID,
		Balance:       m.Balance,
		Description:   m.Description,
	}
	m.PopulateEntityAggregateRoot(&a.EntityAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain ChartAccount entity.
func (m *ChartAccountModel) FromDomain(a *ledger.ChartAccount) {
	m.FromDomainEntityAggregateRoot(a.EntityAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.ParentID = a.ParentID
	m.IsActive = a.IsActive
	m.BankAccountID = a.BankAccountID
	m.Balance = a.Balance
	m.Description = a.Description
}

// ChartAccountModelFromDomain creates a new persistence model from a domain ChartAccount.
func ChartAccountModelFromDomain(a *ledger.ChartAccount) *ChartAccountModel {
	m := &ChartAccountModel{}
	m.FromDomain(a)
	return m
}

// JournalEntryModel is the persistence model for the JournalEntry aggregate root.
type JournalEntryModel struct {
	EntityAggregateModel
	TransactionDate time.Time          `gorm:"not null;index:idx_journal_entry_entity_date,priority:2"`
	Description     string             `gorm:"type:varchar(500);not null"`
	ReferenceNumber string             `gorm:"type:varchar(100)"`
	Lines           []JournalLineModel `gorm:"foreignKey:JournalEntryID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry entity.
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	e := &ledger.JournalEntry{
		TransactionDate: m.TransactionDate,
		Description:     m.Description,
		ReferenceNumber: m.ReferenceNumber,
		Lines:           make([]ledger.JournalLine, len(m.Lines)),
	}
	m.PopulateEntityAggregateRoot(&e.EntityAggregateRoot)
	for i := range m.Lines {
		e.Lines[i] = m.Lines[i].ToDomain()
	}
	return e
}

// FromDomain populates the persistence model from a domain JournalEntry entity.
func (m *JournalEntryModel) FromDomain(e *ledger.JournalEntry) {
	m.FromDomainEntityAggregateRoot(e.EntityAggregateRoot)
	m.TransactionDate = e.TransactionDate
	m.Description = e.Description
	m.ReferenceNumber = e.ReferenceNumber
	m.Lines = make([]JournalLineModel, len(e.Lines))
	for i := range e.Lines {
		m.Lines[i].FromDomain(e.Lines[i])
	}
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// JournalLineModel is the persistence model for one journal line. Lines are
// owned by their entry and only ever written through it.
type JournalLineModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChartAccountID uuid.UUID        `gorm:"type:uuid;not null;index"`
	EntryType      ledger.EntryType `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Description    string           `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalLine.
func (m *JournalLineModel) ToDomain() ledger.JournalLine {
	return ledger.JournalLine{
		ID:             m.ID,
		JournalEntryID: m.JournalEntryID,
		ChartAccountID: m.ChartAccountID,
		EntryType:      m.EntryType,
		Amount:         m.Amount,
		Description:    m.Description,
	}
}

// FromDomain populates the persistence model from a domain JournalLine.
func (m *JournalLineModel) FromDomain(l ledger.JournalLine) {
	m.ID = l.ID
	m.JournalEntryID = l.JournalEntryID
	m.ChartAccountID = l.ChartAccountID
	m.EntryType = l.EntryType
	m.Amount = l.Amount
	m.Description = l.Description
}

// BankAccountModel is the persistence model for the BankAccount aggregate root.
type BankAccountModel struct {
	EntityAggregateModel
	BankName       string                 `gorm:"type:varchar(200);not null"`
	AccountName    string                 `gorm:"type:varchar(200);not null"`
	AccountNumber  string                 `gorm:"type:varchar(50);not null"`
	Type           ledger.BankAccountType `gorm:"type:varchar(20);not null"`
	OpeningBalance decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	CurrentBalance decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	IsActive       bool                   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount entity.
func (m *BankAccountModel) ToDomain() *ledger.BankAccount {
	ba := &ledger.BankAccount{
		BankName:       m.BankName,
		AccountName:    m.AccountName,
		AccountNumber:  m.AccountNumber,
		Type:           m.Type,
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		IsActive:       m.IsActive,
	}
	m.PopulateEntityAggregateRoot(&ba.EntityAggregateRoot)
	return ba
}

// FromDomain populates the persistence model from a domain BankAccount entity.
func (m *BankAccountModel) FromDomain(ba *ledger.BankAccount) {
	m.FromDomainEntityAggregateRoot(ba.EntityAggregateRoot)
	m.BankName = ba.BankName
	m.AccountName = ba.AccountName
	m.AccountNumber = ba.AccountNumber
	m.Type = ba.Type
	m.OpeningBalance = ba.OpeningBalance
	m.CurrentBalance = ba.CurrentBalance
	m.IsActive = ba.IsActive
}

// BankAccountModelFromDomain creates a new persistence model from a domain BankAccount.
func BankAccountModelFromDomain(ba *ledger.BankAccount) *BankAccountModel {
	m := &BankAccountModel{}
	m.FromDomain(ba)
	return m
}

// BankTransactionModel is the persistence model for register transactions.
// Sequence is a database-assigned monotonic value used as the same-day
// tie-break in the canonical register order (date, sequence).
type BankTransactionModel struct {
	BaseModel
	EntityID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	BankAccountID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_bank_txn_register,priority:1"`
	Date               time.Time       `gorm:"not null;index:idx_bank_txn_register,priority:2"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description        string          `gorm:"type:varchar(500);not null"`
	ReferenceNumber    string          `gorm:"type:varchar(100)"`
	Sequence           uint64          `gorm:"autoIncrement;uniqueIndex;index:idx_bank_txn_register,priority:3"`
	RunningBalance     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	JournalEntryID     *uuid.UUID      `gorm:"type:uuid;index"`
	ReconciledAt       *time.Time      `gorm:"index"`
	StatementReference string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain BankTransaction entity.
func (m *BankTransactionModel) ToDomain() *ledger.BankTransaction {
	return &ledger.BankTransaction{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		EntityID:           m.EntityID,
		BankAccountID:      m.BankAccountID,
		Date:               m.Date,
		Amount:             m.Amount,
		Description:        m.Description,
		ReferenceNumber:    m.ReferenceNumber,
		Sequence:           m.Sequence,
		RunningBalance:     m.RunningBalance,
		JournalEntryID:     m.JournalEntryID,
		ReconciledAt:       m.ReconciledAt,
		StatementReference: m.StatementReference,
	}
}

// FromDomain populates the persistence model from a domain BankTransaction entity.
func (m *BankTransactionModel) FromDomain(t *ledger.BankTransaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.EntityID = t.EntityID
	m.BankAccountID = t.BankAccountID
	m.Date = t.Date
	m.Amount = t.Amount
	m.Description = t.Description
	m.ReferenceNumber = t.ReferenceNumber
	m.Sequence = t.Sequence
	m.RunningBalance = t.RunningBalance
	m.JournalEntryID = t.JournalEntryID
	m.ReconciledAt = t.ReconciledAt
	m.StatementReference = t.StatementReference
}

// BankTransactionModelFromDomain creates a new persistence model from a domain BankTransaction.
func BankTransactionModelFromDomain(t *ledger.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{}
	m.FromDomain(t)
	return m
}
