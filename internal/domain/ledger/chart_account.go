package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AccountType classifies a chart account within the accounting equation
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// NormalBalance returns the entry type that increases an account of this type.
// Assets and expenses are debit-normal; liabilities, equity and revenue are
// credit-normal.
func (t AccountType) NormalBalance() EntryType {
	if t == AccountTypeAsset || t == AccountTypeExpense {
		return EntryTypeDebit
	}
	return EntryTypeCredit
}

// EntryType marks a journal line as a debit or a credit
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// IsValid checks if the entry type is valid
func (e EntryType) IsValid() bool {
	return e == EntryTypeDebit || e == EntryTypeCredit
}

// String returns the string representation of EntryType
func (e EntryType) String() string {
	return string(e)
}

// SignedAmount converts a positive line amount into its signed contribution
// to an account of the given type. A line matching the account's normal
// balance increases it; the opposite entry type decreases it. This is the
// single place sign conventions are applied.
func SignedAmount(entryType EntryType, amount decimal.Decimal, accountType AccountType) decimal.Decimal {
	if entryType == accountType.NormalBalance() {
		return amount
	}
	return amount.Neg()
}

// ChartAccount is an aggregate root representing one bucket in an entity's
// chart of accounts. Balance is derived from posted journal lines and is
// maintained in the same database transaction as every posting or deletion.
type ChartAccount struct {
	shared.EntityAggregateRoot
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	ParentID      *uuid.UUID      `json:"parent_id,omitempty"`
	IsActive      bool            `json:"is_active"`
	BankAccountID *uuid.UUID      `json:"bank_account_id,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	Description   string          `json:"description,omitempty"`
}

// NewChartAccount creates a new chart account
func NewChartAccount(entityID uuid.UUID, code, name string, accountType AccountType, parentID *uuid.UUID) (*ChartAccount, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot exceed 20 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Account type %q is not valid", accountType))
	}

	a := &ChartAccount{
		EntityAggregateRoot: shared.NewEntityAggregateRoot(entityID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		ParentID:            parentID,
		IsActive:            true,
		Balance:             decimal.Zero,
	}

	a.AddDomainEvent(NewChartAccountCreatedEvent(a))

	return a, nil
}

// LinkBankAccount marks this account as the posting target for a bank
// register. Only asset accounts can represent bank balances.
func (a *ChartAccount) LinkBankAccount(bankAccountID uuid.UUID) error {
	if a.Type != AccountTypeAsset {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Only asset accounts can be linked to a bank account")
	}
	if a.BankAccountID != nil && *a.BankAccountID != bankAccountID {
		return shared.NewDomainError("CONFLICT", "Account is already linked to a different bank account")
	}
	a.BankAccountID = &bankAccountID
	a.Touch()
	return nil
}

// IsBankLinked returns true if postings to this account feed a bank register
func (a *ChartAccount) IsBankLinked() bool {
	return a.BankAccountID != nil
}

// ApplyLine adjusts the derived balance for a posted line, normalized by the
// account's debit/credit convention.
func (a *ChartAccount) ApplyLine(entryType EntryType, amount decimal.Decimal) {
	a.Balance = a.Balance.Add(SignedAmount(entryType, amount, a.Type))
	a.Touch()
}

// ReverseLine backs out a previously applied line (used when a journal
// entry is deleted).
func (a *ChartAccount) ReverseLine(entryType EntryType, amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(SignedAmount(entryType, amount, a.Type))
	a.Touch()
}

// SetBalance overwrites the derived balance. Only the recompute repair path
// may call this; normal mutations go through ApplyLine/ReverseLine.
func (a *ChartAccount) SetBalance(balance decimal.Decimal) {
	a.Balance = balance
	a.Touch()
}

// Deactivate hides the account from future selection. Posted history is
// never deleted, so a referenced account can always be deactivated.
func (a *ChartAccount) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already inactive")
	}
	a.IsActive = false
	a.Touch()
	a.AddDomainEvent(NewChartAccountDeactivatedEvent(a))
	return nil
}

// Activate re-enables the account for selection
func (a *ChartAccount) Activate() {
	a.IsActive = true
	a.Touch()
}

// Rename updates the display name
func (a *ChartAccount) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	return nil
}

// GetBalanceMoney returns the derived balance as Money
func (a *ChartAccount) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(a.Balance)
}
