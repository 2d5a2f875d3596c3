package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BankAccountType classifies a bank account
type BankAccountType string

const (
	BankAccountTypeChecking    BankAccountType = "CHECKING"
	BankAccountTypeSavings     BankAccountType = "SAVINGS"
	BankAccountTypeMoneyMarket BankAccountType = "MONEY_MARKET"
	BankAccountTypeOther       BankAccountType = "OTHER"
)

// IsValid checks if the bank account type is valid
func (t BankAccountType) IsValid() bool {
	switch t {
	case BankAccountTypeChecking, BankAccountTypeSavings,
		BankAccountTypeMoneyMarket, BankAccountTypeOther:
		return true
	}
	return false
}

// BankAccount is an aggregate root for one external bank account whose
// register this engine maintains. CurrentBalance caches the running balance
// of the most recent transaction; it is rebuildable from history and must
// never be updated independently of the register.
type BankAccount struct {
	shared.EntityAggregateRoot
	BankName       string          `json:"bank_name"`
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
	Type           BankAccountType `json:"type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
}

// NewBankAccount creates a new bank account with its opening balance
func NewBankAccount(entityID uuid.UUID, bankName, accountName, accountNumber string, accountType BankAccountType, openingBalance decimal.Decimal) (*BankAccount, error) {
	if bankName == "" {
		return nil, shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Bank account type %q is not valid", accountType))
	}

	ba := &BankAccount{
		EntityAggregateRoot: shared.NewEntityAggregateRoot(entityID),
		BankName:            bankName,
		AccountName:         accountName,
		AccountNumber:       accountNumber,
		Type:                accountType,
		OpeningBalance:      openingBalance,
		CurrentBalance:      openingBalance,
		IsActive:            true,
	}

	ba.AddDomainEvent(NewBankAccountCreatedEvent(ba))

	return ba, nil
}

// SetCurrentBalance updates the cached balance to the running balance of the
// last register transaction. Only the register calculator may call this.
func (ba *BankAccount) SetCurrentBalance(balance decimal.Decimal) {
	ba.CurrentBalance = balance
	ba.Touch()
}

// Deactivate hides the account from future selection
func (ba *BankAccount) Deactivate() error {
	if !ba.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Bank account is already inactive")
	}
	ba.IsActive = false
	ba.Touch()
	return nil
}

// GetCurrentBalanceMoney returns the cached balance as Money
func (ba *BankAccount) GetCurrentBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(ba.CurrentBalance)
}
