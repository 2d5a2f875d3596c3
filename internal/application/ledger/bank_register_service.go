package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BankRegisterService is the bank register balance calculator. It owns the
// canonical ordered transaction list per bank account and keeps every
// running balance, and the account's cached current balance, correct under
// inserts (including backdated ones), deletes and repair rebuilds.
type BankRegisterService struct {
	uow          ledger.UnitOfWork
	bankAccounts ledger.BankAccountRepository
	transactions ledger.BankTransactionRepository
	locks        *RegisterLocks
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewBankRegisterService creates a new BankRegisterService
func NewBankRegisterService(
	uow ledger.UnitOfWork,
	bankAccounts ledger.BankAccountRepository,
	transactions ledger.BankTransactionRepository,
	locks *RegisterLocks,
	events shared.EventPublisher,
	logger *zap.Logger,
) *BankRegisterService {
	return &BankRegisterService{
		uow:          uow,
		bankAccounts: bankAccounts,
		transactions: transactions,
		locks:        locks,
		events:       events,
		logger:       logger,
	}
}

// CreateBankAccountRequest represents a request to register a bank account
type CreateBankAccountRequest struct {
	BankName       string          `json:"bank_name" binding:"required,max=200"`
	AccountName    string          `json:"account_name" binding:"required,max=200"`
	AccountNumber  string          `json:"account_number" binding:"required,max=50"`
	Type           string          `json:"type" binding:"required,oneof=CHECKING SAVINGS MONEY_MARKET OTHER"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	// When set, a matching asset chart account is created and linked so
	// journal postings can reach this register.
	ChartAccountCode string `json:"chart_account_code,omitempty" binding:"max=20"`
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	EntityID       uuid.UUID       `json:"entity_id"`
	BankName       string          `json:"bank_name"`
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
	Type           string          `json:"type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	ChartAccountID *uuid.UUID      `json:"chart_account_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toBankAccountResponse(ba *ledger.BankAccount, chartAccountID *uuid.UUID) *BankAccountResponse {
	return &BankAccountResponse{
		ID:             ba.ID,
		EntityID:       ba.EntityID,
		BankName:       ba.BankName,
		AccountName:    ba.AccountName,
		AccountNumber:  ba.AccountNumber,
		Type:           string(ba.Type),
		OpeningBalance: ba.OpeningBalance,
		CurrentBalance: ba.CurrentBalance,
		IsActive:       ba.IsActive,
		ChartAccountID: chartAccountID,
		CreatedAt:      ba.CreatedAt,
		UpdatedAt:      ba.UpdatedAt,
	}
}

// RecordTransactionRequest represents a manual register entry
type RecordTransactionRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required,max=500"`
	ReferenceNumber string          `json:"reference_number,omitempty" binding:"max=100"`
}

// BankTransactionResponse represents a register transaction in API responses
type BankTransactionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	BankAccountID      uuid.UUID       `json:"bank_account_id"`
	Date               time.Time       `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	ReferenceNumber    string          `json:"reference_number,omitempty"`
	RunningBalance     decimal.Decimal `json:"running_balance"`
	JournalEntryID     *uuid.UUID      `json:"journal_entry_id,omitempty"`
	ReconciledAt       *time.Time      `json:"reconciled_at,omitempty"`
	StatementReference string          `json:"statement_reference,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toBankTransactionResponse(t *ledger.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		ID:                 t.ID,
		BankAccountID:      t.BankAccountID,
		Date:               t.Date,
		Amount:             t.Amount,
		Description:        t.Description,
		ReferenceNumber:    t.ReferenceNumber,
		RunningBalance:     t.RunningBalance,
		JournalEntryID:     t.JournalEntryID,
		ReconciledAt:       t.ReconciledAt,
		StatementReference: t.StatementReference,
		CreatedAt:          t.CreatedAt,
	}
}

// CreateBankAccount registers a bank account, optionally creating and
// linking its asset chart account in the same transaction.
func (s *BankRegisterService) CreateBankAccount(ctx context.Context, entityID uuid.UUID, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	bankAccount, err := ledger.NewBankAccount(entityID, req.BankName, req.AccountName, req.AccountNumber, ledger.BankAccountType(req.Type), req.OpeningBalance)
	if err != nil {
		return nil, err
	}

	var chartAccountID *uuid.UUID
	var chartAccount *ledger.ChartAccount
	err = s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		if err := repos.BankAccounts.Save(ctx, bankAccount); err != nil {
			return err
		}

		if req.ChartAccountCode == "" {
			return nil
		}
		exists, err := repos.ChartAccounts.ExistsByCode(ctx, entityID, req.ChartAccountCode)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_ACCOUNT_CODE",
				"An account with this code already exists for the entity")
		}
		chartAccount, err = ledger.NewChartAccount(entityID, req.ChartAccountCode, req.AccountName, ledger.AccountTypeAsset, nil)
		if err != nil {
			return err
		}
		if err := chartAccount.LinkBankAccount(bankAccount.ID); err != nil {
			return err
		}
		if err := repos.ChartAccounts.Save(ctx, chartAccount); err != nil {
			return err
		}
		chartAccountID = &chartAccount.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank account created",
		zap.String("bank_account_id", bankAccount.ID.String()),
		zap.String("entity_id", entityID.String()),
	)
	if chartAccount != nil {
		publishEvents(ctx, s.events, bankAccount, chartAccount)
	} else {
		publishEvents(ctx, s.events, bankAccount)
	}

	return toBankAccountResponse(bankAccount, chartAccountID), nil
}

// GetBankAccount returns one bank account
func (s *BankRegisterService) GetBankAccount(ctx context.Context, entityID, id uuid.UUID) (*BankAccountResponse, error) {
	ba, err := s.bankAccounts.FindByIDForEntity(ctx, entityID, id)
	if err != nil {
		return nil, err
	}
	return toBankAccountResponse(ba, nil), nil
}

// ListBankAccounts returns the entity's bank accounts
func (s *BankRegisterService) ListBankAccounts(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]BankAccountResponse, error) {
	accounts, err := s.bankAccounts.FindAllForEntity(ctx, entityID, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toBankAccountResponse(&accounts[i], nil)
	}
	return responses, nil
}

// RecordTransaction inserts a manual register entry at its chronological
// position and recomputes running balances from there forward. Mutations to
// one account's register are serialized; different accounts proceed in
// parallel.
func (s *BankRegisterService) RecordTransaction(ctx context.Context, entityID, bankAccountID uuid.UUID, req RecordTransactionRequest) (*BankTransactionResponse, error) {
	txn, err := ledger.NewBankTransaction(entityID, bankAccountID, req.Date, req.Amount, req.Description, req.ReferenceNumber)
	if err != nil {
		return nil, err
	}

	// The register lock must be held until the transaction commits, not
	// just until the closure returns. Releasing inside the closure would
	// let a concurrent writer read the register before these rows are
	// visible and compute running balances without them.
	unlock := s.locks.Lock(bankAccountID)
	defer unlock()

	err = s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		account, err := repos.BankAccounts.FindByIDForEntity(ctx, entityID, bankAccountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return shared.NewDomainError("INACTIVE_ACCOUNT", "Bank account is inactive")
		}

		return applyRegisterInsert(ctx, repos, account, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("register transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("bank_account_id", bankAccountID.String()),
		zap.String("amount", txn.Amount.StringFixed(2)),
	)

	resp := toBankTransactionResponse(txn)
	return &resp, nil
}

// DeleteTransaction removes a register entry and recomputes running
// balances for everything at or after its position. Reconciled
// transactions are protected; unreconcile first.
func (s *BankRegisterService) DeleteTransaction(ctx context.Context, entityID, transactionID uuid.UUID) error {
	// Pre-read to learn which register to lock; a transaction never moves
	// between bank accounts, so the lock target is stable. The reconciled
	// check repeats inside the transaction against the authoritative row
	// so the lock spans the commit.
	located, err := s.transactions.FindByIDForEntity(ctx, entityID, transactionID)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(located.BankAccountID)
	defer unlock()

	return s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		txn, err := repos.BankTransactions.FindByIDForEntity(ctx, entityID, transactionID)
		if err != nil {
			return err
		}
		if txn.IsReconciled() {
			return shared.NewDomainError("RECONCILED_TRANSACTION",
				"Transaction is reconciled; unreconcile it before deleting")
		}

		account, err := repos.BankAccounts.FindByIDForEntity(ctx, entityID, txn.BankAccountID)
		if err != nil {
			return err
		}

		if err := applyRegisterDelete(ctx, repos, account, txn); err != nil {
			return err
		}

		s.logger.Info("register transaction deleted",
			zap.String("transaction_id", transactionID.String()),
			zap.String("bank_account_id", account.ID.String()),
		)
		return nil
	})
}

// ListTransactions returns register transactions with running balances,
// paginated, in the caller's requested order.
func (s *BankRegisterService) ListTransactions(ctx context.Context, entityID, bankAccountID uuid.UUID, filter ledger.BankTransactionFilter) ([]BankTransactionResponse, int64, error) {
	// Scope check before touching the register.
	if _, err := s.bankAccounts.FindByIDForEntity(ctx, entityID, bankAccountID); err != nil {
		return nil, 0, err
	}

	txns, err := s.transactions.FindByBankAccount(ctx, bankAccountID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactions.CountByBankAccount(ctx, bankAccountID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = toBankTransactionResponse(&txns[i])
	}
	return responses, total, nil
}

// RebuildBalance replays the full register from the opening balance and
// rewrites every running balance plus the cached current balance. The
// explicit repair operation: cached balances are always rebuildable from
// transaction history.
func (s *BankRegisterService) RebuildBalance(ctx context.Context, entityID, bankAccountID uuid.UUID) (*BankAccountResponse, error) {
	unlock := s.locks.Lock(bankAccountID)
	defer unlock()

	var account *ledger.BankAccount
	err := s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		var err error
		account, err = repos.BankAccounts.FindByIDForEntity(ctx, entityID, bankAccountID)
		if err != nil {
			return err
		}

		return rebuildRegister(ctx, repos, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("register rebuilt",
		zap.String("bank_account_id", bankAccountID.String()),
		zap.String("current_balance", account.CurrentBalance.StringFixed(2)),
	)

	return toBankAccountResponse(account, nil), nil
}
