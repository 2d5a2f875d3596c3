package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ReconciliationService tracks which register transactions have been
// matched against bank statements.
type ReconciliationService struct {
	uow          ledger.UnitOfWork
	bankAccounts ledger.BankAccountRepository
	transactions ledger.BankTransactionRepository
	logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	uow ledger.UnitOfWork,
	bankAccounts ledger.BankAccountRepository,
	transactions ledger.BankTransactionRepository,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		uow:          uow,
		bankAccounts: bankAccounts,
		transactions: transactions,
		logger:       logger,
	}
}

// ReconcileRequest represents a request to mark a transaction reconciled
type ReconcileRequest struct {
	StatementReference string     `json:"statement_reference" binding:"required,max=100"`
	ReconciledAt       *time.Time `json:"reconciled_at,omitempty"`
}

// ReconciliationSummaryResponse reports reconciliation progress for one
// bank account. ClearedBalance is the opening balance plus every reconciled
// amount, the figure a bank statement should agree with.
type ReconciliationSummaryResponse struct {
	BankAccountID     uuid.UUID         `json:"bank_account_id"`
	TotalCount        int               `json:"total_count"`
	ReconciledCount   int               `json:"reconciled_count"`
	UnreconciledCount int               `json:"unreconciled_count"`
	ReconciledTotal   valueobject.Money `json:"reconciled_total"`
	UnreconciledTotal valueobject.Money `json:"unreconciled_total"`
	ClearedBalance    valueobject.Money `json:"cleared_balance"`
	CurrentBalance    valueobject.Money `json:"current_balance"`
}

// Reconcile marks a register transaction as matched to a statement line.
// Reconciling an already reconciled transaction with the same reference is
// a no-op; a different reference is a conflict.
func (s *ReconciliationService) Reconcile(ctx context.Context, entityID, transactionID uuid.UUID, req ReconcileRequest) (*BankTransactionResponse, error) {
	at := time.Now()
	if req.ReconciledAt != nil {
		at = *req.ReconciledAt
	}

	var txn *ledger.BankTransaction
	err := s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		var err error
		txn, err = repos.BankTransactions.FindByIDForEntity(ctx, entityID, transactionID)
		if err != nil {
			return err
		}
		if err := txn.Reconcile(at, req.StatementReference); err != nil {
			return err
		}
		return repos.BankTransactions.Save(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction reconciled",
		zap.String("transaction_id", transactionID.String()),
		zap.String("statement_reference", req.StatementReference),
	)

	resp := toBankTransactionResponse(txn)
	return &resp, nil
}

// Unreconcile clears a transaction's reconciliation mark. Unreconciling an
// already unreconciled transaction is a no-op.
func (s *ReconciliationService) Unreconcile(ctx context.Context, entityID, transactionID uuid.UUID) (*BankTransactionResponse, error) {
	var txn *ledger.BankTransaction
	err := s.uow.Execute(ctx, func(repos ledger.Repositories) error {
		var err error
		txn, err = repos.BankTransactions.FindByIDForEntity(ctx, entityID, transactionID)
		if err != nil {
			return err
		}
		txn.Unreconcile()
		return repos.BankTransactions.Save(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction unreconciled",
		zap.String("transaction_id", transactionID.String()),
	)

	resp := toBankTransactionResponse(txn)
	return &resp, nil
}

// ListUnreconciled returns the outstanding transactions for a bank
// account, optionally limited to those dated on or before asOf.
func (s *ReconciliationService) ListUnreconciled(ctx context.Context, entityID, bankAccountID uuid.UUID, asOf *time.Time) ([]BankTransactionResponse, error) {
	if _, err := s.bankAccounts.FindByIDForEntity(ctx, entityID, bankAccountID); err != nil {
		return nil, err
	}

	txns, err := s.transactions.FindUnreconciled(ctx, bankAccountID, asOf)
	if err != nil {
		return nil, err
	}

	responses := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = toBankTransactionResponse(&txns[i])
	}
	return responses, nil
}

// Summary reports counts and totals of reconciled vs outstanding
// transactions for a bank account.
func (s *ReconciliationService) Summary(ctx context.Context, entityID, bankAccountID uuid.UUID) (*ReconciliationSummaryResponse, error) {
	account, err := s.bankAccounts.FindByIDForEntity(ctx, entityID, bankAccountID)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.FindRegister(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}

	summary := &ReconciliationSummaryResponse{
		BankAccountID:     bankAccountID,
		ReconciledTotal:   valueobject.ZeroUSD(),
		UnreconciledTotal: valueobject.ZeroUSD(),
	}
	for i := range txns {
		amount := valueobject.NewMoneyUSD(txns[i].Amount)
		summary.TotalCount++
		if txns[i].IsReconciled() {
			summary.ReconciledCount++
			summary.ReconciledTotal = summary.ReconciledTotal.MustAdd(amount)
		} else {
			summary.UnreconciledCount++
			summary.UnreconciledTotal = summary.UnreconciledTotal.MustAdd(amount)
		}
	}
	summary.ClearedBalance = valueobject.NewMoneyUSD(account.OpeningBalance).MustAdd(summary.ReconciledTotal)
	summary.CurrentBalance = account.GetCurrentBalanceMoney()
	return summary, nil
}
