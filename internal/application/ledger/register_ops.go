package ledger

import (
	"context"

	"github.com/ledgerbooks/backend/internal/domain/ledger"
)

// applyRegisterInsert places txn into the account's register at its
// chronological position and recomputes running balances from there to the
// end. Backdated inserts are legal: the recompute range is every transaction
// at or after the insertion point. Must run inside the caller's unit of work
// with the account's register lock held.
func applyRegisterInsert(ctx context.Context, repos ledger.Repositories, account *ledger.BankAccount, txn *ledger.BankTransaction) error {
	// Insert first so the store assigns the insertion sequence; same-day
	// rows order by it.
	if err := repos.BankTransactions.Save(ctx, txn); err != nil {
		return err
	}

	return recomputeFrom(ctx, repos, account, txn)
}

// applyRegisterDelete removes txn from the register and recomputes running
// balances for everything at or after its former position, seeded from the
// preceding balance (or the opening balance if it was first).
func applyRegisterDelete(ctx context.Context, repos ledger.Repositories, account *ledger.BankAccount, txn *ledger.BankTransaction) error {
	if err := repos.BankTransactions.Delete(ctx, txn.ID); err != nil {
		return err
	}

	return recomputeFrom(ctx, repos, account, txn)
}

// recomputeFrom rewrites running balances for every transaction at or after
// the (date, sequence) position of txn and syncs the account's cached
// current balance to the last row of the register.
func recomputeFrom(ctx context.Context, repos ledger.Repositories, account *ledger.BankAccount, txn *ledger.BankTransaction) error {
	opening := account.OpeningBalance
	pred, err := repos.BankTransactions.LastBefore(ctx, account.ID, txn.Date, txn.Sequence)
	if err != nil {
		return err
	}
	if pred != nil {
		opening = pred.RunningBalance
	}

	tail, err := repos.BankTransactions.FindFrom(ctx, account.ID, txn.Date, txn.Sequence)
	if err != nil {
		return err
	}

	final := ledger.ComputeRunningBalances(opening, tail)
	if len(tail) > 0 {
		if err := repos.BankTransactions.SaveAll(ctx, tail); err != nil {
			return err
		}
	}

	account.SetCurrentBalance(final)
	return repos.BankAccounts.Save(ctx, account)
}

// rebuildRegister replays the complete history from the opening balance,
// rewriting every running balance and the cached current balance. The
// repair path: the register history is the sole source of truth.
func rebuildRegister(ctx context.Context, repos ledger.Repositories, account *ledger.BankAccount) error {
	txns, err := repos.BankTransactions.FindRegister(ctx, account.ID)
	if err != nil {
		return err
	}

	final := ledger.ComputeRunningBalances(account.OpeningBalance, txns)
	if len(txns) > 0 {
		if err := repos.BankTransactions.SaveAll(ctx, txns); err != nil {
			return err
		}
	}

	account.SetCurrentBalance(final)
	return repos.BankAccounts.Save(ctx, account)
}
