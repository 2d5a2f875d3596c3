package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortRegister orders transactions by the canonical register order
// (Date ascending, then insertion Sequence).
func SortRegister(txns []*BankTransaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Before(txns[j])
	})
}

// ComputeRunningBalances rewrites RunningBalance across txns, which must
// already be in register order. Each balance is the previous balance plus
// the signed amount, seeded from opening. Returns the final balance
// (opening when txns is empty), which is the account's current balance.
func ComputeRunningBalances(opening decimal.Decimal, txns []*BankTransaction) decimal.Decimal {
	running := opening
	for _, t := range txns {
		running = running.Add(t.Amount)
		t.RunningBalance = running
	}
	return running
}
