package ledger

import (
	"context"
	"fmt"

	"ledger/internal/core"
)

// BalanceCalculator derives the current balance from the transaction
// store. It has no side effects and is correct for an empty ledger.
type BalanceCalculator struct {
	transactions TransactionStore
}

func NewBalanceCalculator(transactions TransactionStore) *BalanceCalculator {
	return &BalanceCalculator{transactions: transactions}
}

// Balance scans all persisted transactions and returns income, outcome
// and total sums.
func (c *BalanceCalculator) Balance(ctx context.Context) (core.Balance, error) {
	txs, err := c.transactions.All(ctx)
	if err != nil {
		return core.Balance{}, fmt.Errorf("load transactions: %w", err)
	}
	return Sum(txs), nil
}

// Sum folds a transaction list into a balance.
func Sum(txs []core.Transaction) core.Balance {
	var income, outcome int64
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income += tx.Value.Cents
		case core.Outcome:
			outcome += tx.Value.Cents
		}
	}
	return core.Balance{
		Income:  core.Money{Cents: income},
		Outcome: core.Money{Cents: outcome},
		Total:   core.Money{Cents: income - outcome},
	}
}
