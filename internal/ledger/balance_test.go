package ledger

import (
	"context"
	"testing"

	"ledger/internal/core"
	"ledger/internal/storage/memory"
)

func TestBalanceEmptyLedger(t *testing.T) {
	store := memory.New()
	calc := NewBalanceCalculator(store)

	bal, err := calc.Balance(context.Background())
	if err != nil {
		t.Fatalf("balance on empty ledger: %v", err)
	}
	if bal.Income.Cents != 0 || bal.Outcome.Cents != 0 || bal.Total.Cents != 0 {
		t.Fatalf("empty ledger must have zero balance, got %+v", bal)
	}
}

func TestSum(t *testing.T) {
	cases := []struct {
		name    string
		txs     []core.Transaction
		income  int64
		outcome int64
		total   int64
	}{
		{"no transactions", nil, 0, 0, 0},
		{
			"income only",
			[]core.Transaction{
				{Value: core.Money{Cents: 1000}, Type: core.Income},
				{Value: core.Money{Cents: 500}, Type: core.Income},
			},
			1500, 0, 1500,
		},
		{
			"mixed",
			[]core.Transaction{
				{Value: core.Money{Cents: 100000}, Type: core.Income},
				{Value: core.Money{Cents: 40000}, Type: core.Outcome},
				{Value: core.Money{Cents: 2500}, Type: core.Outcome},
			},
			100000, 42500, 57500,
		},
		{
			"balanced to zero",
			[]core.Transaction{
				{Value: core.Money{Cents: 10000}, Type: core.Income},
				{Value: core.Money{Cents: 10000}, Type: core.Outcome},
			},
			10000, 10000, 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bal := Sum(tc.txs)
			if bal.Income.Cents != tc.income {
				t.Errorf("income = %d, want %d", bal.Income.Cents, tc.income)
			}
			if bal.Outcome.Cents != tc.outcome {
				t.Errorf("outcome = %d, want %d", bal.Outcome.Cents, tc.outcome)
			}
			if bal.Total.Cents != tc.total {
				t.Errorf("total = %d, want %d", bal.Total.Cents, tc.total)
			}
		})
	}
}
