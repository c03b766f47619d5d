package core

import (
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		ID:       "tx-1",
		Title:    "Salary",
		Value:    Money{Cents: 100000},
		Type:     Income,
		Category: Category{ID: "cat-1", Title: "Job"},
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(tx *Transaction) {}, nil},
		{"empty title", func(tx *Transaction) { tx.Title = "  " }, ErrEmptyTitle},
		{"zero value", func(tx *Transaction) { tx.Value = Money{} }, ErrInvalidAmount},
		{"negative value", func(tx *Transaction) { tx.Value = Money{Cents: -100} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty category", func(tx *Transaction) { tx.Category.Title = "" }, ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("title too long", func(t *testing.T) {
		tx := validTransaction()
		tx.Title = strings.Repeat("x", 201)
		if tx.Validate() == nil {
			t.Fatal("expected error for oversized title")
		}
	})
}

func TestTransactionTypeValid(t *testing.T) {
	if !Income.Valid() || !Outcome.Valid() {
		t.Fatal("income and outcome must be valid types")
	}
	if TransactionType("Income").Valid() || TransactionType("").Valid() {
		t.Fatal("type matching is exact and lowercase")
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Value: Money{Cents: 500}, Type: Income}
	out := Transaction{Value: Money{Cents: 300}, Type: Outcome}
	if in.Signed() != 500 {
		t.Fatalf("income signed = %d, want 500", in.Signed())
	}
	if out.Signed() != -300 {
		t.Fatalf("outcome signed = %d, want -300", out.Signed())
	}
}
