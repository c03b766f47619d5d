// Package ledger implements the transaction ledger core: balance
// computation, the single-transaction create path with its negative
// balance guard, and the CSV bulk import pipeline.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// CreateRequest carries the fields of a new interactive transaction.
type CreateRequest struct {
	Title    string
	Value    core.Money
	Type     core.TransactionType
	Category string
}

// TransactionService validates and creates single transactions.
type TransactionService struct {
	categories   CategoryStore
	transactions TransactionStore
	balance      *BalanceCalculator
	events       EventPublisher
}

func NewTransactionService(categories CategoryStore, transactions TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{
		categories:   categories,
		transactions: transactions,
		balance:      NewBalanceCalculator(transactions),
		events:       events,
	}
}

// Create persists one transaction after checking the balance invariant.
//
// An outcome whose value exceeds the current total is rejected with
// core.ErrInsufficientFunds before any row is written, including the
// category: a rejected transaction must not leave an orphan category
// behind. A value exactly equal to the total is accepted.
func (s *TransactionService) Create(ctx context.Context, req CreateRequest) (core.Transaction, error) {
	tx := core.Transaction{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Value:     req.Value,
		Type:      req.Type,
		Category:  core.Category{Title: strings.TrimSpace(req.Category)},
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	bal, err := s.balance.Balance(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("compute balance: %w", err)
	}
	if tx.Type == core.Outcome && tx.Value.Cents > bal.Total.Cents {
		return core.Transaction{}, core.ErrInsufficientFunds
	}

	category, err := s.categories.GetOrCreate(ctx, tx.Category.Title)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category %q: %w", tx.Category.Title, err)
	}
	tx.Category = category

	created, err := s.transactions.CreateTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("persist transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", created[0].ID,
		"type", created[0].Type,
		"value_cents", created[0].Value.Cents,
		"category", created[0].Category.Title)

	s.publishCreated(ctx, created[0].ID)

	return created[0], nil
}

// publishCreated notifies downstream consumers. Publish failures are
// logged, not propagated: the transaction is already persisted.
func (s *TransactionService) publishCreated(ctx context.Context, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "error", err)
	}
}
