// Package memory provides an in-process store implementation used as the
// default backend and as the test double for the ledger services.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// Store implements both ledger.CategoryStore and ledger.TransactionStore
// behind a single mutex.
type Store struct {
	mu           sync.Mutex
	categories   map[string]core.Category // keyed by title
	transactions []core.Transaction
}

func New() *Store {
	return &Store{categories: make(map[string]core.Category)}
}

func (s *Store) FindByTitles(_ context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, title := range titles {
		if c, ok := s.categories[title]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateCategories(_ context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		out = append(out, s.getOrCreateLocked(title))
	}
	return out, nil
}

func (s *Store) GetOrCreate(_ context.Context, title string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(title), nil
}

// getOrCreateLocked keeps the title space unique under the store mutex,
// the in-memory stand-in for a database uniqueness constraint.
func (s *Store) getOrCreateLocked(title string) core.Category {
	if c, ok := s.categories[title]; ok {
		return c
	}
	c := core.Category{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	s.categories[title] = c
	return c
}

func (s *Store) CreateTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txs...)
	return append([]core.Transaction(nil), txs...), nil
}

func (s *Store) All(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s not found", id)
}

// CategoryCount reports the number of distinct categories, used by tests.
func (s *Store) CategoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories)
}
