package ledger

import (
	"context"

	"ledger/internal/core"
)

// Ports for the persistence boundary. The services never reach for a
// concrete store; backends are injected at wiring time.
type (
	CategoryStore interface {
		// FindByTitles returns the categories whose title is in titles,
		// in one batched lookup. Unknown titles are simply absent from
		// the result.
		FindByTitles(ctx context.Context, titles []string) ([]core.Category, error)

		// CreateCategories inserts the given titles, tolerating ones
		// that already exist, and returns the category row for every
		// requested title.
		CreateCategories(ctx context.Context, titles []string) ([]core.Category, error)

		// GetOrCreate resolves a title to its category, creating it
		// atomically when absent. Backed by a uniqueness constraint, not
		// find-then-create.
		GetOrCreate(ctx context.Context, title string) (core.Category, error)
	}

	TransactionStore interface {
		// CreateTransactions persists the transactions in one call,
		// preserving input order. The batch is atomic: either every
		// record is persisted or none is.
		CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)

		// All returns every persisted transaction in insertion order.
		All(ctx context.Context) ([]core.Transaction, error)

		// Get returns a single transaction by ID.
		Get(ctx context.Context, id string) (core.Transaction, error)
	}

	// EventPublisher notifies downstream consumers of newly persisted
	// transactions. Implementations must not be required for the write
	// path to succeed.
	EventPublisher interface {
		PublishTransactionCreated(ctx context.Context, id string) error
	}
)
