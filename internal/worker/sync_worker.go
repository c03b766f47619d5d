// Package worker mirrors persisted transactions to an external
// spreadsheet, driven by AMQP messages from the write path.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
)

// TransactionExporter is the outbound side of the mirror.
type TransactionExporter interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
}

type SyncWorker struct {
	transactions ledger.TransactionStore
	exporter     TransactionExporter
}

func NewSyncWorker(transactions ledger.TransactionStore, exporter TransactionExporter) *SyncWorker {
	return &SyncWorker{
		transactions: transactions,
		exporter:     exporter,
	}
}

// HandleTransactionCreated loads the transaction named by the message
// and appends it to the export target. Returning an error requeues the
// message.
func (w *SyncWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	tx, err := w.transactions.Get(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", msg.TransactionID, err)
	}

	if err := w.exporter.AppendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("export transaction %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", tx.ID,
		"type", tx.Type,
		"value_cents", tx.Value.Cents)

	return nil
}
