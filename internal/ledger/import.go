package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// Upload identifies a temporary import source on disk: the path to read
// and the filename the caller originally supplied (used for the format
// check).
type Upload struct {
	Path         string
	OriginalName string
}

// MalformedRowError reports a data row that does not match the expected
// shape. The whole import is aborted before any persistence.
type MalformedRowError struct {
	Row   int // 1-based data row number, header excluded
	Cause error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d: %v", e.Row, e.Cause)
}

func (e *MalformedRowError) Unwrap() error { return e.Cause }

// Importer bulk-loads transactions from a CSV source.
type Importer struct {
	categories   CategoryStore
	transactions TransactionStore
	events       EventPublisher
}

func NewImporter(categories CategoryStore, transactions TransactionStore, events EventPublisher) *Importer {
	return &Importer{
		categories:   categories,
		transactions: transactions,
		events:       events,
	}
}

type rawRecord struct {
	title    string
	typ      core.TransactionType
	cents    int64
	category string
}

// Import parses the whole source, resolves categories in two batched
// store calls, persists all transactions in one batch and finally
// removes the consumed source file.
//
// Parsing is all-or-nothing: any malformed row aborts the import before
// persistence, leaving the store unchanged. Category creation and
// transaction creation are two sequential batches; if the second fails
// the new categories remain, which is harmless because a re-run finds
// them again via the batched lookup.
//
// Import deliberately skips the balance check of the interactive path:
// a bulk load is treated as authoritative bootstrap data.
func (i *Importer) Import(ctx context.Context, up Upload) ([]core.Transaction, error) {
	if ext := strings.ToLower(filepath.Ext(up.OriginalName)); ext != ".csv" {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, up.OriginalName)
	}

	f, err := os.Open(up.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceNotFound, err)
	}
	records, titles, err := parseRows(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		i.removeSource(ctx, up.Path)
		return nil, nil
	}

	pool, err := i.resolveCategories(ctx, titles)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txs := make([]core.Transaction, len(records))
	for idx, rec := range records {
		category, ok := pool[rec.category]
		if !ok {
			// The batched create covered every referenced title, so a
			// miss here is a logic defect, never a silent drop.
			return nil, fmt.Errorf("%w: %q", core.ErrCategoryResolution, rec.category)
		}
		txs[idx] = core.Transaction{
			ID:        uuid.NewString(),
			Title:     rec.title,
			Value:     core.Money{Cents: rec.cents},
			Type:      rec.typ,
			Category:  category,
			CreatedAt: now,
		}
	}

	created, err := i.transactions.CreateTransactions(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("persist imported transactions: %w", err)
	}

	i.removeSource(ctx, up.Path)

	slog.InfoContext(ctx, "Import completed",
		"source", up.OriginalName,
		"transactions", len(created),
		"categories_referenced", len(pool))

	for _, tx := range created {
		i.publishCreated(ctx, tx.ID)
	}

	return created, nil
}

// parseRows drains the reader completely before anything is persisted.
// The header row is skipped; every data row must have exactly four
// cells: title, type, value, category. All cells are trimmed.
func parseRows(r io.Reader) ([]rawRecord, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var (
		records []rawRecord
		titles  []string // duplicates retained, first-seen order
	)
	for row := 1; ; row++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &MalformedRowError{Row: row, Cause: err}
		}
		if len(cells) != 4 {
			return nil, nil, &MalformedRowError{Row: row, Cause: fmt.Errorf("expected 4 columns, got %d", len(cells))}
		}
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}

		typ := core.TransactionType(cells[1])
		if !typ.Valid() {
			return nil, nil, &MalformedRowError{Row: row, Cause: fmt.Errorf("%w: %q", core.ErrInvalidType, cells[1])}
		}
		cents, err := core.ParseDecimalToCents(cells[2])
		if err != nil {
			return nil, nil, &MalformedRowError{Row: row, Cause: fmt.Errorf("value %q: %w", cells[2], err)}
		}
		if cells[0] == "" {
			return nil, nil, &MalformedRowError{Row: row, Cause: core.ErrEmptyTitle}
		}
		if cells[3] == "" {
			return nil, nil, &MalformedRowError{Row: row, Cause: core.ErrEmptyCategory}
		}

		records = append(records, rawRecord{
			title:    cells[0],
			typ:      typ,
			cents:    cents,
			category: cells[3],
		})
		titles = append(titles, cells[3])
	}

	return records, titles, nil
}

// resolveCategories performs the two batched store calls: one lookup for
// every referenced title, one create for the deduplicated missing set.
// The returned pool is the union of pre-existing and new categories.
func (i *Importer) resolveCategories(ctx context.Context, titles []string) (map[string]core.Category, error) {
	distinct := dedupe(titles)

	existing, err := i.categories.FindByTitles(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}

	pool := make(map[string]core.Category, len(distinct))
	for _, c := range existing {
		pool[c.Title] = c
	}

	var missing []string
	for _, title := range distinct {
		if _, ok := pool[title]; !ok {
			missing = append(missing, title)
		}
	}
	if len(missing) > 0 {
		created, err := i.categories.CreateCategories(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("create categories: %w", err)
		}
		for _, c := range created {
			pool[c.Title] = c
		}
	}

	return pool, nil
}

// removeSource releases the consumed upload exactly once, only after the
// transactions are persisted. A removal failure is logged, not
// propagated: the ledger state is already correct.
func (i *Importer) removeSource(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		slog.WarnContext(ctx, "Failed to remove import source", "path", path, "error", err)
	}
}

func (i *Importer) publishCreated(ctx context.Context, id string) {
	if i.events == nil {
		return
	}
	if err := i.events.PublishTransactionCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
