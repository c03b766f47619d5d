package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ledger/internal/core"
	"ledger/internal/storage/memory"
)

const sampleCSV = `title,type,value,category
Salary,income,1000,Job
Rent,outcome,400, Housing
 Groceries ,outcome,120.50,Food
Bonus,income,250,Job
`

func writeSource(t *testing.T, name, content string) Upload {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return Upload{Path: path, OriginalName: name}
}

func TestImport(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)

	up := writeSource(t, "statement.csv", sampleCSV)
	txs, err := imp.Import(context.Background(), up)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(txs) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(txs))
	}
	// Output order matches source row order.
	wantTitles := []string{"Salary", "Rent", "Groceries", "Bonus"}
	for i, want := range wantTitles {
		if txs[i].Title != want {
			t.Errorf("row %d title = %q, want %q", i, txs[i].Title, want)
		}
	}

	// 3 distinct referenced titles, duplicates collapsed.
	if store.CategoryCount() != 3 {
		t.Fatalf("expected 3 categories, got %d", store.CategoryCount())
	}
	// Cells are trimmed before use.
	if txs[1].Category.Title != "Housing" {
		t.Fatalf("category = %q, want Housing", txs[1].Category.Title)
	}
	if txs[2].Value.Cents != 12050 {
		t.Fatalf("value cents = %d, want 12050", txs[2].Value.Cents)
	}
	// Rows referencing the same title share one category.
	if txs[0].Category.ID != txs[3].Category.ID {
		t.Fatal("duplicate titles must resolve to one category")
	}

	// Consumed source is released after persistence.
	if _, err := os.Stat(up.Path); !os.IsNotExist(err) {
		t.Fatalf("source file must be removed after import, stat err = %v", err)
	}
}

func TestImportIsIdempotentForCategories(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)
	ctx := context.Background()

	if _, err := imp.Import(ctx, writeSource(t, "first.csv", sampleCSV)); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := imp.Import(ctx, writeSource(t, "second.csv", sampleCSV)); err != nil {
		t.Fatalf("second import: %v", err)
	}

	txs, _ := store.All(ctx)
	if len(txs) != 8 {
		t.Fatalf("expected 8 transactions after two imports, got %d", len(txs))
	}
	if store.CategoryCount() != 3 {
		t.Fatalf("re-import must not create categories, got %d", store.CategoryCount())
	}
}

func TestImportSkipsBalanceCheck(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)

	// A bulk load may carry a negative net; import is trusted data.
	up := writeSource(t, "bootstrap.csv", "title,type,value,category\nRent,outcome,400,Housing\n")
	txs, err := imp.Import(context.Background(), up)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestImportRejectsUnsupportedExtension(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)

	up := writeSource(t, "statement.txt", sampleCSV)
	_, err := imp.Import(context.Background(), up)
	if !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	// No partial processing: the file is untouched.
	if _, err := os.Stat(up.Path); err != nil {
		t.Fatalf("rejected source must not be removed: %v", err)
	}
}

func TestImportMissingSource(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)

	up := Upload{Path: filepath.Join(t.TempDir(), "missing.csv"), OriginalName: "missing.csv"}
	_, err := imp.Import(context.Background(), up)
	if !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestImportAbortsOnMalformedRow(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"wrong column count", "title,type,value,category\nSalary,income,1000\n"},
		{"bad type", "title,type,value,category\nSalary,credit,1000,Job\n"},
		{"bad value", "title,type,value,category\nSalary,income,lots,Job\n"},
		{"negative value", "title,type,value,category\nSalary,income,-10,Job\n"},
		{"empty title", "title,type,value,category\n ,income,1000,Job\n"},
		{"empty category", "title,type,value,category\nSalary,income,1000,\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New()
			imp := NewImporter(store, store, nil)

			// Valid prefix rows must not be committed either.
			content := "title,type,value,category\nGood,income,10,Job\n" + tc.csv[len("title,type,value,category\n"):]
			up := writeSource(t, "bad.csv", content)

			_, err := imp.Import(context.Background(), up)
			var malformed *MalformedRowError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRowError, got %v", err)
			}
			if malformed.Row != 2 {
				t.Fatalf("row = %d, want 2", malformed.Row)
			}

			txs, _ := store.All(context.Background())
			if len(txs) != 0 {
				t.Fatalf("all-or-nothing: no transactions may be persisted, found %d", len(txs))
			}
			if store.CategoryCount() != 0 {
				t.Fatalf("aborted import must not create categories, found %d", store.CategoryCount())
			}
		})
	}
}

func TestImportEmptySource(t *testing.T) {
	store := memory.New()
	imp := NewImporter(store, store, nil)

	t.Run("header only", func(t *testing.T) {
		up := writeSource(t, "empty.csv", "title,type,value,category\n")
		txs, err := imp.Import(context.Background(), up)
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if len(txs) != 0 {
			t.Fatalf("expected no transactions, got %d", len(txs))
		}
	})

	t.Run("zero bytes", func(t *testing.T) {
		up := writeSource(t, "blank.csv", "")
		txs, err := imp.Import(context.Background(), up)
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if len(txs) != 0 {
			t.Fatalf("expected no transactions, got %d", len(txs))
		}
	})
}
