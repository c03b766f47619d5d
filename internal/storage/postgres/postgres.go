// Package postgres implements the ledger stores on PostgreSQL. Schema
// and semantics match the SQLite backend; the uniqueness constraint on
// category titles makes concurrent get-or-create safe.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ledger/internal/core"
)

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) FindByTitles(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM categories WHERE title = ANY($1)`,
		pq.Array(titles))
	if err != nil {
		return nil, fmt.Errorf("find categories by titles: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateCategories(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, title := range titles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, title, created_at) VALUES ($1, $2, $3)
			 ON CONFLICT (title) DO NOTHING`,
			uuid.NewString(), title, now)
		if err != nil {
			return nil, fmt.Errorf("insert category %q: %w", title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit categories: %w", err)
	}

	return r.FindByTitles(ctx, titles)
}

func (r *Repository) GetOrCreate(ctx context.Context, title string) (core.Category, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, title, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (title) DO NOTHING`,
		uuid.NewString(), title, time.Now().UTC())
	if err != nil {
		return core.Category{}, fmt.Errorf("upsert category %q: %w", title, err)
	}

	var c core.Category
	err = r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM categories WHERE title = $1`, title).
		Scan(&c.ID, &c.Title, &c.CreatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("select category %q: %w", title, err)
	}
	return c, nil
}

func (r *Repository) CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// seq keeps input order stable for reads; Postgres has no rowid.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (id, title, value_cents, type, category_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Value.Cents, string(t.Type), t.Category.ID, t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert transaction %q: %w", t.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	return txs, nil
}

const selectTransaction = `
SELECT t.id, t.title, t.value_cents, t.type, t.created_at,
       c.id, c.title, c.created_at
FROM transactions t
JOIN categories c ON c.id = t.category_id`

func (r *Repository) All(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` ORDER BY t.seq`)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE t.id = $1`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, sql.ErrNoRows)
	}
	return scanTransaction(rows)
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t   core.Transaction
		typ string
	)
	err := rows.Scan(&t.ID, &t.Title, &t.Value.Cents, &typ, &t.CreatedAt,
		&t.Category.ID, &t.Category.Title, &t.Category.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	return t, nil
}
