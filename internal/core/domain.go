package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Category groups transactions under a unique title.
	Category struct {
		ID        string
		Title     string
		CreatedAt time.Time
	}

	// Transaction is a single ledger entry. Entries are immutable once
	// persisted; there is no update or delete path.
	Transaction struct {
		ID        string
		Title     string
		Value     Money
		Type      TransactionType
		Category  Category
		CreatedAt time.Time
	}

	// Balance is the aggregate over all persisted transactions.
	Balance struct {
		Income  Money
		Outcome Money
		Total   Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("transaction type must be income or outcome")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyCategory = errors.New("empty category title")

	// ErrInsufficientFunds is returned when an outcome transaction would
	// drive the running balance below zero. The message is part of the
	// public API contract.
	ErrInsufficientFunds = errors.New("This transaction is invalid.")

	// ErrUnsupportedFormat is returned when an import source is not a CSV file.
	ErrUnsupportedFormat = errors.New("only .csv files are allowed")

	// ErrSourceNotFound is returned when an import source cannot be opened.
	ErrSourceNotFound = errors.New("import source does not exist")

	// ErrCategoryResolution indicates a parsed record referenced a category
	// that is still missing after the batched create. This is a logic
	// defect, never user input.
	ErrCategoryResolution = errors.New("category unresolved after batch create")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Outcome
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category.Title) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Signed returns the value with outcome entries negated, the contribution
// of this transaction to the running total.
func (t Transaction) Signed() int64 {
	if t.Type == Outcome {
		return -t.Value.Cents
	}
	return t.Value.Cents
}
