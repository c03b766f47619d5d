package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Upload size cap for import files.
const maxImportBytes = 10 << 20 // 10MB

type categoryDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type transactionDTO struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Value     float64     `json:"value"`
	Type      string      `json:"type"`
	Category  categoryDTO `json:"category"`
	CreatedAt time.Time   `json:"created_at"`
}

type balanceDTO struct {
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
	Total   float64 `json:"total"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:    tx.ID,
		Title: tx.Title,
		Value: tx.Value.Units(),
		Type:  string(tx.Type),
		Category: categoryDTO{
			ID:    tx.Category.ID,
			Title: tx.Category.Title,
		},
		CreatedAt: tx.CreatedAt,
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.All(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	bal := ledger.Sum(txs)
	dtos := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": dtos,
		"balance": balanceDTO{
			Income:  bal.Income.Units(),
			Outcome: bal.Outcome.Units(),
			Total:   bal.Total.Units(),
		},
	})
}

type createTransactionRequest struct {
	Title    string      `json:"title"`
	Value    json.Number `json:"value"`
	Type     string      `json:"type"`
	Category string      `json:"category"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Value.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value")
		return
	}

	tx, err := s.service.Create(r.Context(), ledger.CreateRequest{
		Title:    req.Title,
		Value:    core.Money{Cents: cents},
		Type:     core.TransactionType(req.Type),
		Category: req.Category,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
			writeError(w, status, "failed to create transaction")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.uploadDir, "import-*.csv")
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create upload file", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		slog.ErrorContext(r.Context(), "Failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	txs, err := s.importer.Import(r.Context(), ledger.Upload{
		Path:         tmp.Name(),
		OriginalName: header.Filename,
	})
	if err != nil {
		// The importer removes the source only after success.
		os.Remove(tmp.Name())
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Import failed", "error", err, "filename", header.Filename)
			writeError(w, status, "import failed")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	dtos := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// statusFor maps domain errors to HTTP statuses. Anything unrecognized
// is a 500.
func statusFor(err error) int {
	var malformed *ledger.MalformedRowError
	switch {
	case errors.Is(err, core.ErrInsufficientFunds),
		errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrSourceNotFound),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyCategory),
		errors.As(err, &malformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
