package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/ledger"
	"ledger/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	service := ledger.NewTransactionService(store, store, nil)
	importer := ledger.NewImporter(store, store, nil)
	return NewServer(":0", service, importer, store, t.TempDir()), store
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateTransactionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/transactions",
		`{"title":"Salary","value":1000,"type":"income","category":"Job"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var tx transactionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tx.ID == "" || tx.Title != "Salary" || tx.Value != 1000 || tx.Type != "income" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Category.Title != "Job" || tx.Category.ID == "" {
		t.Fatalf("unexpected category: %+v", tx.Category)
	}
}

func TestCreateTransactionRejectsOverdraft(t *testing.T) {
	srv, store := newTestServer(t)

	rec := postJSON(t, srv, "/transactions",
		`{"title":"Rent","value":50,"type":"outcome","category":"Housing"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "This transaction is invalid.") {
		t.Fatalf("body %q lacks the rejection message", rec.Body.String())
	}
	if store.CategoryCount() != 0 {
		t.Fatal("rejected request must not create a category")
	}
}

func TestListTransactionsWithBalance(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv, "/transactions", `{"title":"Salary","value":1000,"type":"income","category":"Job"}`)
	postJSON(t, srv, "/transactions", `{"title":"Rent","value":400,"type":"outcome","category":"Housing"}`)

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Transactions []transactionDTO `json:"transactions"`
		Balance      balanceDTO       `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
	if resp.Balance.Income != 1000 || resp.Balance.Outcome != 400 || resp.Balance.Total != 600 {
		t.Fatalf("unexpected balance: %+v", resp.Balance)
	}
}

func TestImportEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("title,type,value,category\nSalary,income,1000,Job\nRent,outcome,400,Housing\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/transactions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var txs []transactionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(txs) != 2 || txs[0].Title != "Salary" || txs[1].Title != "Rent" {
		t.Fatalf("unexpected import result: %+v", txs)
	}
	if store.CategoryCount() != 2 {
		t.Fatalf("expected 2 categories, got %d", store.CategoryCount())
	}
}

func TestImportEndpointRejectsWrongExtension(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "statement.xlsx")
	fw.Write([]byte("whatever"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/transactions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/transactions", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
