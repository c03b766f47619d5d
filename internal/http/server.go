// Package http exposes the ledger over a JSON API.
package http

import (
	"net/http"

	"ledger/internal/ledger"
)

type Server struct {
	http.Server

	service      *ledger.TransactionService
	importer     *ledger.Importer
	transactions ledger.TransactionStore
	uploadDir    string
}

func NewServer(addr string, service *ledger.TransactionService, importer *ledger.Importer, transactions ledger.TransactionStore, uploadDir string) *Server {
	s := &Server{
		service:      service,
		importer:     importer,
		transactions: transactions,
		uploadDir:    uploadDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/transactions/import", s.handleImport)

	s.Server = http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
