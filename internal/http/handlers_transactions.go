package http

import (
	"net/http"

	"finbook/internal/core"
)

// transactionRequest accepts the amount either as raw cents
// (amount_cents) or as a decimal string (amount, e.g. "12.34"). The
// decimal form always carries a positive magnitude; the service applies
// the sign from the type field.
type transactionRequest struct {
	core.Transaction
	AmountDecimal string `json:"amount,omitempty"`
}

func (req *transactionRequest) resolve() (core.Transaction, error) {
	t := req.Transaction
	if req.AmountDecimal != "" {
		cents, err := core.ParseDecimalToCents(req.AmountDecimal)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Amount = core.CentsOf(cents)
	}
	return t, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		transactions, err := s.svc.ListTransactions(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if transactions == nil {
			transactions = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, transactions)

	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		t, err := req.resolve()
		if err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.svc.CreateTransaction(r.Context(), t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		writeJSON(w, http.StatusCreated, created)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/transactions/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "missing transaction id"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.svc.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPut:
		var req transactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		t, err := req.resolve()
		if err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.svc.UpdateTransaction(r.Context(), id, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
