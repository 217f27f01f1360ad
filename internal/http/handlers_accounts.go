package http

import (
	"net/http"
	"strings"

	"finbook/internal/core"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		includeInactive := r.URL.Query().Get("include_inactive") == "true"
		accounts, err := s.svc.ListAccounts(r.Context(), includeInactive)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if accounts == nil {
			accounts = []core.Account{}
		}
		writeJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var a core.Account
		if err := decodeJSON(w, r, &a); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		created, err := s.svc.CreateAccount(r.Context(), a)
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

func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	rest := pathSuffix(r, "/api/accounts/")
	if rest == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "missing account id"})
		return
	}

	// POST /api/accounts/{id}/deactivate soft-deletes.
	if id, ok := strings.CutSuffix(rest, "/deactivate"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		if err := s.svc.DeactivateAccount(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id := rest
	switch r.Method {
	case http.MethodGet:
		a, err := s.svc.GetAccount(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodPut:
		var a core.Account
		if err := decodeJSON(w, r, &a); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		updated, err := s.svc.UpdateAccount(r.Context(), id, a)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.svc.DeleteAccount(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateReports()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
