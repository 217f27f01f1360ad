package http

import (
	"net/http"
	"time"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

// budgetView decorates a budget with its derived consumption state. The
// percent field is raw and may exceed 100; display_percent is clamped.
type budgetView struct {
	core.Budget
	Percent        float64            `json:"percent"`
	DisplayPercent float64            `json:"display_percent"`
	Status         ledger.BudgetState `json:"status"`
	Alert          bool               `json:"alert"`
}

func newBudgetView(b core.Budget) budgetView {
	raw := ledger.ConsumptionPercent(b.Spent, b.Limit)
	return budgetView{
		Budget:         b,
		Percent:        raw,
		DisplayPercent: ledger.ClampPercent(raw),
		Status:         ledger.BudgetStatus(raw),
		Alert:          ledger.AlertTriggered(raw, b.AlertThreshold),
	}
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets, err := s.svc.ListBudgets(r.Context(), time.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]budgetView, 0, len(budgets))
		for _, b := range budgets {
			views = append(views, newBudgetView(b))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var b core.Budget
		if err := decodeJSON(w, r, &b); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		created, err := s.svc.CreateBudget(r.Context(), b)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newBudgetView(created))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/budgets/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "missing budget id"})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var b core.Budget
		if err := decodeJSON(w, r, &b); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		updated, err := s.svc.UpdateBudget(r.Context(), id, b)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBudgetView(updated))

	case http.MethodDelete:
		if err := s.svc.DeleteBudget(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}
