package http

import (
	"net/http"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

// goalView decorates a goal with derived progress. Percent is raw;
// display_percent is clamped to 0-100 for progress bars.
type goalView struct {
	core.Goal
	Percent        float64          `json:"percent"`
	DisplayPercent float64          `json:"display_percent"`
	Status         ledger.GoalState `json:"status"`
}

func newGoalView(g core.Goal) goalView {
	raw := ledger.GoalProgressPercent(g.CurrentAmount, g.TargetAmount)
	return goalView{
		Goal:           g,
		Percent:        raw,
		DisplayPercent: ledger.ClampPercent(raw),
		Status:         ledger.GoalStatus(raw, g.Completed),
	}
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		goals, err := s.svc.ListGoals(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]goalView, 0, len(goals))
		for _, g := range goals {
			views = append(views, newGoalView(g))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var g core.Goal
		if err := decodeJSON(w, r, &g); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		created, err := s.svc.CreateGoal(r.Context(), g)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newGoalView(created))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/goals/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "missing goal id"})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var g core.Goal
		if err := decodeJSON(w, r, &g); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		updated, err := s.svc.UpdateGoal(r.Context(), id, g)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newGoalView(updated))

	case http.MethodDelete:
		if err := s.svc.DeleteGoal(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}
