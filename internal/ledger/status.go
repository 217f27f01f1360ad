package ledger

const (
	BudgetOK         BudgetState = "ok"
	BudgetNearLimit  BudgetState = "near_limit"
	BudgetOverBudget BudgetState = "over_budget"
)

const (
	GoalCompleted   GoalState = "completed"
	GoalAlmostThere GoalState = "almost_there"
	GoalOnTrack     GoalState = "on_track"
	GoalStarted     GoalState = "started"
)

type (
	BudgetState string
	GoalState   string
)

// BudgetStatus classifies consumption from the raw percentage: 100% and
// above is over budget, 80% and above is near the limit.
func BudgetStatus(rawPercent float64) BudgetState {
	switch {
	case rawPercent >= 100:
		return BudgetOverBudget
	case rawPercent >= 80:
		return BudgetNearLimit
	default:
		return BudgetOK
	}
}

// AlertTriggered reports whether the raw consumption percentage has
// reached the budget's alert threshold.
func AlertTriggered(rawPercent, alertThreshold float64) bool {
	return rawPercent >= alertThreshold
}

// GoalStatus classifies goal progress for display. Completion is decided
// by the stored flag, which the write path keeps equal to
// current >= target.
func GoalStatus(rawPercent float64, completed bool) GoalState {
	switch {
	case completed:
		return GoalCompleted
	case rawPercent >= 90:
		return GoalAlmostThere
	case rawPercent >= 50:
		return GoalOnTrack
	default:
		return GoalStarted
	}
}
