package http

import (
	"net/http"
	"strings"
	"time"

	"finbook/internal/core"
	"finbook/internal/currency"
	"finbook/internal/ledger"
)

type summaryResponse struct {
	Year                   int                   `json:"year"`
	Month                  int                   `json:"month"`
	Currency               string                `json:"currency"`
	Approximate            bool                  `json:"approximate,omitempty"`
	TotalBalance           core.Money            `json:"total_balance_cents"`
	TotalBalanceDisplay    string                `json:"total_balance"`
	MonthlyIncome          core.Money            `json:"monthly_income_cents"`
	MonthlyIncomeDisplay   string                `json:"monthly_income"`
	MonthlyExpenses        core.Money            `json:"monthly_expenses_cents"`
	MonthlyExpensesDisplay string                `json:"monthly_expenses"`
	CategorySpending       map[string]core.Money `json:"category_spending_cents"`
}

type seriesPoint struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Income   core.Money `json:"income_cents"`
	Expenses core.Money `json:"expenses_cents"`
}

// handleSummary returns the month dashboard, converted to the requested
// display currency when rates allow.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year, month, err := parseYearMonth(r, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	target := strings.TrimSpace(r.URL.Query().Get("currency"))
	if target == "" {
		target = s.currentDisplayCurrency()
	}

	key := summaryCacheKey(year, month, target, s.rates.UpdatedAt())
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.svc.Summary(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	base := s.rates.Base()
	rates := s.rates.Snapshot()

	resp := summaryResponse{
		Year:     year,
		Month:    month,
		Currency: base,
	}

	convert := func(m core.Money) core.Money {
		c := currency.Convert(m, base, target, rates)
		if c.Approximate {
			resp.Approximate = true
		}
		if c.Converted {
			resp.Currency = target
		}
		return c.Amount
	}

	resp.TotalBalance = convert(summary.TotalBalance)
	resp.MonthlyIncome = convert(summary.MonthlyIncome)
	resp.MonthlyExpenses = convert(summary.MonthlyExpenses)
	resp.CategorySpending = make(map[string]core.Money, len(summary.CategorySpending))
	for category, spent := range summary.CategorySpending {
		resp.CategorySpending[category] = convert(spent)
	}

	resp.TotalBalanceDisplay = currency.Format(resp.TotalBalance, resp.Currency)
	resp.MonthlyIncomeDisplay = currency.Format(resp.MonthlyIncome, resp.Currency)
	resp.MonthlyExpensesDisplay = currency.Format(resp.MonthlyExpenses, resp.Currency)

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleSeries returns the monthly income/expense trend. Defaults to the
// last six months; start and end accept YYYY-MM-DD and are inclusive.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	now := time.Now()
	start, end := ledger.LastSixMonthsRange(core.NewDate(now.Year(), int(now.Month()), now.Day()))

	if v := strings.TrimSpace(r.URL.Query().Get("start")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "start", Reason: "must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "end", Reason: "must be YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	key := start.String() + ".." + end.String()
	if cached, ok := s.seriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	series, err := s.svc.Series(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	points := make([]seriesPoint, 0, len(series))
	for _, m := range series {
		points = append(points, seriesPoint{
			Year:     m.Year,
			Month:    m.Month,
			Income:   m.Income,
			Expenses: m.Expenses,
		})
	}

	s.seriesCache.Set(key, points)
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, core.DefaultCategories)
}

type currencySettings struct {
	Currency  string   `json:"currency"`
	Supported []string `json:"supported,omitempty"`
}

func (s *Server) handleSettingsCurrency(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, currencySettings{
			Currency:  s.currentDisplayCurrency(),
			Supported: core.SupportedCurrencies(),
		})

	case http.MethodPut:
		var req currencySettings
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		code := strings.ToUpper(strings.TrimSpace(req.Currency))
		if !core.SupportedCurrency(code) {
			writeError(w, r, &core.ValidationError{Field: "currency", Reason: "unsupported currency code"})
			return
		}
		s.setDisplayCurrency(code)
		writeJSON(w, http.StatusOK, currencySettings{Currency: code})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
