package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finbook/internal/core"
	"finbook/internal/currency"
	"finbook/internal/finance"
	"finbook/internal/memstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := finance.NewService(memstore.New(), nil, "test-user")
	table := currency.NewTable("USD")
	s := NewServer(":0", svc, table, "USD")
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// transactionBody is the minimal valid create/update payload; every field
// the entity validation requires is present.
func transactionBody(accountID, amount, kind, category, date string) map[string]any {
	return map[string]any{
		"amount":      amount,
		"type":        kind,
		"category":    category,
		"account_id":  accountID,
		"description": "test " + kind,
		"date":        date,
	}
}

func createAccount(t *testing.T, s *Server, name string) core.Account {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/accounts", map[string]any{
		"name":     name,
		"type":     "checking",
		"currency": "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: status %d, body %s", rec.Code, rec.Body)
	}
	return decodeBody[core.Account](t, rec)
}

func TestCreateTransactionWithDecimalAmount(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "12.34", "expense", "Food & Dining", "2026-08-10"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	created := decodeBody[core.Transaction](t, rec)
	if created.Amount.Cents != -1234 {
		t.Errorf("stored amount = %d, want -1234", created.Amount.Cents)
	}
	if created.ID == "" {
		t.Error("response missing generated id")
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Main")

	for _, amount := range []string{"12.345x", "-5.00", "0"} {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions",
			transactionBody(account.ID, amount, "expense", "Other", "2026-08-10"))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("amount %q: status = %d, want 422", amount, rec.Code)
		}
	}
}

func TestCreateTransactionRequiresDescription(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Main")

	body := transactionBody(account.ID, "10.00", "expense", "Other", "2026-08-10")
	body["description"] = ""
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeBody[errorResponse](t, rec)
	if resp.Field != "description" {
		t.Errorf("field = %q, want description", resp.Field)
	}
}

func TestTransactionNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/transactions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodDelete, "/api/transactions", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow == "" {
		t.Error("405 response missing Allow header")
	}
}

func TestDeleteAccountWithTransactionsConflicts(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "50.00", "income", "Income", "2026-08-01"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body)
	}
	created := decodeBody[core.Transaction](t, rec)

	rec = doJSON(t, s, http.MethodDelete, "/api/accounts/"+account.ID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete with history: status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete transaction: %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/accounts/"+account.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete after cleanup: status = %d, want 204", rec.Code)
	}
}

func TestDeactivateAccountEndpoint(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Old")
	createAccount(t, s, "Current")

	rec := doJSON(t, s, http.MethodPost, "/api/accounts/"+account.ID+"/deactivate", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d", rec.Code)
	}

	active := decodeBody[[]core.Account](t, doJSON(t, s, http.MethodGet, "/api/accounts", nil))
	if len(active) != 1 || active[0].Name != "Current" {
		t.Errorf("active accounts = %+v", active)
	}

	all := decodeBody[[]core.Account](t, doJSON(t, s, http.MethodGet, "/api/accounts?include_inactive=true", nil))
	if len(all) != 2 {
		t.Errorf("all accounts = %d, want 2", len(all))
	}
}

func TestSummaryConversionAndFormatting(t *testing.T) {
	s := newTestServer(t)
	s.rates.Update(map[string]float64{"USD": 1, "EUR": 0.9})
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "100.00", "income", "Income", "2026-08-05"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/summary?year=2026&month=8&currency=EUR", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status = %d, body %s", rec.Code, rec.Body)
	}
	got := decodeBody[summaryResponse](t, rec)
	if got.Currency != "EUR" || got.Approximate {
		t.Errorf("currency/approximate = %s/%v, want EUR exact", got.Currency, got.Approximate)
	}
	if got.MonthlyIncome.Cents != 9000 {
		t.Errorf("monthly income = %d cents, want 9000", got.MonthlyIncome.Cents)
	}
	if got.MonthlyIncomeDisplay != "€90.00" {
		t.Errorf("income display = %q, want €90.00", got.MonthlyIncomeDisplay)
	}
	if got.TotalBalance.Cents != 9000 {
		t.Errorf("total balance = %d cents, want 9000", got.TotalBalance.Cents)
	}
}

func TestSummaryApproximateFallback(t *testing.T) {
	s := newTestServer(t)
	// The base rate is missing from the snapshot, so conversion falls back
	// to the single known target rate.
	s.rates.Update(map[string]float64{"EUR": 0.9})
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "10.00", "income", "Income", "2026-08-05"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body)
	}

	got := decodeBody[summaryResponse](t,
		doJSON(t, s, http.MethodGet, "/api/reports/summary?year=2026&month=8&currency=EUR", nil))
	if !got.Approximate {
		t.Error("fallback conversion not flagged approximate")
	}
	if got.Currency != "EUR" {
		t.Errorf("currency = %s, want EUR", got.Currency)
	}
}

func TestSummaryReflectsRateRefresh(t *testing.T) {
	s := newTestServer(t)
	s.rates.Update(map[string]float64{"USD": 1, "EUR": 0.9})
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "100.00", "income", "Income", "2026-08-05"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body)
	}

	got := decodeBody[summaryResponse](t,
		doJSON(t, s, http.MethodGet, "/api/reports/summary?year=2026&month=8&currency=EUR", nil))
	if got.MonthlyIncome.Cents != 9000 {
		t.Fatalf("income before refresh = %d cents, want 9000", got.MonthlyIncome.Cents)
	}

	// A refresh must not serve figures converted with the old rates.
	s.rates.Update(map[string]float64{"USD": 1, "EUR": 0.8})
	got = decodeBody[summaryResponse](t,
		doJSON(t, s, http.MethodGet, "/api/reports/summary?year=2026&month=8&currency=EUR", nil))
	if got.MonthlyIncome.Cents != 8000 {
		t.Errorf("income after refresh = %d cents, want 8000", got.MonthlyIncome.Cents)
	}
}

func TestSummaryRejectsBadMonth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/reports/summary?month=13", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	body := decodeBody[errorResponse](t, rec)
	if body.Field != "month" {
		t.Errorf("field = %q, want month", body.Field)
	}
}

func TestBudgetViewDerivedFields(t *testing.T) {
	s := newTestServer(t)
	account := createAccount(t, s, "Main")

	rec := doJSON(t, s, http.MethodPost, "/api/budgets", map[string]any{
		"category":        "Food & Dining",
		"limit_cents":     20000,
		"period":          "monthly",
		"alert_threshold": 80,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget: %d %s", rec.Code, rec.Body)
	}

	// The listing recomputes spent for the current month, so the
	// transaction must land in it.
	now := time.Now()
	rec = doJSON(t, s, http.MethodPost, "/api/transactions",
		transactionBody(account.ID, "180.00", "expense", "Food & Dining",
			core.NewDate(now.Year(), int(now.Month()), 15).String()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body)
	}

	views := decodeBody[[]budgetView](t, doJSON(t, s, http.MethodGet, "/api/budgets", nil))
	if len(views) != 1 {
		t.Fatalf("budgets = %d, want 1", len(views))
	}
	v := views[0]
	if v.Spent.Cents != 18000 {
		t.Fatalf("spent = %d, want 18000", v.Spent.Cents)
	}
	if v.Percent != 90 || v.Status != "near_limit" || !v.Alert {
		t.Errorf("derived fields = %+v", v)
	}
}

func TestGoalViewClampsDisplay(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/goals", map[string]any{
		"name":          "Vacation",
		"target_cents":  100000,
		"current_cents": 150000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: %d %s", rec.Code, rec.Body)
	}
	v := decodeBody[goalView](t, rec)
	if v.Percent != 150 {
		t.Errorf("raw percent = %v, want 150", v.Percent)
	}
	if v.DisplayPercent != 100 {
		t.Errorf("display percent = %v, want 100", v.DisplayPercent)
	}
	if !v.Completed || v.Status != "completed" {
		t.Errorf("completed/status = %v/%s", v.Completed, v.Status)
	}
}

func TestSettingsCurrency(t *testing.T) {
	s := newTestServer(t)

	got := decodeBody[currencySettings](t, doJSON(t, s, http.MethodGet, "/api/settings/currency", nil))
	if got.Currency != "USD" {
		t.Errorf("default currency = %s, want USD", got.Currency)
	}
	if len(got.Supported) == 0 {
		t.Error("supported currency list empty")
	}

	rec := doJSON(t, s, http.MethodPut, "/api/settings/currency", map[string]any{"currency": "eur"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[currencySettings](t, rec); got.Currency != "EUR" {
		t.Errorf("currency after put = %s, want uppercased EUR", got.Currency)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/settings/currency", map[string]any{"currency": "XXX"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid code: status = %d, want 422", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	categories := decodeBody[[]string](t, rec)
	if len(categories) == 0 {
		t.Error("categories list empty")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}
