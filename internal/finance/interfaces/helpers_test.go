package interfaces

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinMind/internal/auth"
	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/finance/infrastructure"
	"github.com/sebuszqo/FinMind/internal/log"
)

const (
	testUserID  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	otherUserID = "0b6f2c1e-9a44-4d59-9f3e-2a1d5c7b8e90"
	foodID      = "5f0c3c0e-1c1a-4e6b-8a57-1f6b9e1d2a01"
	salaryID    = "5f0c3c0e-1c1a-4e6b-8a57-1f6b9e1d2a02"
	unknownID   = "00000000-0000-4000-8000-000000000000"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	mux          *http.ServeMux
	transactions *infrastructure.MockTransactionRepository
	categories   *infrastructure.MockCategoryRepository
	budgets      *infrastructure.MockBudgetRepository
	goals        *infrastructure.MockGoalRepository
}

// asUser stands in for the access token middleware.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.Discard()
	s := &testServer{
		transactions: &infrastructure.MockTransactionRepository{},
		categories: &infrastructure.MockCategoryRepository{Categories: []domain.Category{
			{ID: foodID, Name: "Food", Type: domain.TransactionTypeExpense, Color: "#FF6B6B", Icon: "🍔", IsDefault: true},
			{ID: salaryID, Name: "Salary", Type: domain.TransactionTypeIncome, Color: "#4ECDC4", Icon: "💰", IsDefault: true},
		}},
		budgets: &infrastructure.MockBudgetRepository{},
		goals:   &infrastructure.MockGoalRepository{},
	}

	dashboard := application.NewDashboardService(s.transactions, s.categories, s.budgets, s.goals, nil, logger)
	handlers := Handlers{
		Transactions: NewTransactionHandler(
			application.NewTransactionService(s.transactions, dashboard, logger),
			application.NewExportService(s.transactions, logger),
			logger,
		),
		Categories: NewCategoryHandler(application.NewCategoryService(s.categories, dashboard, logger), logger),
		Budgets:    NewBudgetHandler(application.NewBudgetService(s.budgets, s.categories, s.transactions, dashboard, logger), logger),
		Goals:      NewGoalHandler(application.NewGoalService(s.goals, dashboard, logger), logger),
		Dashboard:  NewDashboardHandler(dashboard, logger),
	}

	s.mux = http.NewServeMux()
	handlers.RegisterRoutes(s.mux, asUser(testUserID))
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
