package interfaces

import "net/http"

// Handlers groups the finance handlers served under /api/protected/.
type Handlers struct {
	Transactions *TransactionHandler
	Categories   *CategoryHandler
	Budgets      *BudgetHandler
	Goals        *GoalHandler
	Dashboard    *DashboardHandler
}

// RegisterRoutes adds every finance route to mux, each wrapped by protect.
func (h Handlers) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	h.registerDashboard(mux, protect)
	h.registerTransactions(mux, protect)
	h.registerCategories(mux, protect)
	h.registerBudgets(mux, protect)
	h.registerGoals(mux, protect)
}

type routeHelpers struct {
	handle func(pattern string, handler http.HandlerFunc)
	withID func(pattern, entity string, handler http.HandlerFunc)
}

func newRouteHelpers(mux *http.ServeMux, protect func(http.Handler) http.Handler) routeHelpers {
	return routeHelpers{
		handle: func(pattern string, handler http.HandlerFunc) {
			mux.Handle(pattern, protect(handler))
		},
		withID: func(pattern, entity string, handler http.HandlerFunc) {
			mux.Handle(pattern, protect(ValidatePathIDMiddleware(handler, entity)))
		},
	}
}

func (h Handlers) registerDashboard(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	handle := newRouteHelpers(mux, protect).handle
	handle("GET /api/protected/dashboard/summary", h.Dashboard.GetSummary)
	handle("GET /api/protected/dashboard/spending-by-category", h.Dashboard.GetSpendingByCategory)
	handle("GET /api/protected/dashboard/monthly-summary", h.Dashboard.GetMonthlySummary)
	handle("GET /api/protected/dashboard/cash-flow-projection", h.Dashboard.GetCashFlowProjection)
	handle("GET /api/protected/dashboard/goals-progress", h.Dashboard.GetGoalsProgress)
	handle("GET /api/protected/dashboard/budget-status", h.Dashboard.GetBudgetStatus)
	handle("GET /api/protected/dashboard/financial-health", h.Dashboard.GetFinancialHealth)
	handle("GET /api/protected/dashboard/quick-stats", h.Dashboard.GetQuickStats)
}

func (h Handlers) registerTransactions(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	r := newRouteHelpers(mux, protect)
	handle, withID := r.handle, r.withID
	handle("POST /api/protected/transactions", h.Transactions.CreateTransaction)
	handle("POST /api/protected/transactions/bulk", h.Transactions.CreateTransactionsBulk)
	handle("GET /api/protected/transactions", h.Transactions.GetUserTransactions)
	handle("GET /api/protected/transactions/balance", h.Transactions.GetBalance)
	handle("GET /api/protected/transactions/summary", h.Transactions.GetTransactionSummary)
	handle("GET /api/protected/transactions/export", h.Transactions.ExportTransactions)
	withID("GET /api/protected/transactions/{id}", "transaction", h.Transactions.GetTransaction)
	withID("PUT /api/protected/transactions/{id}", "transaction", h.Transactions.UpdateTransaction)
	withID("DELETE /api/protected/transactions/{id}", "transaction", h.Transactions.DeleteTransaction)
}

func (h Handlers) registerCategories(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	r := newRouteHelpers(mux, protect)
	handle, withID := r.handle, r.withID
	handle("POST /api/protected/categories", h.Categories.CreateCategory)
	handle("GET /api/protected/categories", h.Categories.GetCategories)
	handle("GET /api/protected/categories/defaults", h.Categories.GetDefaultCategories)
	withID("GET /api/protected/categories/{id}", "category", h.Categories.GetCategory)
	withID("PUT /api/protected/categories/{id}", "category", h.Categories.UpdateCategory)
	withID("DELETE /api/protected/categories/{id}", "category", h.Categories.DeleteCategory)
}

func (h Handlers) registerBudgets(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	r := newRouteHelpers(mux, protect)
	handle, withID := r.handle, r.withID
	handle("POST /api/protected/budgets", h.Budgets.CreateBudget)
	handle("GET /api/protected/budgets", h.Budgets.GetBudgets)
	handle("GET /api/protected/budgets/active", h.Budgets.GetActiveBudgets)
	withID("GET /api/protected/budgets/{id}", "budget", h.Budgets.GetBudget)
	withID("PUT /api/protected/budgets/{id}", "budget", h.Budgets.UpdateBudget)
	withID("DELETE /api/protected/budgets/{id}", "budget", h.Budgets.DeleteBudget)
	withID("GET /api/protected/budgets/{id}/usage", "budget", h.Budgets.GetBudgetUsage)
}

func (h Handlers) registerGoals(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	r := newRouteHelpers(mux, protect)
	handle, withID := r.handle, r.withID
	handle("POST /api/protected/goals", h.Goals.CreateGoal)
	handle("GET /api/protected/goals", h.Goals.GetGoals)
	handle("GET /api/protected/goals/active", h.Goals.GetActiveGoals)
	handle("GET /api/protected/goals/completed", h.Goals.GetCompletedGoals)
	withID("GET /api/protected/goals/{id}", "goal", h.Goals.GetGoal)
	withID("PUT /api/protected/goals/{id}", "goal", h.Goals.UpdateGoal)
	withID("DELETE /api/protected/goals/{id}", "goal", h.Goals.DeleteGoal)
	withID("PUT /api/protected/goals/{id}/progress", "goal", h.Goals.UpdateProgress)
	withID("POST /api/protected/goals/{id}/complete", "goal", h.Goals.CompleteGoal)
}
