package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

type DashboardServiceInterface interface {
	GetDashboardSummary(ctx context.Context, userID string) (domain.DashboardSummary, error)
	GetSpendingByCategory(ctx context.Context, userID string, period domain.DateRange) ([]domain.CategorySpending, error)
	GetMonthlySummary(ctx context.Context, userID string, monthsBack int) ([]domain.MonthlySummary, error)
	GetCashFlowProjection(ctx context.Context, userID string, daysAhead int) ([]domain.CashFlowProjection, error)
	GetGoalsProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error)
	GetBudgetStatus(ctx context.Context, userID string) ([]domain.BudgetStatus, error)
	GetFinancialHealthMetrics(ctx context.Context, userID string) (domain.FinancialHealth, error)
	GetQuickStats(ctx context.Context, userID string) (domain.QuickStats, error)
}

type DashboardHandler struct {
	service DashboardServiceInterface
	errors  errorWriter
}

func NewDashboardHandler(service DashboardServiceInterface, logger *log.Logger) *DashboardHandler {
	if service == nil {
		panic("dashboard service must not be nil")
	}
	return &DashboardHandler{service: service, errors: errorWriter{logger: logger.WithComponent(log.ComponentHTTP)}}
}

func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.service.GetDashboardSummary(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve dashboard summary", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Dashboard summary retrieved successfully.", summary)
}

func (h *DashboardHandler) GetSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	period, err := parseDateRange(r)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	spending, err := h.service.GetSpendingByCategory(r.Context(), userID, period)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve spending by category", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Spending by category retrieved successfully.", spending)
}

func (h *DashboardHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	months, err := parsePositiveInt(r, "months", application.DefaultMonthsBack)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	summary, err := h.service.GetMonthlySummary(r.Context(), userID, months)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve monthly summary", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Monthly summary retrieved successfully.", summary)
}

func (h *DashboardHandler) GetCashFlowProjection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, err := parsePositiveInt(r, "days", application.DefaultDaysAhead)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	projection, err := h.service.GetCashFlowProjection(r.Context(), userID, days)
	if err != nil {
		h.errors.write(w, r, "Failed to project cash flow", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Cash flow projection retrieved successfully.", projection)
}

func (h *DashboardHandler) GetGoalsProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	progress, err := h.service.GetGoalsProgress(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve goals progress", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goals progress retrieved successfully.", progress)
}

func (h *DashboardHandler) GetBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := h.service.GetBudgetStatus(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve budget status", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budget status retrieved successfully.", status)
}

func (h *DashboardHandler) GetFinancialHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	metrics, err := h.service.GetFinancialHealthMetrics(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve financial health", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Financial health retrieved successfully.", metrics)
}

func (h *DashboardHandler) GetQuickStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.service.GetQuickStats(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve quick stats", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Quick stats retrieved successfully.", stats)
}
