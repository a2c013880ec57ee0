package interfaces

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

type BudgetServiceInterface interface {
	CreateBudget(ctx context.Context, userID string, input application.BudgetInput) (*application.BudgetView, error)
	GetBudget(ctx context.Context, userID, budgetID string) (*application.BudgetView, error)
	GetBudgets(ctx context.Context, userID string) ([]application.BudgetView, error)
	GetActiveBudgets(ctx context.Context, userID string) ([]application.BudgetView, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, changes application.BudgetChanges) (*application.BudgetView, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	CalculateBudgetUsage(ctx context.Context, userID, budgetID string) (decimal.Decimal, error)
}

type BudgetHandler struct {
	service BudgetServiceInterface
	errors  errorWriter
}

func NewBudgetHandler(service BudgetServiceInterface, logger *log.Logger) *BudgetHandler {
	if service == nil {
		panic("budget service must not be nil")
	}
	return &BudgetHandler{service: service, errors: errorWriter{logger: logger.WithComponent(log.ComponentHTTP)}}
}

func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		CategoryID     string           `json:"categoryId"`
		Amount         decimal.Decimal  `json:"amount"`
		Period         string           `json:"period"`
		StartDate      string           `json:"startDate"`
		EndDate        string           `json:"endDate"`
		AlertEnabled   *bool            `json:"alertEnabled"`
		AlertThreshold *decimal.Decimal `json:"alertThreshold"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	startDate, err := parseOptionalDate(req.StartDate, "start date")
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	endDate, err := parseOptionalDate(req.EndDate, "end date")
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	budget, err := h.service.CreateBudget(r.Context(), userID, application.BudgetInput{
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		Period:         domain.BudgetPeriod(req.Period),
		StartDate:      startDate,
		EndDate:        endDate,
		AlertEnabled:   req.AlertEnabled,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		h.errors.write(w, r, "Failed to create budget", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Budget successfully created.", budget)
}

func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	budget, err := h.service.GetBudget(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve budget", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budget retrieved successfully.", budget)
}

func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.GetBudgets)
}

func (h *BudgetHandler) GetActiveBudgets(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.GetActiveBudgets)
}

func (h *BudgetHandler) list(w http.ResponseWriter, r *http.Request, load func(context.Context, string) ([]application.BudgetView, error)) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	budgets, err := load(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve budgets", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budgets retrieved successfully.", budgets)
}

func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var changes application.BudgetChanges
	if err := decodeBody(r, &changes); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	budget, err := h.service.UpdateBudget(r.Context(), userID, r.PathValue("id"), changes)
	if err != nil {
		h.errors.write(w, r, "Failed to update budget", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budget updated successfully.", budget)
}

func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteBudget(r.Context(), userID, r.PathValue("id")); err != nil {
		h.errors.write(w, r, "Failed to delete budget", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budget deleted successfully.", nil)
}

func (h *BudgetHandler) GetBudgetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	usage, err := h.service.CalculateBudgetUsage(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to calculate budget usage", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Budget usage calculated successfully.", map[string]decimal.Decimal{"usagePercentage": usage})
}
