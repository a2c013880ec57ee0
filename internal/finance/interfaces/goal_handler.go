package interfaces

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

type GoalServiceInterface interface {
	CreateGoal(ctx context.Context, userID string, input application.GoalInput) (*application.GoalView, error)
	GetGoal(ctx context.Context, userID, goalID string) (*application.GoalView, error)
	GetGoals(ctx context.Context, userID string) ([]application.GoalView, error)
	GetActiveGoals(ctx context.Context, userID string) ([]application.GoalView, error)
	GetCompletedGoals(ctx context.Context, userID string) ([]application.GoalView, error)
	UpdateGoal(ctx context.Context, userID, goalID string, changes application.GoalChanges) (*application.GoalView, error)
	UpdateProgress(ctx context.Context, userID, goalID string, currentAmount decimal.Decimal) (*application.GoalView, error)
	CompleteGoal(ctx context.Context, userID, goalID string) (*application.GoalView, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

type GoalHandler struct {
	service GoalServiceInterface
	errors  errorWriter
}

func NewGoalHandler(service GoalServiceInterface, logger *log.Logger) *GoalHandler {
	if service == nil {
		panic("goal service must not be nil")
	}
	return &GoalHandler{service: service, errors: errorWriter{logger: logger.WithComponent(log.ComponentHTTP)}}
}

func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    string          `json:"targetDate"`
		Type          string          `json:"type"`
		Priority      string          `json:"priority"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	targetDate, err := parseOptionalDate(req.TargetDate, "target date")
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	goal, err := h.service.CreateGoal(r.Context(), userID, application.GoalInput{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    targetDate,
		Type:          domain.GoalType(req.Type),
		Priority:      domain.Priority(req.Priority),
	})
	if err != nil {
		h.errors.write(w, r, "Failed to create goal", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Goal successfully created.", goal)
}

func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	goal, err := h.service.GetGoal(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve goal", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goal retrieved successfully.", goal)
}

func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.GetGoals)
}

func (h *GoalHandler) GetActiveGoals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.GetActiveGoals)
}

func (h *GoalHandler) GetCompletedGoals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.GetCompletedGoals)
}

func (h *GoalHandler) list(w http.ResponseWriter, r *http.Request, load func(context.Context, string) ([]application.GoalView, error)) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	goals, err := load(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve goals", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goals retrieved successfully.", goals)
}

func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name         *string          `json:"name"`
		TargetAmount *decimal.Decimal `json:"targetAmount"`
		TargetDate   *string          `json:"targetDate"`
		Priority     *domain.Priority `json:"priority"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	changes := application.GoalChanges{Name: req.Name, TargetAmount: req.TargetAmount, Priority: req.Priority}
	if req.TargetDate != nil {
		targetDate, err := parseOptionalDate(*req.TargetDate, "target date")
		if err != nil {
			h.errors.write(w, r, "Invalid request", err)
			return
		}
		changes.TargetDate = &targetDate
	}

	goal, err := h.service.UpdateGoal(r.Context(), userID, r.PathValue("id"), changes)
	if err != nil {
		h.errors.write(w, r, "Failed to update goal", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goal updated successfully.", goal)
}

func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		CurrentAmount *decimal.Decimal `json:"currentAmount"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	if req.CurrentAmount == nil {
		RespondError(w, http.StatusBadRequest, "Current amount is required")
		return
	}

	goal, err := h.service.UpdateProgress(r.Context(), userID, r.PathValue("id"), *req.CurrentAmount)
	if err != nil {
		h.errors.write(w, r, "Failed to update goal progress", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goal progress updated successfully.", goal)
}

func (h *GoalHandler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	goal, err := h.service.CompleteGoal(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to complete goal", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goal completed successfully.", goal)
}

func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteGoal(r.Context(), userID, r.PathValue("id")); err != nil {
		h.errors.write(w, r, "Failed to delete goal", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Goal deleted successfully.", nil)
}
