package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

type GoalService struct {
	repo        domain.GoalRepository
	invalidator CacheInvalidator
	logger      *log.Logger
	now         func() time.Time
}

// NewGoalService builds the service. invalidator may be nil.
func NewGoalService(repo domain.GoalRepository, invalidator CacheInvalidator, logger *log.Logger) *GoalService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &GoalService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentFinance),
		now:         time.Now,
	}
}

// GoalView is a goal with its derived progress fields.
type GoalView struct {
	domain.Goal
	Progress      decimal.Decimal `json:"progress"`
	DaysRemaining int             `json:"daysRemaining"`
	IsNearDueDate bool            `json:"isNearDueDate"`
}

func newGoalView(goal domain.Goal, now time.Time) GoalView {
	return GoalView{
		Goal:          goal,
		Progress:      round2(goal.Progress()),
		DaysRemaining: goal.DaysRemaining(now),
		IsNearDueDate: goal.IsNearDueDate(now),
	}
}

func (s *GoalService) views(goals []domain.Goal) []GoalView {
	now := s.now().UTC()
	result := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		result = append(result, newGoalView(g, now))
	}
	return result
}

type GoalInput struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    time.Time       `json:"targetDate"`
	Type          domain.GoalType `json:"type"`
	Priority      domain.Priority `json:"priority"`
}

// GoalChanges carries the editable fields of a goal. Nil fields are left
// untouched.
type GoalChanges struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	TargetDate   *time.Time       `json:"targetDate"`
	Priority     *domain.Priority `json:"priority"`
}

func (s *GoalService) CreateGoal(ctx context.Context, userID string, input GoalInput) (*GoalView, error) {
	now := s.now().UTC()
	goal := domain.Goal{
		UserID:        userID,
		Name:          input.Name,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		TargetDate:    input.TargetDate.UTC(),
		Type:          input.Type,
		Priority:      input.Priority,
	}
	if goal.Type == "" {
		goal.Type = domain.GoalTypeSavings
	}
	if goal.Priority == "" {
		goal.Priority = domain.PriorityMedium
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if !goal.TargetDate.After(now) {
		return nil, financeErrors.ErrGoalTargetDateInPast
	}

	goal.ID = uuid.NewString()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.IsCompleted = goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount)
	if err := s.repo.Save(ctx, goal); err != nil {
		return nil, logFailure(ctx, s.logger, "create_goal", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)

	view := newGoalView(goal, now)
	return &view, nil
}

func (s *GoalService) owned(ctx context.Context, op, userID, goalID string) (*domain.Goal, error) {
	goal, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, op, userID, err)
	}
	if goal.UserID != userID {
		return nil, financeErrors.ErrGoalNotFound
	}
	return goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID string) (*GoalView, error) {
	goal, err := s.owned(ctx, "get_goal", userID, goalID)
	if err != nil {
		return nil, err
	}
	view := newGoalView(*goal, s.now().UTC())
	return &view, nil
}

func (s *GoalService) GetGoals(ctx context.Context, userID string) ([]GoalView, error) {
	goals, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "list_goals", userID, err)
	}
	return s.views(goals), nil
}

func (s *GoalService) GetActiveGoals(ctx context.Context, userID string) ([]GoalView, error) {
	goals, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "active_goals", userID, err)
	}
	return s.views(goals), nil
}

func (s *GoalService) GetCompletedGoals(ctx context.Context, userID string) ([]GoalView, error) {
	goals, err := s.repo.FindCompleted(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "completed_goals", userID, err)
	}
	return s.views(goals), nil
}

func (s *GoalService) save(ctx context.Context, op string, goal *domain.Goal) (*GoalView, error) {
	now := s.now().UTC()
	goal.UpdatedAt = now
	if err := s.repo.Update(ctx, *goal); err != nil {
		return nil, logFailure(ctx, s.logger, op, goal.UserID, err)
	}
	s.invalidator.InvalidateUser(ctx, goal.UserID)
	view := newGoalView(*goal, now)
	return &view, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID string, changes GoalChanges) (*GoalView, error) {
	goal, err := s.owned(ctx, "update_goal", userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.IsCompleted {
		return nil, financeErrors.ErrGoalCompleted
	}

	if changes.Name != nil {
		goal.Name = strings.TrimSpace(*changes.Name)
	}
	if changes.TargetAmount != nil {
		goal.TargetAmount = *changes.TargetAmount
	}
	if changes.Priority != nil {
		goal.Priority = *changes.Priority
	}
	if changes.TargetDate != nil {
		if !changes.TargetDate.After(s.now()) {
			return nil, financeErrors.ErrGoalTargetDateInPast
		}
		goal.TargetDate = changes.TargetDate.UTC()
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return s.save(ctx, "update_goal", goal)
}

// UpdateProgress sets the saved amount and completes the goal once it
// reaches the target.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, goalID string, currentAmount decimal.Decimal) (*GoalView, error) {
	if currentAmount.IsNegative() {
		return nil, financeErrors.NewValidationError("Current amount must not be negative")
	}
	if err := domain.CheckMoney("Current amount", currentAmount); err != nil {
		return nil, err
	}
	goal, err := s.owned(ctx, "update_goal_progress", userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.IsCompleted {
		return nil, financeErrors.ErrGoalAlreadyCompleted
	}

	goal.CurrentAmount = currentAmount
	if currentAmount.GreaterThanOrEqual(goal.TargetAmount) {
		goal.IsCompleted = true
	}
	return s.save(ctx, "update_goal_progress", goal)
}

// CompleteGoal marks the goal reached and tops up the saved amount to the target.
func (s *GoalService) CompleteGoal(ctx context.Context, userID, goalID string) (*GoalView, error) {
	goal, err := s.owned(ctx, "complete_goal", userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.IsCompleted {
		return nil, financeErrors.ErrGoalAlreadyCompleted
	}
	goal.CurrentAmount = goal.TargetAmount
	goal.IsCompleted = true
	return s.save(ctx, "complete_goal", goal)
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if _, err := s.owned(ctx, "delete_goal", userID, goalID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, goalID); err != nil {
		return logFailure(ctx, s.logger, "delete_goal", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}
