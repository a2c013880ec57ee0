package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

type BudgetService struct {
	budgets     domain.BudgetRepository
	categories  domain.CategoryRepository
	evaluator   budgetEvaluator
	invalidator CacheInvalidator
	logger      *log.Logger
	now         func() time.Time
}

// NewBudgetService builds the service. invalidator may be nil.
func NewBudgetService(
	budgets domain.BudgetRepository,
	categories domain.CategoryRepository,
	transactions domain.TransactionRepository,
	invalidator CacheInvalidator,
	logger *log.Logger,
) *BudgetService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &BudgetService{
		budgets:     budgets,
		categories:  categories,
		evaluator:   budgetEvaluator{transactions: transactions, categories: categories},
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentFinance),
		now:         time.Now,
	}
}

type BudgetInput struct {
	CategoryID     string              `json:"categoryId"`
	Amount         decimal.Decimal     `json:"amount"`
	Period         domain.BudgetPeriod `json:"period"`
	StartDate      time.Time           `json:"startDate"`
	EndDate        time.Time           `json:"endDate"`
	AlertEnabled   *bool               `json:"alertEnabled"`
	AlertThreshold *decimal.Decimal    `json:"alertThreshold"`
}

// BudgetChanges carries the editable fields of a budget. Nil fields are
// left untouched.
type BudgetChanges struct {
	Amount         *decimal.Decimal `json:"amount"`
	AlertEnabled   *bool            `json:"alertEnabled"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold"`
}

// BudgetView is a budget with its resolved category name.
type BudgetView struct {
	domain.Budget
	Category string `json:"category"`
	IsActive bool   `json:"isActive"`
}

func (s *BudgetService) view(ctx context.Context, budget domain.Budget, now time.Time) (BudgetView, error) {
	name, _, err := s.evaluator.categoryName(ctx, budget.CategoryID)
	if err != nil {
		return BudgetView{}, err
	}
	return BudgetView{Budget: budget, Category: name, IsActive: budget.IsActive(now)}, nil
}

func (s *BudgetService) views(ctx context.Context, op, userID string, budgets []domain.Budget) ([]BudgetView, error) {
	now := s.now().UTC()
	result := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		v, err := s.view(ctx, b, now)
		if err != nil {
			return nil, logFailure(ctx, s.logger, op, userID, err)
		}
		result = append(result, v)
	}
	return result, nil
}

func (s *BudgetService) CreateBudget(ctx context.Context, userID string, input BudgetInput) (*BudgetView, error) {
	budget := domain.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Period:     input.Period,
		StartDate:  input.StartDate.UTC(),
		EndDate:    input.EndDate.UTC(),
		Alerts:     domain.DefaultAlertSettings(),
	}
	if budget.Period == "" {
		budget.Period = domain.BudgetPeriodMonthly
	}
	if input.AlertEnabled != nil {
		budget.Alerts.Enabled = *input.AlertEnabled
	}
	if input.AlertThreshold != nil {
		budget.Alerts.Threshold = *input.AlertThreshold
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, budget.CategoryID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "create_budget", userID, err)
	}
	if !category.VisibleTo(userID) {
		return nil, financeErrors.ErrCategoryNotFound
	}

	_, err = s.budgets.FindByCategory(ctx, userID, budget.CategoryID)
	switch {
	case err == nil:
		return nil, financeErrors.ErrBudgetAlreadyExists
	case !financeErrors.IsNotFoundError(err):
		return nil, logFailure(ctx, s.logger, "create_budget", userID, err)
	}

	now := s.now().UTC()
	budget.ID = uuid.NewString()
	budget.CreatedAt = now
	if err := s.budgets.Save(ctx, budget); err != nil {
		return nil, logFailure(ctx, s.logger, "create_budget", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return &BudgetView{Budget: budget, Category: category.Name, IsActive: budget.IsActive(now)}, nil
}

// owned loads a budget and hides budgets of other users behind NotFound.
func (s *BudgetService) owned(ctx context.Context, op, userID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgets.FindByID(ctx, budgetID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, op, userID, err)
	}
	if budget.UserID != userID {
		return nil, financeErrors.ErrBudgetNotFound
	}
	return budget, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, userID, budgetID string) (*BudgetView, error) {
	budget, err := s.owned(ctx, "get_budget", userID, budgetID)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, *budget, s.now().UTC())
	if err != nil {
		return nil, logFailure(ctx, s.logger, "get_budget", userID, err)
	}
	return &v, nil
}

func (s *BudgetService) GetBudgets(ctx context.Context, userID string) ([]BudgetView, error) {
	budgets, err := s.budgets.FindByUser(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "list_budgets", userID, err)
	}
	return s.views(ctx, "list_budgets", userID, budgets)
}

func (s *BudgetService) GetActiveBudgets(ctx context.Context, userID string) ([]BudgetView, error) {
	budgets, err := s.budgets.FindActive(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, logFailure(ctx, s.logger, "active_budgets", userID, err)
	}
	return s.views(ctx, "active_budgets", userID, budgets)
}

// UpdateBudget changes the amount and alert settings. A changed amount or
// threshold re-arms the alert.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, budgetID string, changes BudgetChanges) (*BudgetView, error) {
	budget, err := s.owned(ctx, "update_budget", userID, budgetID)
	if err != nil {
		return nil, err
	}

	if changes.Amount != nil {
		budget.Amount = *changes.Amount
		budget.Alerts.Notified = false
	}
	if changes.AlertEnabled != nil {
		budget.Alerts.Enabled = *changes.AlertEnabled
	}
	if changes.AlertThreshold != nil {
		budget.Alerts.Threshold = *changes.AlertThreshold
		budget.Alerts.Notified = false
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	if err := s.budgets.Update(ctx, *budget); err != nil {
		return nil, logFailure(ctx, s.logger, "update_budget", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)

	v, err := s.view(ctx, *budget, s.now().UTC())
	if err != nil {
		return nil, logFailure(ctx, s.logger, "update_budget", userID, err)
	}
	return &v, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	if _, err := s.owned(ctx, "delete_budget", userID, budgetID); err != nil {
		return err
	}
	if err := s.budgets.Delete(ctx, budgetID); err != nil {
		return logFailure(ctx, s.logger, "delete_budget", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}

// CalculateBudgetUsage returns the spent share of the budget as a percentage
// rounded to 2 places, using the same rule as the dashboard budget status.
func (s *BudgetService) CalculateBudgetUsage(ctx context.Context, userID, budgetID string) (decimal.Decimal, error) {
	budget, err := s.owned(ctx, "budget_usage", userID, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	evaluation, err := s.evaluator.evaluate(ctx, *budget)
	if err != nil {
		return decimal.Zero, logFailure(ctx, s.logger, "budget_usage", userID, err)
	}
	return round2(evaluation.usage), nil
}
