package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

const UnknownCategoryName = "Unknown category"

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// round2 rounds half to even.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// budgetEvaluator computes how much of a budget has been spent. Shared by the
// dashboard, the budget service and the alert sweep so they agree.
type budgetEvaluator struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
}

type budgetEvaluation struct {
	status domain.BudgetStatus
	// usage is the unrounded percentage the flags were derived from.
	usage decimal.Decimal
}

func (e budgetEvaluator) categoryName(ctx context.Context, categoryID string) (string, bool, error) {
	category, err := e.categories.FindByID(ctx, categoryID)
	if err != nil {
		if financeErrors.IsNotFoundError(err) {
			return UnknownCategoryName, false, nil
		}
		return "", false, err
	}
	return category.Name, true, nil
}

func (e budgetEvaluator) evaluate(ctx context.Context, budget domain.Budget) (budgetEvaluation, error) {
	name, found, err := e.categoryName(ctx, budget.CategoryID)
	if err != nil {
		return budgetEvaluation{}, err
	}

	spent := decimal.Zero
	if found {
		spent, err = e.transactions.SumAmountByCategory(ctx, budget.UserID, domain.TransactionTypeExpense, name, budget.Window())
		if err != nil {
			return budgetEvaluation{}, err
		}
	}

	usage := percentOf(spent, budget.Amount)
	isOver := usage.GreaterThan(hundred)
	isNear := !isOver && usage.GreaterThanOrEqual(budget.Alerts.Threshold)

	remaining := budget.Amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return budgetEvaluation{
		status: domain.BudgetStatus{
			BudgetID:        budget.ID,
			Category:        name,
			BudgetAmount:    budget.Amount,
			SpentAmount:     spent,
			RemainingAmount: remaining,
			UsagePercentage: round2(usage),
			IsOverBudget:    isOver,
			IsNearLimit:     isNear,
		},
		usage: usage,
	}, nil
}
