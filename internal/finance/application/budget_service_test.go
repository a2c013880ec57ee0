package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/finance/infrastructure"
	"github.com/sebuszqo/FinMind/internal/log"
)

type budgetFixture struct {
	service      *BudgetService
	budgets      *infrastructure.MockBudgetRepository
	transactions *infrastructure.MockTransactionRepository
	invalidator  *spyInvalidator
}

func newBudgetFixture() budgetFixture {
	f := budgetFixture{
		budgets:      &infrastructure.MockBudgetRepository{},
		transactions: &infrastructure.MockTransactionRepository{},
		invalidator:  &spyInvalidator{},
	}
	f.service = NewBudgetService(f.budgets, seededCategories(), f.transactions, f.invalidator, log.Discard())
	f.service.now = fixedClock
	return f
}

func validBudgetInput() BudgetInput {
	month := domain.MonthRange(fixedNow)
	return BudgetInput{CategoryID: "food", Amount: d("500"), StartDate: month.From, EndDate: month.To}
}

func TestCreateBudget(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := newBudgetFixture()
		view, err := f.service.CreateBudget(context.Background(), "u1", validBudgetInput())
		require.NoError(t, err)

		assert.Equal(t, "Food", view.Category)
		assert.True(t, view.IsActive)
		assert.Equal(t, domain.BudgetPeriodMonthly, view.Period)
		assert.True(t, view.Alerts.Enabled)
		assertDecimal(t, "80", view.Alerts.Threshold)
		assert.False(t, view.Alerts.Notified)
		assert.Len(t, f.budgets.Budgets, 1)
		assert.Equal(t, []string{"u1"}, f.invalidator.calls())
	})

	t.Run("explicit alert settings", func(t *testing.T) {
		f := newBudgetFixture()
		input := validBudgetInput()
		disabled, threshold := false, decimal.NewFromInt(95)
		input.AlertEnabled, input.AlertThreshold = &disabled, &threshold

		view, err := f.service.CreateBudget(context.Background(), "u1", input)
		require.NoError(t, err)
		assert.False(t, view.Alerts.Enabled)
		assertDecimal(t, "95", view.Alerts.Threshold)
	})

	t.Run("second budget for category", func(t *testing.T) {
		f := newBudgetFixture()
		_, err := f.service.CreateBudget(context.Background(), "u1", validBudgetInput())
		require.NoError(t, err)
		_, err = f.service.CreateBudget(context.Background(), "u1", validBudgetInput())
		assert.ErrorIs(t, err, financeErrors.ErrBudgetAlreadyExists)

		// another user may budget the same default category
		_, err = f.service.CreateBudget(context.Background(), "u2", validBudgetInput())
		assert.NoError(t, err)
	})

	t.Run("unknown or foreign category", func(t *testing.T) {
		f := newBudgetFixture()
		input := validBudgetInput()
		input.CategoryID = "missing"
		_, err := f.service.CreateBudget(context.Background(), "u1", input)
		assert.ErrorIs(t, err, financeErrors.ErrCategoryNotFound)

		input.CategoryID = "other"
		_, err = f.service.CreateBudget(context.Background(), "u1", input)
		assert.ErrorIs(t, err, financeErrors.ErrCategoryNotFound)
	})

	invalid := map[string]func(*BudgetInput){
		"zero amount":     func(in *BudgetInput) { in.Amount = decimal.Zero },
		"end before start": func(in *BudgetInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) },
		"bad period":       func(in *BudgetInput) { in.Period = "daily" },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			f := newBudgetFixture()
			input := validBudgetInput()
			mutate(&input)
			_, err := f.service.CreateBudget(context.Background(), "u1", input)
			assert.True(t, financeErrors.IsValidationError(err), "got %v", err)
			assert.Empty(t, f.budgets.Budgets)
		})
	}
}

func TestBudgetViews(t *testing.T) {
	f := newBudgetFixture()
	month := domain.MonthRange(fixedNow)
	f.budgets.Budgets = []domain.Budget{
		{ID: "b1", UserID: "u1", CategoryID: "food", Amount: d("100"), StartDate: month.From, EndDate: month.To},
		{ID: "b2", UserID: "u1", CategoryID: "gone", Amount: d("100"), StartDate: month.From.AddDate(-1, 0, 0), EndDate: month.From.AddDate(0, 0, -1)},
		{ID: "b3", UserID: "u2", CategoryID: "food", Amount: d("100"), StartDate: month.From, EndDate: month.To},
	}
	ctx := context.Background()

	all, err := f.service.GetBudgets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Food", all[0].Category)
	assert.Equal(t, UnknownCategoryName, all[1].Category)
	assert.False(t, all[1].IsActive)

	active, err := f.service.GetActiveBudgets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b1", active[0].ID)

	_, err = f.service.GetBudget(ctx, "u1", "b3")
	assert.ErrorIs(t, err, financeErrors.ErrBudgetNotFound)
}

func TestUpdateBudget_RearmsAlert(t *testing.T) {
	f := newBudgetFixture()
	month := domain.MonthRange(fixedNow)
	f.budgets.Budgets = []domain.Budget{{
		ID: "b1", UserID: "u1", CategoryID: "food", Amount: d("100"), Period: domain.BudgetPeriodMonthly,
		StartDate: month.From, EndDate: month.To,
		Alerts: domain.AlertSettings{Enabled: true, Threshold: d("80"), Notified: true},
	}}

	amount := d("250")
	view, err := f.service.UpdateBudget(context.Background(), "u1", "b1", BudgetChanges{Amount: &amount})
	require.NoError(t, err)
	assertDecimal(t, "250", view.Amount)
	assert.False(t, f.budgets.Budgets[0].Alerts.Notified)

	zero := decimal.Zero
	_, err = f.service.UpdateBudget(context.Background(), "u1", "b1", BudgetChanges{Amount: &zero})
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = f.service.UpdateBudget(context.Background(), "u2", "b1", BudgetChanges{Amount: &amount})
	assert.ErrorIs(t, err, financeErrors.ErrBudgetNotFound)
}

func TestDeleteBudget(t *testing.T) {
	f := newBudgetFixture()
	f.budgets.Budgets = []domain.Budget{{ID: "b1", UserID: "u1"}}

	assert.ErrorIs(t, f.service.DeleteBudget(context.Background(), "u1", "nope"), financeErrors.ErrBudgetNotFound)
	require.NoError(t, f.service.DeleteBudget(context.Background(), "u1", "b1"))
	assert.Empty(t, f.budgets.Budgets)
}

func TestCalculateBudgetUsage(t *testing.T) {
	f := newBudgetFixture()
	month := domain.MonthRange(fixedNow)
	f.budgets.Budgets = []domain.Budget{{
		ID: "b1", UserID: "u1", CategoryID: "food", Amount: d("300"), StartDate: month.From, EndDate: month.To,
		Alerts: domain.DefaultAlertSettings(),
	}}
	f.transactions.Transactions = []domain.Transaction{
		{UserID: "u1", Type: domain.TransactionTypeExpense, Category: "Food", Amount: d("100"), Date: fixedNow, Status: domain.TransactionStatusCompleted},
		{UserID: "u1", Type: domain.TransactionTypeExpense, Category: "Food", Amount: d("900"), Date: month.From.AddDate(0, 0, -1), Status: domain.TransactionStatusCompleted},
		{UserID: "u1", Type: domain.TransactionTypeExpense, Category: "Food", Amount: d("900"), Date: fixedNow, Status: domain.TransactionStatusPending},
	}

	usage, err := f.service.CalculateBudgetUsage(context.Background(), "u1", "b1")
	require.NoError(t, err)
	assertDecimal(t, "33.33", usage)

	_, err = f.service.CalculateBudgetUsage(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, financeErrors.ErrBudgetNotFound)

	f.transactions.Err = errors.New("timeout")
	_, err = f.service.CalculateBudgetUsage(context.Background(), "u1", "b1")
	assert.EqualError(t, err, "timeout")
}
