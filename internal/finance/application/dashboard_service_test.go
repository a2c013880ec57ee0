package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinMind/internal/cache"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/finance/infrastructure"
	"github.com/sebuszqo/FinMind/internal/log"
)

type dashboardFixture struct {
	service      *DashboardService
	transactions *infrastructure.MockTransactionRepository
	categories   *infrastructure.MockCategoryRepository
	budgets      *infrastructure.MockBudgetRepository
	goals        *infrastructure.MockGoalRepository
}

func newDashboardFixture(resultCache cache.Cache) dashboardFixture {
	f := dashboardFixture{
		transactions: &infrastructure.MockTransactionRepository{},
		categories:   seededCategories(),
		budgets:      &infrastructure.MockBudgetRepository{},
		goals:        &infrastructure.MockGoalRepository{},
	}
	f.service = NewDashboardService(f.transactions, f.categories, f.budgets, f.goals, resultCache, log.Discard())
	f.service.now = fixedClock
	return f
}

func (f dashboardFixture) add(t domain.TransactionType, category, amount string, date time.Time) {
	f.transactions.Transactions = append(f.transactions.Transactions, domain.Transaction{
		ID: category + amount, UserID: "u1", Type: t, Category: category, Amount: d(amount),
		Date: date, Status: domain.TransactionStatusCompleted,
	})
}

func (f dashboardFixture) expense(category, amount string, date time.Time) {
	f.add(domain.TransactionTypeExpense, category, amount, date)
}

func (f dashboardFixture) income(amount string, date time.Time) {
	f.add(domain.TransactionTypeIncome, "Salary", amount, date)
}

func TestGetSpendingByCategory(t *testing.T) {
	f := newDashboardFixture(nil)
	f.expense("Food", "300", fixedNow)
	f.expense("Transport", "200", fixedNow)
	f.expense("Rent", "500", fixedNow)
	f.income("9999", fixedNow)

	spending, err := f.service.GetSpendingByCategory(context.Background(), "u1", domain.MonthRange(fixedNow))
	require.NoError(t, err)
	require.Len(t, spending, 3)

	assert.Equal(t, "Rent", spending[0].Category)
	assertDecimal(t, "50", spending[0].Percentage)
	assert.Equal(t, FallbackCategoryColor, spending[0].Color)
	assert.Equal(t, FallbackCategoryIcon, spending[0].Icon)

	assert.Equal(t, "Food", spending[1].Category)
	assertDecimal(t, "30", spending[1].Percentage)
	assertDecimal(t, "300", spending[1].Amount)

	assert.Equal(t, "Transport", spending[2].Category)
	assertDecimal(t, "20", spending[2].Percentage)
}

func TestGetSpendingByCategory_PercentagesSumToHundred(t *testing.T) {
	f := newDashboardFixture(nil)
	f.expense("A", "1", fixedNow)
	f.expense("B", "1", fixedNow)
	f.expense("C", "1", fixedNow)

	spending, err := f.service.GetSpendingByCategory(context.Background(), "u1", domain.DateRange{})
	require.NoError(t, err)

	total := d("0")
	for _, s := range spending {
		assertDecimal(t, "33.33", s.Percentage)
		total = total.Add(s.Percentage)
	}
	assert.True(t, total.Sub(d("100")).Abs().LessThanOrEqual(d("0.03")), total.String())
	// ties are ordered by name
	assert.Equal(t, []string{"A", "B", "C"}, []string{spending[0].Category, spending[1].Category, spending[2].Category})
}

func TestGetSpendingByCategory_Empty(t *testing.T) {
	f := newDashboardFixture(nil)
	spending, err := f.service.GetSpendingByCategory(context.Background(), "u1", domain.DateRange{})
	require.NoError(t, err)
	assert.NotNil(t, spending)
	assert.Empty(t, spending)
}

func TestGetMonthlySummary(t *testing.T) {
	f := newDashboardFixture(nil)
	f.income("5000", fixedNow)
	f.expense("Food", "3500", fixedNow)
	f.income("800", fixedNow.AddDate(0, -2, 0))

	months, err := f.service.GetMonthlySummary(context.Background(), "u1", 1)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, 2024, months[0].Year)
	assert.Equal(t, 5, months[0].Month)
	assertDecimal(t, "1500", months[0].Balance)

	months, err = f.service.GetMonthlySummary(context.Background(), "u1", 3)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, 3, months[0].Month)
	assertDecimal(t, "800", months[0].Income)
	assertDecimal(t, "0", months[1].Balance)

	_, err = f.service.GetMonthlySummary(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, financeErrors.ErrInvalidMonthsBack)
}

func TestGetMonthlySummary_YearBoundary(t *testing.T) {
	f := newDashboardFixture(nil)
	f.service.now = func() time.Time { return time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC) }

	months, err := f.service.GetMonthlySummary(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2023, months[0].Year)
	assert.Equal(t, 12, months[0].Month)
	assert.Equal(t, 2024, months[2].Year)
	assert.Equal(t, 2, months[2].Month)
}

func TestGetCashFlowProjection(t *testing.T) {
	f := newDashboardFixture(nil)
	// 90 day averages of 100 income and 50 expense per day
	f.income("9000", fixedNow.AddDate(0, 0, -1))
	f.expense("Food", "4500", fixedNow.AddDate(0, 0, -1))
	f.income("1000", fixedNow.AddDate(-1, 0, 0))

	projection, err := f.service.GetCashFlowProjection(context.Background(), "u1", 1)
	require.NoError(t, err)
	require.Len(t, projection, 1)
	assert.Equal(t, time.Thursday, projection[0].Date.Weekday())
	assertDecimal(t, "100", projection[0].ExpectedIncome)
	assertDecimal(t, "50", projection[0].ExpectedExpenses)
	assertDecimal(t, "5550", projection[0].ProjectedBalance)

	friday := fixedNow.AddDate(0, 0, 2)
	f.service.now = func() time.Time { return friday }
	projection, err = f.service.GetCashFlowProjection(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, projection[0].Date.Weekday())
	assertDecimal(t, "60", projection[0].ExpectedExpenses)
	assertDecimal(t, "5540", projection[0].ProjectedBalance)

	_, err = f.service.GetCashFlowProjection(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, financeErrors.ErrInvalidDaysAhead)
}

func TestProjectCashFlow_Accumulates(t *testing.T) {
	// Wednesday start: Thu, Fri, Sat, Sun, Mon
	projection := projectCashFlow(fixedNow, d("0"), d("10"), d("5"), 5)
	require.Len(t, projection, 5)
	assertDecimal(t, "5", projection[0].ProjectedBalance)
	assertDecimal(t, "10", projection[1].ProjectedBalance)
	assertDecimal(t, "14", projection[2].ProjectedBalance)
	assertDecimal(t, "18", projection[3].ProjectedBalance)
	assertDecimal(t, "23", projection[4].ProjectedBalance)
}

func TestGetGoalsProgress(t *testing.T) {
	f := newDashboardFixture(nil)
	f.goals.Goals = []domain.Goal{
		{ID: "half", UserID: "u1", Name: "Half", TargetAmount: d("1000"), CurrentAmount: d("500"),
			TargetDate: fixedNow.AddDate(0, 0, 100), CreatedAt: fixedNow.AddDate(0, 0, -10)},
		{ID: "slow", UserID: "u1", Name: "Slow", TargetAmount: d("1000"), CurrentAmount: d("10"),
			TargetDate: fixedNow.AddDate(0, 0, 10), CreatedAt: fixedNow.AddDate(0, 0, -10)},
		{ID: "overdue", UserID: "u1", Name: "Overdue", TargetAmount: d("100"), CurrentAmount: d("0"),
			TargetDate: fixedNow.AddDate(0, 0, -3), CreatedAt: fixedNow},
		{ID: "done", UserID: "u1", Name: "Done", TargetAmount: d("1"), CurrentAmount: d("1"),
			TargetDate: fixedNow, IsCompleted: true},
	}

	progress, err := f.service.GetGoalsProgress(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, progress, 3)

	assert.Equal(t, "half", progress[0].GoalID)
	assertDecimal(t, "50", progress[0].ProgressPercentage)
	assert.Equal(t, 100, progress[0].DaysRemaining)
	// 50/day saved against a target pace of 10/day
	assert.True(t, progress[0].IsOnTrack)

	assert.Equal(t, "slow", progress[1].GoalID)
	assert.False(t, progress[1].IsOnTrack)

	assert.Equal(t, "overdue", progress[2].GoalID)
	assert.Equal(t, 1, progress[2].DaysRemaining)
}

func TestGetBudgetStatus(t *testing.T) {
	f := newDashboardFixture(nil)
	month := domain.MonthRange(fixedNow)
	budget := func(id, categoryID, amount string) domain.Budget {
		return domain.Budget{ID: id, UserID: "u1", CategoryID: categoryID, Amount: d(amount),
			StartDate: month.From, EndDate: month.To, Alerts: domain.DefaultAlertSettings()}
	}
	f.budgets.Budgets = []domain.Budget{
		budget("over", "food", "1000"),
		budget("zero", "salary", "0"),
		budget("near", "hobby", "100"),
		budget("orphan", "deleted", "50"),
	}
	f.expense("Food", "1200", fixedNow)
	f.expense("Hobby", "85", fixedNow)
	f.expense("Salary", "10", fixedNow)

	statuses, err := f.service.GetBudgetStatus(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	byID := map[string]domain.BudgetStatus{}
	for _, s := range statuses {
		byID[s.BudgetID] = s
	}

	over := byID["over"]
	assertDecimal(t, "120", over.UsagePercentage)
	assert.True(t, over.IsOverBudget)
	assert.False(t, over.IsNearLimit)
	assertDecimal(t, "0", over.RemainingAmount)

	zero := byID["zero"]
	assertDecimal(t, "0", zero.UsagePercentage)
	assert.False(t, zero.IsOverBudget)
	assert.False(t, zero.IsNearLimit)

	near := byID["near"]
	assert.True(t, near.IsNearLimit)
	assertDecimal(t, "15", near.RemainingAmount)

	orphan := byID["orphan"]
	assert.Equal(t, UnknownCategoryName, orphan.Category)
	assertDecimal(t, "0", orphan.SpentAmount)

	assert.Equal(t, "over", statuses[0].BudgetID)
}

func TestGetFinancialHealthMetrics(t *testing.T) {
	t.Run("ratios", func(t *testing.T) {
		f := newDashboardFixture(nil)
		f.income("4000", fixedNow)
		f.expense("Food", "1000", fixedNow)
		f.income("2000", fixedNow.AddDate(-1, 0, 0))

		health, err := f.service.GetFinancialHealthMetrics(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, health, 4)
		assertDecimal(t, "75", health[domain.MetricSavingsRate])
		assertDecimal(t, "25", health[domain.MetricMonthlyExpenseToIncomeRatio])
		assertDecimal(t, "5", health[domain.MetricEmergencyFundMonths])
		assertDecimal(t, "5000", health[domain.MetricNetWorth])
	})

	t.Run("zero income", func(t *testing.T) {
		f := newDashboardFixture(nil)
		health, err := f.service.GetFinancialHealthMetrics(context.Background(), "u1")
		require.NoError(t, err)
		assertDecimal(t, "0", health[domain.MetricSavingsRate])
		assertDecimal(t, "0", health[domain.MetricEmergencyFundMonths])
		assertDecimal(t, "0", health[domain.MetricMonthlyExpenseToIncomeRatio])
	})
}

func TestGetDashboardSummary(t *testing.T) {
	f := newDashboardFixture(nil)
	month := domain.MonthRange(fixedNow)
	f.income("3000", fixedNow)
	f.expense("Food", "600", fixedNow)
	f.income("1000", fixedNow.AddDate(0, -1, 0))
	f.budgets.Budgets = []domain.Budget{
		{ID: "b1", UserID: "u1", CategoryID: "food", Amount: d("800"), StartDate: month.From, EndDate: month.To},
		{ID: "b2", UserID: "u1", CategoryID: "hobby", Amount: d("400"), StartDate: month.From, EndDate: month.To},
	}
	f.goals.Goals = []domain.Goal{
		{ID: "g1", UserID: "u1"},
		{ID: "g2", UserID: "u1", IsCompleted: true},
		{ID: "g3", UserID: "u1", IsCompleted: true},
	}

	summary, err := f.service.GetDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assertDecimal(t, "3400", summary.TotalBalance)
	assertDecimal(t, "3000", summary.TotalIncome)
	assertDecimal(t, "600", summary.TotalExpenses)
	assertDecimal(t, "1200", summary.MonthlyBudget)
	assertDecimal(t, "50", summary.BudgetUsagePercentage)
	assert.Equal(t, 3, summary.TotalTransactions)
	assert.Equal(t, 1, summary.ActiveGoals)
	assert.Equal(t, 2, summary.CompletedGoals)

	again, err := f.service.GetDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestDashboard_StoreErrorPropagates(t *testing.T) {
	f := newDashboardFixture(nil)
	storeErr := errors.New("connection refused")
	f.transactions.Err = storeErr

	_, err := f.service.GetDashboardSummary(context.Background(), "u1")
	assert.ErrorIs(t, err, storeErr)
	_, err = f.service.GetSpendingByCategory(context.Background(), "u1", domain.DateRange{})
	assert.ErrorIs(t, err, storeErr)
	_, err = f.service.GetMonthlySummary(context.Background(), "u1", 2)
	assert.ErrorIs(t, err, storeErr)
	_, err = f.service.GetCashFlowProjection(context.Background(), "u1", 2)
	assert.ErrorIs(t, err, storeErr)
	_, err = f.service.GetFinancialHealthMetrics(context.Background(), "u1")
	assert.ErrorIs(t, err, storeErr)
	_, err = f.service.GetQuickStats(context.Background(), "u1")
	assert.ErrorIs(t, err, storeErr)
}

func TestGetQuickStats(t *testing.T) {
	f := newDashboardFixture(nil)
	month := domain.MonthRange(fixedNow)
	for _, c := range []string{"Food", "Hobby", "Rent", "Books"} {
		f.expense(c, "100", fixedNow)
	}
	f.budgets.Budgets = []domain.Budget{
		{ID: "over", UserID: "u1", CategoryID: "food", Amount: d("50"), StartDate: month.From, EndDate: month.To, Alerts: domain.DefaultAlertSettings()},
		{ID: "near", UserID: "u1", CategoryID: "hobby", Amount: d("110"), StartDate: month.From, EndDate: month.To, Alerts: domain.DefaultAlertSettings()},
	}

	stats, err := f.service.GetQuickStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, stats.TopCategories, topCategoriesCount)
	require.Len(t, stats.OverBudget, 1)
	assert.Equal(t, "over", stats.OverBudget[0].BudgetID)
	require.Len(t, stats.NearLimit, 1)
	assert.Equal(t, "near", stats.NearLimit[0].BudgetID)
	assert.NotNil(t, stats.Goals)
	assert.Equal(t, 4, stats.Summary.TotalTransactions)
}

func TestDashboard_CacheInvalidation(t *testing.T) {
	f := newDashboardFixture(cache.NewMemoryCache(10, time.Minute))
	ctx := context.Background()
	f.income("100", fixedNow)

	first, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "100", first.TotalIncome)

	f.income("50", fixedNow)
	cached, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "100", cached.TotalIncome)

	f.service.InvalidateUser(ctx, "u1")
	fresh, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "150", fresh.TotalIncome)
}

func TestGetSpendingByCategory_RoundsHalfToEven(t *testing.T) {
	f := newDashboardFixture(nil)
	f.expense("Food", "1", fixedNow)
	f.expense("Rent", "799", fixedNow)

	spending, err := f.service.GetSpendingByCategory(context.Background(), "u1", domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, spending, 2)
	assertDecimal(t, "99.88", spending[0].Percentage)
	assertDecimal(t, "0.12", spending[1].Percentage)
	assertDecimal(t, "100", spending[0].Percentage.Add(spending[1].Percentage))
}

func TestDashboard_IgnoresPendingAndCancelled(t *testing.T) {
	f := newDashboardFixture(nil)
	f.income("500", fixedNow)
	f.expense("Food", "100", fixedNow)
	for _, tx := range []domain.Transaction{
		{ID: "p1", Type: domain.TransactionTypeExpense, Category: "Food", Amount: d("50"), Status: domain.TransactionStatusPending},
		{ID: "c1", Type: domain.TransactionTypeExpense, Category: "Rent", Amount: d("400"), Status: domain.TransactionStatusCancelled},
		{ID: "p2", Type: domain.TransactionTypeIncome, Category: "Salary", Amount: d("1000"), Status: domain.TransactionStatusPending},
	} {
		tx.UserID = "u1"
		tx.Date = fixedNow
		f.transactions.Transactions = append(f.transactions.Transactions, tx)
	}
	ctx := context.Background()

	spending, err := f.service.GetSpendingByCategory(ctx, "u1", domain.MonthRange(fixedNow))
	require.NoError(t, err)
	require.Len(t, spending, 1)
	assert.Equal(t, "Food", spending[0].Category)
	assertDecimal(t, "100", spending[0].Amount)
	assertDecimal(t, "100", spending[0].Percentage)

	months, err := f.service.GetMonthlySummary(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assertDecimal(t, "500", months[0].Income)
	assertDecimal(t, "100", months[0].Expenses)
	assertDecimal(t, "400", months[0].Balance)

	summary, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "400", summary.TotalBalance)
	assertDecimal(t, "500", summary.TotalIncome)
	assertDecimal(t, "100", summary.TotalExpenses)

	projection, err := f.service.GetCashFlowProjection(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, projection, 1)
	assertDecimal(t, "5.56", projection[0].ExpectedIncome)
	assertDecimal(t, "1.11", projection[0].ExpectedExpenses)
	assertDecimal(t, "404.44", projection[0].ProjectedBalance)
}

func TestDashboard_CacheIsScopedToMonth(t *testing.T) {
	f := newDashboardFixture(cache.NewMemoryCache(10, time.Minute))
	ctx := context.Background()
	endOfMay := time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC)
	firstOfJune := time.Date(2024, time.June, 1, 0, 1, 0, 0, time.UTC)
	f.service.now = func() time.Time { return endOfMay }
	f.income("100", endOfMay)

	may, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "100", may.TotalIncome)

	f.service.now = func() time.Time { return firstOfJune }
	f.income("40", firstOfJune)
	june, err := f.service.GetDashboardSummary(ctx, "u1")
	require.NoError(t, err)
	assertDecimal(t, "40", june.TotalIncome)
	assertDecimal(t, "140", june.TotalBalance)
}
