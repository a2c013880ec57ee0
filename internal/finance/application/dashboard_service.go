package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/FinMind/internal/cache"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

const (
	DefaultMonthsBack = 6
	DefaultDaysAhead  = 30

	FallbackCategoryColor = "#6B7280"
	FallbackCategoryIcon  = "📦"

	projectionWindowDays = 90
	topCategoriesCount   = 3
)

var (
	projectionWindow = decimal.NewFromInt(projectionWindowDays)
	weekendSurcharge = decimal.RequireFromString("1.2")
	onTrackFactor    = decimal.RequireFromString("0.8")
)

// CacheInvalidator drops derived results for a user after a write.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateUser(context.Context, string) {}

// DashboardService derives summary statistics from a user's ledger. Every
// method is read-only; independent store reads run concurrently.
type DashboardService struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
	budgets      domain.BudgetRepository
	goals        domain.GoalRepository
	evaluator    budgetEvaluator
	cache        cache.Cache
	logger       *log.Logger
	now          func() time.Time
}

// NewDashboardService builds the service. resultCache may be nil to disable caching.
func NewDashboardService(
	transactions domain.TransactionRepository,
	categories domain.CategoryRepository,
	budgets domain.BudgetRepository,
	goals domain.GoalRepository,
	resultCache cache.Cache,
	logger *log.Logger,
) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		categories:   categories,
		budgets:      budgets,
		goals:        goals,
		evaluator:    budgetEvaluator{transactions: transactions, categories: categories},
		cache:        resultCache,
		logger:       logger.WithComponent(log.ComponentDashboard),
		now:          time.Now,
	}
}

func (s *DashboardService) clock() time.Time {
	return s.now().UTC()
}

// Cached results cover the current month, so the month is part of the key.
func summaryKey(userID string, now time.Time) string {
	return "dashboard:summary:" + now.Format("2006-01") + ":" + userID
}

func quickStatsKey(userID string, now time.Time) string {
	return "dashboard:quick-stats:" + now.Format("2006-01") + ":" + userID
}

func (s *DashboardService) InvalidateUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	now := s.clock()
	if err := s.cache.Delete(ctx, summaryKey(userID, now), quickStatsKey(userID, now)); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", log.FieldUserID, userID, log.FieldError, err.Error())
	}
}

func (s *DashboardService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, log.FieldError, err.Error())
	}
	return err == nil
}

func (s *DashboardService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, value); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", key, log.FieldError, err.Error())
	}
}

func (s *DashboardService) fail(ctx context.Context, op, userID string, err error) error {
	return logFailure(ctx, s.logger, op, userID, err)
}

// sum schedules a SumAmountByType read on g and writes the result to dst.
func (s *DashboardService) sum(g *errgroup.Group, ctx context.Context, userID string, t domain.TransactionType, period domain.DateRange, dst *decimal.Decimal) {
	g.Go(func() error {
		total, err := s.transactions.SumAmountByType(ctx, userID, t, period)
		if err != nil {
			return err
		}
		*dst = total
		return nil
	})
}

func (s *DashboardService) GetDashboardSummary(ctx context.Context, userID string) (domain.DashboardSummary, error) {
	now := s.clock()
	var summary domain.DashboardSummary
	if s.cached(ctx, summaryKey(userID, now), &summary) {
		return summary, nil
	}

	month := domain.MonthRange(now)

	var (
		monthlyIncome, monthlyExpenses decimal.Decimal
		totalIncome, totalExpenses     decimal.Decimal
		activeBudgets                  []domain.Budget
		activeGoals, completedGoals    []domain.Goal
		transactionCount               int
	)

	g, gctx := errgroup.WithContext(ctx)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, month, &monthlyIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, month, &monthlyExpenses)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, domain.DateRange{}, &totalIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, domain.DateRange{}, &totalExpenses)
	g.Go(func() (err error) {
		activeBudgets, err = s.budgets.FindActive(gctx, userID, now)
		return err
	})
	g.Go(func() (err error) {
		activeGoals, err = s.goals.FindActive(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		completedGoals, err = s.goals.FindCompleted(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		transactionCount, err = s.transactions.CountByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardSummary{}, s.fail(ctx, "dashboard_summary", userID, err)
	}

	monthlyBudget := decimal.Zero
	for _, b := range activeBudgets {
		monthlyBudget = monthlyBudget.Add(b.Amount)
	}

	summary = domain.DashboardSummary{
		TotalBalance:          totalIncome.Sub(totalExpenses),
		TotalIncome:           monthlyIncome,
		TotalExpenses:         monthlyExpenses,
		MonthlyBudget:         monthlyBudget,
		BudgetUsagePercentage: round2(percentOf(monthlyExpenses, monthlyBudget)),
		TotalTransactions:     transactionCount,
		ActiveGoals:           len(activeGoals),
		CompletedGoals:        len(completedGoals),
	}
	s.store(ctx, summaryKey(userID, now), summary)
	return summary, nil
}

// GetSpendingByCategory groups completed expenses in period by category name.
func (s *DashboardService) GetSpendingByCategory(ctx context.Context, userID string, period domain.DateRange) ([]domain.CategorySpending, error) {
	var (
		transactions []domain.Transaction
		categories   []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		transactions, err = s.transactions.FindByUser(gctx, userID, domain.TransactionFilter{
			Type:  domain.TransactionTypeExpense,
			Range: period,
		})
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.categories.FindByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "spending_by_category", userID, err)
	}

	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if !t.Counted() || t.Type != domain.TransactionTypeExpense {
			continue
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	// a user's own category wins over a default with the same name
	lookup := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		if _, seen := lookup[c.Name]; !seen || c.UserID != "" {
			lookup[c.Name] = c
		}
	}

	result := make([]domain.CategorySpending, 0, len(byCategory))
	for name, amount := range byCategory {
		row := domain.CategorySpending{
			Category:   name,
			Amount:     amount,
			Percentage: round2(percentOf(amount, total)),
			Color:      FallbackCategoryColor,
			Icon:       FallbackCategoryIcon,
		}
		if c, ok := lookup[name]; ok {
			row.Color = c.Color
			row.Icon = c.Icon
		}
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Amount.Cmp(result[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// GetMonthlySummary returns income and expenses of the last monthsBack
// calendar months, current month included, oldest first.
func (s *DashboardService) GetMonthlySummary(ctx context.Context, userID string, monthsBack int) ([]domain.MonthlySummary, error) {
	if monthsBack < 1 {
		return nil, financeErrors.ErrInvalidMonthsBack
	}

	now := s.clock()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	result := make([]domain.MonthlySummary, monthsBack)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < monthsBack; i++ {
		monthStart := firstOfMonth.AddDate(0, i-(monthsBack-1), 0)
		period := domain.MonthRange(monthStart)

		result[i].Year = monthStart.Year()
		result[i].Month = int(monthStart.Month())
		s.sum(g, gctx, userID, domain.TransactionTypeIncome, period, &result[i].Income)
		s.sum(g, gctx, userID, domain.TransactionTypeExpense, period, &result[i].Expenses)
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "monthly_summary", userID, err)
	}

	for i := range result {
		result[i].Balance = result[i].Income.Sub(result[i].Expenses)
	}
	return result, nil
}

// GetCashFlowProjection extends the current balance daysAhead days using the
// average daily income and expense of the trailing 90 days. Weekend days
// carry a 20% expense surcharge.
func (s *DashboardService) GetCashFlowProjection(ctx context.Context, userID string, daysAhead int) ([]domain.CashFlowProjection, error) {
	if daysAhead < 1 {
		return nil, financeErrors.ErrInvalidDaysAhead
	}

	now := s.clock()
	window := domain.Between(now.AddDate(0, 0, -projectionWindowDays), now)

	var totalIncome, totalExpenses, recentIncome, recentExpenses decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, domain.DateRange{}, &totalIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, domain.DateRange{}, &totalExpenses)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, window, &recentIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, window, &recentExpenses)
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "cash_flow_projection", userID, err)
	}

	return projectCashFlow(now, totalIncome.Sub(totalExpenses),
		recentIncome.Div(projectionWindow), recentExpenses.Div(projectionWindow), daysAhead), nil
}

func projectCashFlow(now time.Time, balance, avgIncome, avgExpenses decimal.Decimal, daysAhead int) []domain.CashFlowProjection {
	projection := make([]domain.CashFlowProjection, 0, daysAhead)
	running := balance
	for i := 1; i <= daysAhead; i++ {
		date := now.AddDate(0, 0, i)
		expenses := avgExpenses
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			expenses = expenses.Mul(weekendSurcharge)
		}
		running = running.Add(avgIncome).Sub(expenses)

		projection = append(projection, domain.CashFlowProjection{
			Date:             date,
			ProjectedBalance: round2(running),
			ExpectedIncome:   round2(avgIncome),
			ExpectedExpenses: round2(expenses),
		})
	}
	return projection
}

// GetGoalsProgress reports progress and pace of every active goal, highest
// progress first.
func (s *DashboardService) GetGoalsProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error) {
	goals, err := s.goals.FindActive(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "goals_progress", userID, err)
	}

	now := s.clock()
	result := make([]domain.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		result = append(result, goalProgress(goal, now))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if cmp := result[i].ProgressPercentage.Cmp(result[j].ProgressPercentage); cmp != 0 {
			return cmp > 0
		}
		return result[i].GoalName < result[j].GoalName
	})
	return result, nil
}

func goalProgress(goal domain.Goal, now time.Time) domain.GoalProgress {
	daysRemaining := max(1, domain.WholeDays(goal.TargetDate.Sub(now)))
	daysSinceCreation := max(1, domain.WholeDays(now.Sub(goal.CreatedAt)))

	dailyTarget := goal.TargetAmount.Div(decimal.NewFromInt(int64(daysRemaining)))
	currentDaily := goal.CurrentAmount.Div(decimal.NewFromInt(int64(daysSinceCreation)))

	return domain.GoalProgress{
		GoalID:             goal.ID,
		GoalName:           goal.Name,
		TargetAmount:       goal.TargetAmount,
		CurrentAmount:      goal.CurrentAmount,
		ProgressPercentage: round2(goal.Progress()),
		DaysRemaining:      daysRemaining,
		IsOnTrack:          currentDaily.GreaterThanOrEqual(dailyTarget.Mul(onTrackFactor)),
	}
}

// GetBudgetStatus evaluates every active budget, highest usage first.
func (s *DashboardService) GetBudgetStatus(ctx context.Context, userID string) ([]domain.BudgetStatus, error) {
	budgets, err := s.budgets.FindActive(ctx, userID, s.clock())
	if err != nil {
		return nil, s.fail(ctx, "budget_status", userID, err)
	}

	result := make([]domain.BudgetStatus, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, budget := range budgets {
		g.Go(func() error {
			evaluation, err := s.evaluator.evaluate(gctx, budget)
			if err != nil {
				return err
			}
			result[i] = evaluation.status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "budget_status", userID, err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if cmp := result[i].UsagePercentage.Cmp(result[j].UsagePercentage); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// GetFinancialHealthMetrics returns the fixed set of health ratios for the
// current month. Ratios with a zero divisor are 0.
func (s *DashboardService) GetFinancialHealthMetrics(ctx context.Context, userID string) (domain.FinancialHealth, error) {
	month := domain.MonthRange(s.clock())

	var monthlyIncome, monthlyExpenses, totalIncome, totalExpenses decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, month, &monthlyIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, month, &monthlyExpenses)
	s.sum(g, gctx, userID, domain.TransactionTypeIncome, domain.DateRange{}, &totalIncome)
	s.sum(g, gctx, userID, domain.TransactionTypeExpense, domain.DateRange{}, &totalExpenses)
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "financial_health", userID, err)
	}

	balance := totalIncome.Sub(totalExpenses)

	emergencyFundMonths := decimal.Zero
	if monthlyExpenses.IsPositive() {
		emergencyFundMonths = balance.Div(monthlyExpenses)
	}

	return domain.FinancialHealth{
		domain.MetricSavingsRate:                 round2(percentOf(monthlyIncome.Sub(monthlyExpenses), monthlyIncome)),
		domain.MetricEmergencyFundMonths:         round2(emergencyFundMonths),
		domain.MetricMonthlyExpenseToIncomeRatio: round2(percentOf(monthlyExpenses, monthlyIncome)),
		domain.MetricNetWorth:                    round2(balance),
	}, nil
}

// GetQuickStats combines the summary, this month's top spending categories,
// budgets needing attention and goal progress.
func (s *DashboardService) GetQuickStats(ctx context.Context, userID string) (domain.QuickStats, error) {
	now := s.clock()
	var stats domain.QuickStats
	if s.cached(ctx, quickStatsKey(userID, now), &stats) {
		return stats, nil
	}

	var (
		spending []domain.CategorySpending
		budgets  []domain.BudgetStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Summary, err = s.GetDashboardSummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		spending, err = s.GetSpendingByCategory(gctx, userID, domain.MonthRange(now))
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.GetBudgetStatus(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.Goals, err = s.GetGoalsProgress(gctx, userID)
		return err
	})
	// each operation above logs its own failure
	if err := g.Wait(); err != nil {
		return domain.QuickStats{}, err
	}

	if len(spending) > topCategoriesCount {
		spending = spending[:topCategoriesCount]
	}
	stats.TopCategories = spending
	stats.OverBudget = []domain.BudgetStatus{}
	stats.NearLimit = []domain.BudgetStatus{}
	for _, b := range budgets {
		switch {
		case b.IsOverBudget:
			stats.OverBudget = append(stats.OverBudget, b)
		case b.IsNearLimit:
			stats.NearLimit = append(stats.NearLimit, b)
		}
	}

	s.store(ctx, quickStatsKey(userID, now), stats)
	return stats, nil
}
