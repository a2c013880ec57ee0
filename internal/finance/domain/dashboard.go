package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardSummary struct {
	TotalBalance          decimal.Decimal `json:"totalBalance"`
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalExpenses         decimal.Decimal `json:"totalExpenses"`
	MonthlyBudget         decimal.Decimal `json:"monthlyBudget"`
	BudgetUsagePercentage decimal.Decimal `json:"budgetUsagePercentage"`
	TotalTransactions     int             `json:"totalTransactions"`
	ActiveGoals           int             `json:"activeGoals"`
	CompletedGoals        int             `json:"completedGoals"`
}

type CategorySpending struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
}

type MonthlySummary struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type CashFlowProjection struct {
	Date             time.Time       `json:"date"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	ExpectedIncome   decimal.Decimal `json:"expectedIncome"`
	ExpectedExpenses decimal.Decimal `json:"expectedExpenses"`
}

type GoalProgress struct {
	GoalID             string          `json:"goalId"`
	GoalName           string          `json:"goalName"`
	TargetAmount       decimal.Decimal `json:"targetAmount"`
	CurrentAmount      decimal.Decimal `json:"currentAmount"`
	ProgressPercentage decimal.Decimal `json:"progressPercentage"`
	DaysRemaining      int             `json:"daysRemaining"`
	IsOnTrack          bool            `json:"isOnTrack"`
}

type BudgetStatus struct {
	BudgetID        string          `json:"budgetId"`
	Category        string          `json:"category"`
	BudgetAmount    decimal.Decimal `json:"budgetAmount"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	UsagePercentage decimal.Decimal `json:"usagePercentage"`
	IsOverBudget    bool            `json:"isOverBudget"`
	IsNearLimit     bool            `json:"isNearLimit"`
}

// Keys of the financial health map.
const (
	MetricSavingsRate                 = "SavingsRate"
	MetricEmergencyFundMonths         = "EmergencyFundMonths"
	MetricMonthlyExpenseToIncomeRatio = "MonthlyExpenseToIncomeRatio"
	MetricNetWorth                    = "NetWorth"
)

type FinancialHealth map[string]decimal.Decimal

type QuickStats struct {
	Summary       DashboardSummary   `json:"summary"`
	TopCategories []CategorySpending `json:"topCategories"`
	OverBudget    []BudgetStatus     `json:"overBudget"`
	NearLimit     []BudgetStatus     `json:"nearLimit"`
	Goals         []GoalProgress     `json:"goals"`
}
