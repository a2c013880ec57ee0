package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/errors"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

func IsValidBudgetPeriod(p string) bool {
	switch BudgetPeriod(p) {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodQuarterly, BudgetPeriodYearly:
		return true
	}
	return false
}

var DefaultAlertThreshold = decimal.NewFromInt(80)

type AlertSettings struct {
	Enabled   bool            `json:"enabled"`
	Threshold decimal.Decimal `json:"threshold"`
	Notified  bool            `json:"notified"`
}

func DefaultAlertSettings() AlertSettings {
	return AlertSettings{Enabled: true, Threshold: DefaultAlertThreshold}
}

type Budget struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     BudgetPeriod    `json:"period"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	Alerts     AlertSettings   `json:"alerts"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// IsActive reports whether now falls inside the budget window.
func (b *Budget) IsActive(now time.Time) bool {
	return !now.Before(b.StartDate) && !now.After(b.EndDate)
}

func (b *Budget) Window() DateRange {
	return Between(b.StartDate, b.EndDate)
}

func (b *Budget) Validate() error {
	if b.CategoryID == "" {
		return errors.NewValidationError("Category ID is required")
	}
	if !b.Amount.IsPositive() {
		return errors.NewValidationError("Amount must be greater than zero")
	}
	if err := CheckMoney("Amount", b.Amount); err != nil {
		return err
	}
	if !IsValidBudgetPeriod(string(b.Period)) {
		return errors.NewValidationError("Period must be 'weekly', 'monthly', 'quarterly' or 'yearly'")
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return errors.NewValidationError("Start and end dates are required")
	}
	if !b.EndDate.After(b.StartDate) {
		return errors.NewValidationError("End date must be after start date")
	}
	if b.Alerts.Threshold.IsNegative() {
		return errors.NewValidationError("Alert threshold must not be negative")
	}
	if err := checkScaled("Alert threshold", b.Alerts.Threshold, maxAlertThreshold); err != nil {
		return err
	}
	return nil
}

// BudgetRepository returns errors.ErrBudgetNotFound from FindByID and
// FindByCategory when nothing matches.
type BudgetRepository interface {
	Save(ctx context.Context, budget Budget) error
	FindByID(ctx context.Context, budgetID string) (*Budget, error)
	FindByUser(ctx context.Context, userID string) ([]Budget, error)
	FindActive(ctx context.Context, userID string, now time.Time) ([]Budget, error)
	FindByCategory(ctx context.Context, userID, categoryID string) (*Budget, error)
	// FindPendingAlerts lists active budgets of every user whose alerts are
	// enabled and not yet sent.
	FindPendingAlerts(ctx context.Context, now time.Time) ([]Budget, error)
	MarkNotified(ctx context.Context, budgetID string) error
	Update(ctx context.Context, budget Budget) error
	Delete(ctx context.Context, budgetID string) error
}
