package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/errors"
)

type GoalType string

const (
	GoalTypeSavings    GoalType = "savings"
	GoalTypeDebt       GoalType = "debt"
	GoalTypeInvestment GoalType = "investment"
	GoalTypePurchase   GoalType = "purchase"
)

func IsValidGoalType(t string) bool {
	switch GoalType(t) {
	case GoalTypeSavings, GoalTypeDebt, GoalTypeInvestment, GoalTypePurchase:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func IsValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const NearDueDateDays = 30

var hundred = decimal.NewFromInt(100)

type Goal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    time.Time       `json:"targetDate"`
	Type          GoalType        `json:"type"`
	Priority      Priority        `json:"priority"`
	IsCompleted   bool            `json:"isCompleted"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Progress is current/target as a percentage. It is not capped at 100 and
// is 0 for a non-positive target.
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
}

// DaysRemaining is the whole number of days until the target date, never negative.
func (g *Goal) DaysRemaining(now time.Time) int {
	days := WholeDays(g.TargetDate.Sub(now))
	if days < 0 {
		return 0
	}
	return days
}

func (g *Goal) IsNearDueDate(now time.Time) bool {
	remaining := g.TargetDate.Sub(now)
	return remaining > 0 && remaining <= NearDueDateDays*24*time.Hour
}

func (g *Goal) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return errors.NewValidationError("Name is required")
	}
	if !g.TargetAmount.IsPositive() {
		return errors.NewValidationError("Target amount must be greater than zero")
	}
	if g.CurrentAmount.IsNegative() {
		return errors.NewValidationError("Current amount must not be negative")
	}
	if err := CheckMoney("Target amount", g.TargetAmount); err != nil {
		return err
	}
	if err := CheckMoney("Current amount", g.CurrentAmount); err != nil {
		return err
	}
	if !IsValidGoalType(string(g.Type)) {
		return errors.NewValidationError("Type must be 'savings', 'debt', 'investment' or 'purchase'")
	}
	if !IsValidPriority(string(g.Priority)) {
		return errors.NewValidationError("Priority must be 'low', 'medium' or 'high'")
	}
	return nil
}

// GoalRepository returns errors.ErrGoalNotFound from FindByID.
type GoalRepository interface {
	Save(ctx context.Context, goal Goal) error
	FindByID(ctx context.Context, goalID string) (*Goal, error)
	FindByUser(ctx context.Context, userID string) ([]Goal, error)
	FindActive(ctx context.Context, userID string) ([]Goal, error)
	FindCompleted(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, goal Goal) error
	Delete(ctx context.Context, goalID string) error
}
