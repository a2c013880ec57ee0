package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/errors"
)

const (
	DefaultCategoryColor = "#000000"
	DefaultCategoryIcon  = "📁"
)

// Category with an empty UserID is a shared system default.
type Category struct {
	ID               string              `json:"id"`
	UserID           string              `json:"userId,omitempty"`
	Name             string              `json:"name"`
	Type             TransactionType     `json:"type"`
	Color            string              `json:"color"`
	Icon             string              `json:"icon"`
	ParentCategoryID string              `json:"parentCategoryId,omitempty"`
	BudgetLimit      decimal.NullDecimal `json:"budgetLimit"`
	IsDefault        bool                `json:"isDefault"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// VisibleTo reports whether userID may read the category.
func (c *Category) VisibleTo(userID string) bool {
	return c.UserID == "" || c.UserID == userID
}

func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.NewValidationError("Name is required")
	}
	if len(c.Name) > 50 {
		return errors.NewValidationError("Name must be of length less than 50")
	}
	if !IsValidTransactionType(string(c.Type)) {
		return errors.ErrInvalidTransactionType
	}
	if c.BudgetLimit.Valid && c.BudgetLimit.Decimal.IsNegative() {
		return errors.NewValidationError("Budget limit must not be negative")
	}
	if c.BudgetLimit.Valid {
		if err := CheckMoney("Budget limit", c.BudgetLimit.Decimal); err != nil {
			return err
		}
	}
	return nil
}

// CategoryRepository returns errors.ErrCategoryNotFound from the Find* lookups
// of a single row. FindByUser includes the shared defaults.
type CategoryRepository interface {
	Save(ctx context.Context, category Category) error
	FindByID(ctx context.Context, categoryID string) (*Category, error)
	FindByName(ctx context.Context, userID, name string) (*Category, error)
	FindByUser(ctx context.Context, userID string) ([]Category, error)
	FindDefaults(ctx context.Context) ([]Category, error)
	ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error)
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, categoryID string) error
}
