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

type CategoryService struct {
	repo        domain.CategoryRepository
	invalidator CacheInvalidator
	logger      *log.Logger
	now         func() time.Time
}

// NewCategoryService builds the service. invalidator may be nil.
func NewCategoryService(repo domain.CategoryRepository, invalidator CacheInvalidator, logger *log.Logger) *CategoryService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &CategoryService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentFinance),
		now:         time.Now,
	}
}

// CategoryChanges carries the editable fields of a category. Nil fields are
// left untouched.
type CategoryChanges struct {
	Name        *string          `json:"name"`
	Color       *string          `json:"color"`
	Icon        *string          `json:"icon"`
	BudgetLimit *decimal.Decimal `json:"budgetLimit"`
}

// GetCategories lists the user's categories and the shared defaults,
// optionally narrowed to one transaction type.
func (s *CategoryService) GetCategories(ctx context.Context, userID string, categoryType string) ([]domain.Category, error) {
	if categoryType != "" && !domain.IsValidTransactionType(categoryType) {
		return nil, financeErrors.ErrInvalidTransactionType
	}
	categories, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "list_categories", userID, err)
	}

	result := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if categoryType == "" || string(c.Type) == categoryType {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *CategoryService) GetDefaultCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.FindDefaults(ctx)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "default_categories", "", err)
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// GetCategory hides categories of other users behind NotFound.
func (s *CategoryService) GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "get_category", userID, err)
	}
	if !category.VisibleTo(userID) {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}
	if category.Icon == "" {
		category.Icon = domain.DefaultCategoryIcon
	}
	if category.ParentCategoryID != "" {
		if _, err := s.GetCategory(ctx, category.UserID, category.ParentCategoryID); err != nil {
			return err
		}
	}

	taken, err := s.repo.ExistsByName(ctx, category.UserID, category.Name, "")
	if err != nil {
		return logFailure(ctx, s.logger, "create_category", category.UserID, err)
	}
	if taken {
		return financeErrors.ErrCategoryNameTaken
	}

	category.ID = uuid.NewString()
	category.IsDefault = false
	category.CreatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, *category); err != nil {
		return logFailure(ctx, s.logger, "create_category", category.UserID, err)
	}
	s.invalidator.InvalidateUser(ctx, category.UserID)
	return nil
}

// UpdateCategory applies changes to one of the user's own categories.
// Defaults are shared and read-only.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, categoryID string, changes CategoryChanges) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault || category.UserID == "" {
		return nil, financeErrors.ErrDefaultCategory
	}

	if changes.Name != nil {
		category.Name = strings.TrimSpace(*changes.Name)
	}
	if changes.Color != nil {
		category.Color = *changes.Color
	}
	if changes.Icon != nil {
		category.Icon = *changes.Icon
	}
	if changes.BudgetLimit != nil {
		category.BudgetLimit = decimal.NewNullDecimal(*changes.BudgetLimit)
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, userID, category.Name, category.ID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "update_category", userID, err)
	}
	if taken {
		return nil, financeErrors.ErrCategoryNameTaken
	}

	if err := s.repo.Update(ctx, *category); err != nil {
		return nil, logFailure(ctx, s.logger, "update_category", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	category, err := s.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault || category.UserID == "" {
		return financeErrors.ErrDefaultCategory
	}
	if err := s.repo.Delete(ctx, categoryID); err != nil {
		return logFailure(ctx, s.logger, "delete_category", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}
