package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

const categoryColumns = `id, user_id, name, type, color, icon, parent_category_id, budget_limit, is_default, created_at`

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var (
		c              domain.Category
		userID, parent sql.NullString
	)
	err := row.Scan(&c.ID, &userID, &c.Name, &c.Type, &c.Color, &c.Icon, &parent, &c.BudgetLimit, &c.IsDefault, &c.CreatedAt)
	c.UserID = userID.String
	c.ParentCategoryID = parent.String
	return c, err
}

func (r *CategoryRepository) Save(ctx context.Context, category domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		category.ID, nullable(category.UserID), category.Name, category.Type, category.Color, category.Icon,
		nullable(category.ParentCategoryID), category.BudgetLimit, category.IsDefault, category.CreatedAt,
	)
	return err
}

func (r *CategoryRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	if !isUUID(categoryID) {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, categoryID)
}

// FindByName prefers the user's own category over a default of the same name.
func (r *CategoryRepository) FindByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	return r.findOne(ctx,
		`SELECT `+categoryColumns+` FROM categories
        WHERE (user_id = $1 OR user_id IS NULL) AND LOWER(name) = LOWER($2)
        ORDER BY user_id NULLS LAST LIMIT 1`,
		userID, name)
}

func (r *CategoryRepository) FindByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	return r.findMany(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 OR user_id IS NULL ORDER BY is_default DESC, name`,
		userID)
}

func (r *CategoryRepository) FindDefaults(ctx context.Context) ([]domain.Category, error) {
	return r.findMany(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_default ORDER BY name`)
}

func (r *CategoryRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE user_id = $1 AND LOWER(name) = LOWER($2) AND id::text <> $3)`
	err := r.db.QueryRowContext(ctx, query, userID, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	if !isUUID(category.ID) {
		return financeErrors.ErrCategoryNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, type = $3, color = $4, icon = $5, parent_category_id = $6, budget_limit = $7
        WHERE id = $1`,
		category.ID, category.Name, category.Type, category.Color, category.Icon,
		nullable(category.ParentCategoryID), category.BudgetLimit,
	)
	return affectedOrNotFound(res, err, financeErrors.ErrCategoryNotFound)
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	if !isUUID(categoryID) {
		return financeErrors.ErrCategoryNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	return affectedOrNotFound(res, err, financeErrors.ErrCategoryNotFound)
}
