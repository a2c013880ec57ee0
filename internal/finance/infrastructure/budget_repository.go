package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

const budgetColumns = `id, user_id, category_id, amount, period, start_date, end_date,
    alert_enabled, alert_threshold, alert_notified, created_at`

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func scanBudget(row rowScanner) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.StartDate, &b.EndDate,
		&b.Alerts.Enabled, &b.Alerts.Threshold, &b.Alerts.Notified, &b.CreatedAt)
	return b, err
}

func (r *BudgetRepository) Save(ctx context.Context, budget domain.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		budget.ID, budget.UserID, budget.CategoryID, budget.Amount, budget.Period, budget.StartDate, budget.EndDate,
		budget.Alerts.Enabled, budget.Alerts.Threshold, budget.Alerts.Notified, budget.CreatedAt,
	)
	return err
}

func (r *BudgetRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrBudgetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	if !isUUID(budgetID) {
		return nil, financeErrors.ErrBudgetNotFound
	}
	return r.findOne(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, budgetID)
}

func (r *BudgetRepository) FindByCategory(ctx context.Context, userID, categoryID string) (*domain.Budget, error) {
	if !isUUID(categoryID) {
		return nil, financeErrors.ErrBudgetNotFound
	}
	return r.findOne(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND category_id = $2`, userID, categoryID)
}

func (r *BudgetRepository) FindByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	return r.findMany(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY start_date`, userID)
}

func (r *BudgetRepository) FindActive(ctx context.Context, userID string, now time.Time) ([]domain.Budget, error) {
	return r.findMany(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND start_date <= $2 AND end_date >= $2 ORDER BY start_date`,
		userID, now)
}

func (r *BudgetRepository) FindPendingAlerts(ctx context.Context, now time.Time) ([]domain.Budget, error) {
	return r.findMany(ctx,
		`SELECT `+budgetColumns+` FROM budgets
        WHERE alert_enabled AND NOT alert_notified AND start_date <= $1 AND end_date >= $1`,
		now)
}

func (r *BudgetRepository) MarkNotified(ctx context.Context, budgetID string) error {
	if !isUUID(budgetID) {
		return financeErrors.ErrBudgetNotFound
	}
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET alert_notified = TRUE WHERE id = $1`, budgetID)
	return affectedOrNotFound(res, err, financeErrors.ErrBudgetNotFound)
}

func (r *BudgetRepository) Update(ctx context.Context, budget domain.Budget) error {
	if !isUUID(budget.ID) {
		return financeErrors.ErrBudgetNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = $2, amount = $3, period = $4, start_date = $5, end_date = $6,
        alert_enabled = $7, alert_threshold = $8, alert_notified = $9 WHERE id = $1`,
		budget.ID, budget.CategoryID, budget.Amount, budget.Period, budget.StartDate, budget.EndDate,
		budget.Alerts.Enabled, budget.Alerts.Threshold, budget.Alerts.Notified,
	)
	return affectedOrNotFound(res, err, financeErrors.ErrBudgetNotFound)
}

func (r *BudgetRepository) Delete(ctx context.Context, budgetID string) error {
	if !isUUID(budgetID) {
		return financeErrors.ErrBudgetNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, budgetID)
	return affectedOrNotFound(res, err, financeErrors.ErrBudgetNotFound)
}
