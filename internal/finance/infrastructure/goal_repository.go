package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, target_date, type, priority,
    is_completed, created_at, updated_at`

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func scanGoal(row rowScanner) (domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate,
		&g.Type, &g.Priority, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *GoalRepository) Save(ctx context.Context, goal domain.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate,
		goal.Type, goal.Priority, goal.IsCompleted, goal.CreatedAt, goal.UpdatedAt,
	)
	return err
}

func (r *GoalRepository) FindByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	if !isUUID(goalID) {
		return nil, financeErrors.ErrGoalNotFound
	}
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepository) FindByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.findMany(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY target_date`, userID)
}

func (r *GoalRepository) FindActive(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.findMany(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 AND NOT is_completed ORDER BY target_date`, userID)
}

func (r *GoalRepository) FindCompleted(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.findMany(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 AND is_completed ORDER BY updated_at DESC`, userID)
}

func (r *GoalRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) Update(ctx context.Context, goal domain.Goal) error {
	if !isUUID(goal.ID) {
		return financeErrors.ErrGoalNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = $2, target_amount = $3, current_amount = $4, target_date = $5, type = $6,
        priority = $7, is_completed = $8, updated_at = $9 WHERE id = $1`,
		goal.ID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.Type,
		goal.Priority, goal.IsCompleted, goal.UpdatedAt,
	)
	return affectedOrNotFound(res, err, financeErrors.ErrGoalNotFound)
}

func (r *GoalRepository) Delete(ctx context.Context, goalID string) error {
	if !isUUID(goalID) {
		return financeErrors.ErrGoalNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, goalID)
	return affectedOrNotFound(res, err, financeErrors.ErrGoalNotFound)
}
