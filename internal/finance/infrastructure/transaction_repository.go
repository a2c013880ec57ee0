package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

const transactionColumns = `id, user_id, type, amount, description, category, payment_method, date, status, created_at, updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.Category,
		&t.PaymentMethod, &t.Date, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TransactionRepository) Save(ctx context.Context, transaction domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		transaction.ID, transaction.UserID, transaction.Type, transaction.Amount, transaction.Description,
		transaction.Category, transaction.PaymentMethod, transaction.Date, transaction.Status,
		transaction.CreatedAt, transaction.UpdatedAt,
	)
	return err
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if !isUUID(transactionID) {
		return nil, financeErrors.ErrTransactionNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, transactionID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if !filter.Range.From.IsZero() {
		args = append(args, filter.Range.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !filter.Range.To.IsZero() {
		args = append(args, filter.Range.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY date DESC, created_at DESC`

	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, transaction domain.Transaction) error {
	if !isUUID(transaction.ID) {
		return financeErrors.ErrTransactionNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = $2, amount = $3, description = $4, category = $5,
        payment_method = $6, date = $7, status = $8, updated_at = $9 WHERE id = $1`,
		transaction.ID, transaction.Type, transaction.Amount, transaction.Description, transaction.Category,
		transaction.PaymentMethod, transaction.Date, transaction.Status, transaction.UpdatedAt,
	)
	return affectedOrNotFound(res, err, financeErrors.ErrTransactionNotFound)
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID string) error {
	if !isUUID(transactionID) {
		return financeErrors.ErrTransactionNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	return affectedOrNotFound(res, err, financeErrors.ErrTransactionNotFound)
}

func (r *TransactionRepository) SumAmountByType(ctx context.Context, userID string, transactionType domain.TransactionType, period domain.DateRange) (decimal.Decimal, error) {
	return r.sum(ctx, "type = $2", []interface{}{userID, transactionType}, period)
}

func (r *TransactionRepository) SumAmountByCategory(ctx context.Context, userID string, transactionType domain.TransactionType, category string, period domain.DateRange) (decimal.Decimal, error) {
	return r.sum(ctx, "type = $2 AND category = $3", []interface{}{userID, transactionType, category}, period)
}

func (r *TransactionRepository) sum(ctx context.Context, condition string, args []interface{}, period domain.DateRange) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1 AND status = 'completed' AND ` + condition
	if !period.From.IsZero() {
		args = append(args, period.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !period.To.IsZero() {
		args = append(args, period.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *TransactionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// affectedOrNotFound maps a statement that touched no rows to notFound.
func affectedOrNotFound(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUUID guards id lookups; Postgres rejects malformed uuid input with an
// error rather than an empty result.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
