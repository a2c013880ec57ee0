package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/errors"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func IsValidTransactionType(t string) bool {
	return t == string(TransactionTypeIncome) || t == string(TransactionTypeExpense)
}

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func IsValidTransactionStatus(s string) bool {
	switch TransactionStatus(s) {
	case TransactionStatusCompleted, TransactionStatusPending, TransactionStatusCancelled:
		return true
	}
	return false
}

type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	PaymentMethod string            `json:"paymentMethod"`
	Date          time.Time         `json:"date"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Counted reports whether the transaction takes part in totals.
func (t *Transaction) Counted() bool {
	return t.Status == TransactionStatusCompleted
}

func (t *Transaction) Validate() error {
	if !IsValidTransactionType(string(t.Type)) {
		return errors.ErrInvalidTransactionType
	}
	if t.Amount.IsNegative() {
		return errors.ErrNegativeAmount
	}
	if err := CheckMoney("Amount", t.Amount); err != nil {
		return err
	}
	if !IsValidTransactionStatus(string(t.Status)) {
		return errors.ErrInvalidStatus
	}
	if t.Date.IsZero() {
		return errors.NewValidationError("Date is required")
	}
	if len(t.Description) > 200 {
		return errors.NewValidationError("Description must be of length less than 200")
	}
	return nil
}

// TransactionFilter narrows FindByUser. A zero Type matches both types, a
// zero Limit returns every row.
type TransactionFilter struct {
	Type  TransactionType
	Range DateRange
	Limit int
	Page  int
}

func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return f.Range.Contains(t.Date)
}

// TransactionRepository sums only count completed transactions. FindByID
// returns errors.ErrTransactionNotFound when the row is absent.
type TransactionRepository interface {
	Save(ctx context.Context, transaction Transaction) error
	FindByID(ctx context.Context, transactionID string) (*Transaction, error)
	FindByUser(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, error)
	Update(ctx context.Context, transaction Transaction) error
	Delete(ctx context.Context, transactionID string) error
	SumAmountByType(ctx context.Context, userID string, transactionType TransactionType, period DateRange) (decimal.Decimal, error)
	SumAmountByCategory(ctx context.Context, userID string, transactionType TransactionType, category string, period DateRange) (decimal.Decimal, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
