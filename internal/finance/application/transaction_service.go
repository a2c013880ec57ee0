package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type TransactionService struct {
	repo        domain.TransactionRepository
	invalidator CacheInvalidator
	logger      *log.Logger
	now         func() time.Time
}

// NewTransactionService builds the service. invalidator may be nil.
func NewTransactionService(repo domain.TransactionRepository, invalidator CacheInvalidator, logger *log.Logger) *TransactionService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &TransactionService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentFinance),
		now:         time.Now,
	}
}

type TransactionSummary struct {
	Year         int                     `json:"year"`
	IncomeTotal  decimal.Decimal         `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal         `json:"expenseTotal"`
	Months       map[string]MonthSummary `json:"months"`
}

type MonthSummary struct {
	IncomeTotal  decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
	Weeks        []WeekSummary   `json:"weeks"`
}

type WeekSummary struct {
	Week         int             `json:"week"`
	IncomeTotal  decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
}

func addByType(t domain.TransactionType, amount decimal.Decimal, income, expense *decimal.Decimal) {
	switch t {
	case domain.TransactionTypeIncome:
		*income = income.Add(amount)
	case domain.TransactionTypeExpense:
		*expense = expense.Add(amount)
	}
}

// GetTransactionSummary groups completed transactions in period by year,
// month name and ISO week.
func (s *TransactionService) GetTransactionSummary(ctx context.Context, userID string, period domain.DateRange) (map[int]TransactionSummary, error) {
	transactions, err := s.repo.FindByUser(ctx, userID, domain.TransactionFilter{Range: period})
	if err != nil {
		return nil, logFailure(ctx, s.logger, "transaction_summary", userID, err)
	}

	summary := make(map[int]TransactionSummary)
	for _, transaction := range transactions {
		if !transaction.Counted() {
			continue
		}
		year := transaction.Date.Year()
		month := transaction.Date.Month().String()
		_, week := transaction.Date.ISOWeek()

		yearSummary, exists := summary[year]
		if !exists {
			yearSummary = TransactionSummary{Year: year, Months: make(map[string]MonthSummary)}
		}
		monthSummary, exists := yearSummary.Months[month]
		if !exists {
			monthSummary = MonthSummary{Weeks: []WeekSummary{}}
		}

		addByType(transaction.Type, transaction.Amount, &yearSummary.IncomeTotal, &yearSummary.ExpenseTotal)
		addByType(transaction.Type, transaction.Amount, &monthSummary.IncomeTotal, &monthSummary.ExpenseTotal)

		found := false
		for i := range monthSummary.Weeks {
			if monthSummary.Weeks[i].Week == week {
				addByType(transaction.Type, transaction.Amount, &monthSummary.Weeks[i].IncomeTotal, &monthSummary.Weeks[i].ExpenseTotal)
				found = true
				break
			}
		}
		if !found {
			weekSummary := WeekSummary{Week: week}
			addByType(transaction.Type, transaction.Amount, &weekSummary.IncomeTotal, &weekSummary.ExpenseTotal)
			monthSummary.Weeks = append(monthSummary.Weeks, weekSummary)
		}

		yearSummary.Months[month] = monthSummary
		summary[year] = yearSummary
	}
	return summary, nil
}

// prepare fills defaults and validates a transaction about to be stored.
func (s *TransactionService) prepare(transaction *domain.Transaction) error {
	if transaction.Status == "" {
		transaction.Status = domain.TransactionStatusCompleted
	}
	return transaction.Validate()
}

func (s *TransactionService) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	if err := s.prepare(transaction); err != nil {
		return err
	}
	now := s.now().UTC()
	transaction.ID = uuid.NewString()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	if err := s.repo.Save(ctx, *transaction); err != nil {
		return logFailure(ctx, s.logger, "create_transaction", transaction.UserID, err)
	}
	s.invalidator.InvalidateUser(ctx, transaction.UserID)
	return nil
}

// CreateTransactionsBulk validates every transaction first and stores none
// of them when any is invalid. Errors carry the 1-based position.
func (s *TransactionService) CreateTransactionsBulk(ctx context.Context, userID string, transactions []*domain.Transaction) error {
	validationErrors := &financeErrors.ValidationErrors{}
	for i, transaction := range transactions {
		transaction.UserID = userID
		if err := s.prepare(transaction); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
		}
	}
	if err := validationErrors.Err(); err != nil {
		return err
	}

	now := s.now().UTC()
	for _, transaction := range transactions {
		transaction.ID = uuid.NewString()
		transaction.CreatedAt = now
		transaction.UpdatedAt = now
		if err := s.repo.Save(ctx, *transaction); err != nil {
			s.invalidator.InvalidateUser(ctx, userID)
			return logFailure(ctx, s.logger, "create_transactions_bulk", userID, err)
		}
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}

// GetTransaction hides transactions of other users behind NotFound.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "get_transaction", userID, err)
	}
	if transaction.UserID != userID {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetUserTransactions lists a page of transactions, newest first.
func (s *TransactionService) GetUserTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Type != "" && !domain.IsValidTransactionType(string(filter.Type)) {
		return nil, financeErrors.ErrInvalidTransactionType
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	filter.Limit = min(filter.Limit, MaxPageSize)
	filter.Page = max(filter.Page, 1)

	transactions, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "list_transactions", userID, err)
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

// UpdateTransaction replaces the editable fields of an owned transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID string, changes domain.Transaction) (*domain.Transaction, error) {
	existing, err := s.GetTransaction(ctx, userID, changes.ID)
	if err != nil {
		return nil, err
	}

	existing.Amount = changes.Amount
	existing.Description = changes.Description
	existing.Category = changes.Category
	existing.PaymentMethod = changes.PaymentMethod
	if !changes.Date.IsZero() {
		existing.Date = changes.Date
	}
	if changes.Status != "" {
		existing.Status = changes.Status
	}
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	existing.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, logFailure(ctx, s.logger, "update_transaction", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return existing, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if _, err := s.GetTransaction(ctx, userID, transactionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, transactionID); err != nil {
		return logFailure(ctx, s.logger, "delete_transaction", userID, err)
	}
	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}

// GetBalance is lifetime completed income minus lifetime completed expense.
func (s *TransactionService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	income, err := s.repo.SumAmountByType(ctx, userID, domain.TransactionTypeIncome, domain.DateRange{})
	if err != nil {
		return decimal.Zero, logFailure(ctx, s.logger, "balance", userID, err)
	}
	expenses, err := s.repo.SumAmountByType(ctx, userID, domain.TransactionTypeExpense, domain.DateRange{})
	if err != nil {
		return decimal.Zero, logFailure(ctx, s.logger, "balance", userID, err)
	}
	return income.Sub(expenses), nil
}
