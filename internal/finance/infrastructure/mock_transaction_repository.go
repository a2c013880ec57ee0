package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

// MockTransactionRepository keeps transactions in memory. Err, when set, is
// returned by every method.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	Transactions []domain.Transaction
	Err          error
}

func (m *MockTransactionRepository) Save(_ context.Context, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Transactions = append(m.Transactions, transaction)
	return nil
}

func (m *MockTransactionRepository) FindByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID == transactionID {
			found := t
			return &found, nil
		}
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindByUser(_ context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var filtered []domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID == userID && filter.Matches(t) {
			filtered = append(filtered, t)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		start := (page - 1) * filter.Limit
		if start >= len(filtered) {
			return []domain.Transaction{}, nil
		}
		end := min(start+filter.Limit, len(filtered))
		filtered = filtered[start:end]
	}
	return filtered, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transaction.ID {
			m.Transactions[i] = transaction
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Delete(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transactionID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) SumAmountByType(_ context.Context, userID string, transactionType domain.TransactionType, period domain.DateRange) (decimal.Decimal, error) {
	return m.sum(func(t domain.Transaction) bool {
		return t.UserID == userID && t.Type == transactionType && period.Contains(t.Date)
	})
}

func (m *MockTransactionRepository) SumAmountByCategory(_ context.Context, userID string, transactionType domain.TransactionType, category string, period domain.DateRange) (decimal.Decimal, error) {
	return m.sum(func(t domain.Transaction) bool {
		return t.UserID == userID && t.Type == transactionType && t.Category == category && period.Contains(t.Date)
	})
}

func (m *MockTransactionRepository) sum(match func(domain.Transaction) bool) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.Counted() && match(t) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *MockTransactionRepository) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, t := range m.Transactions {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}
