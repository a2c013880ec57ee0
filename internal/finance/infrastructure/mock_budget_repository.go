package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

type MockBudgetRepository struct {
	mu      sync.RWMutex
	Budgets []domain.Budget
	Err     error
}

func (m *MockBudgetRepository) Save(_ context.Context, budget domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Budgets = append(m.Budgets, budget)
	return nil
}

func (m *MockBudgetRepository) FindByID(_ context.Context, budgetID string) (*domain.Budget, error) {
	return m.first(func(b domain.Budget) bool { return b.ID == budgetID })
}

func (m *MockBudgetRepository) FindByCategory(_ context.Context, userID, categoryID string) (*domain.Budget, error) {
	return m.first(func(b domain.Budget) bool { return b.UserID == userID && b.CategoryID == categoryID })
}

func (m *MockBudgetRepository) first(match func(domain.Budget) bool) (*domain.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, b := range m.Budgets {
		if match(b) {
			found := b
			return &found, nil
		}
	}
	return nil, financeErrors.ErrBudgetNotFound
}

func (m *MockBudgetRepository) FindByUser(_ context.Context, userID string) ([]domain.Budget, error) {
	return m.filter(func(b domain.Budget) bool { return b.UserID == userID })
}

func (m *MockBudgetRepository) FindActive(_ context.Context, userID string, now time.Time) ([]domain.Budget, error) {
	return m.filter(func(b domain.Budget) bool { return b.UserID == userID && b.IsActive(now) })
}

func (m *MockBudgetRepository) FindPendingAlerts(_ context.Context, now time.Time) ([]domain.Budget, error) {
	return m.filter(func(b domain.Budget) bool {
		return b.IsActive(now) && b.Alerts.Enabled && !b.Alerts.Notified
	})
}

func (m *MockBudgetRepository) filter(match func(domain.Budget) bool) ([]domain.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.Budget
	for _, b := range m.Budgets {
		if match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBudgetRepository) MarkNotified(_ context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Budgets {
		if m.Budgets[i].ID == budgetID {
			m.Budgets[i].Alerts.Notified = true
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}

func (m *MockBudgetRepository) Update(_ context.Context, budget domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, b := range m.Budgets {
		if b.ID == budget.ID {
			m.Budgets[i] = budget
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}

func (m *MockBudgetRepository) Delete(_ context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, b := range m.Budgets {
		if b.ID == budgetID {
			m.Budgets = append(m.Budgets[:i], m.Budgets[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}
