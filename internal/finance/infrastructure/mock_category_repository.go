package infrastructure

import (
	"context"
	"strings"
	"sync"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

type MockCategoryRepository struct {
	mu         sync.RWMutex
	Categories []domain.Category
	Err        error
}

func (m *MockCategoryRepository) Save(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Categories = append(m.Categories, category)
	return nil
}

func (m *MockCategoryRepository) FindByID(_ context.Context, categoryID string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.Categories {
		if c.ID == categoryID {
			found := c
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) FindByName(_ context.Context, userID, name string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var fallback *domain.Category
	for _, c := range m.Categories {
		if !strings.EqualFold(c.Name, name) || !c.VisibleTo(userID) {
			continue
		}
		found := c
		if c.UserID == userID {
			return &found, nil
		}
		fallback = &found
	}
	if fallback == nil {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return fallback, nil
}

func (m *MockCategoryRepository) FindByUser(_ context.Context, userID string) ([]domain.Category, error) {
	return m.filter(func(c domain.Category) bool { return c.VisibleTo(userID) })
}

func (m *MockCategoryRepository) FindDefaults(_ context.Context) ([]domain.Category, error) {
	return m.filter(func(c domain.Category) bool { return c.IsDefault })
}

func (m *MockCategoryRepository) filter(match func(domain.Category) bool) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.Category
	for _, c := range m.Categories {
		if match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCategoryRepository) ExistsByName(_ context.Context, userID, name, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, c := range m.Categories {
		if c.UserID == userID && c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, c := range m.Categories {
		if c.ID == category.ID {
			m.Categories[i] = category
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) Delete(_ context.Context, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, c := range m.Categories {
		if c.ID == categoryID {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}
