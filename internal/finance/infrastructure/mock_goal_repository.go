package infrastructure

import (
	"context"
	"sync"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
)

type MockGoalRepository struct {
	mu    sync.RWMutex
	Goals []domain.Goal
	Err   error
}

func (m *MockGoalRepository) Save(_ context.Context, goal domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Goals = append(m.Goals, goal)
	return nil
}

func (m *MockGoalRepository) FindByID(_ context.Context, goalID string) (*domain.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, g := range m.Goals {
		if g.ID == goalID {
			found := g
			return &found, nil
		}
	}
	return nil, financeErrors.ErrGoalNotFound
}

func (m *MockGoalRepository) FindByUser(_ context.Context, userID string) ([]domain.Goal, error) {
	return m.filter(func(g domain.Goal) bool { return g.UserID == userID })
}

func (m *MockGoalRepository) FindActive(_ context.Context, userID string) ([]domain.Goal, error) {
	return m.filter(func(g domain.Goal) bool { return g.UserID == userID && !g.IsCompleted })
}

func (m *MockGoalRepository) FindCompleted(_ context.Context, userID string) ([]domain.Goal, error) {
	return m.filter(func(g domain.Goal) bool { return g.UserID == userID && g.IsCompleted })
}

func (m *MockGoalRepository) filter(match func(domain.Goal) bool) ([]domain.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.Goal
	for _, g := range m.Goals {
		if match(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MockGoalRepository) Update(_ context.Context, goal domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, g := range m.Goals {
		if g.ID == goal.ID {
			m.Goals[i] = goal
			return nil
		}
	}
	return financeErrors.ErrGoalNotFound
}

func (m *MockGoalRepository) Delete(_ context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, g := range m.Goals {
		if g.ID == goalID {
			m.Goals = append(m.Goals[:i], m.Goals[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrGoalNotFound
}
