package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

type spyInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (s *spyInvalidator) InvalidateUser(_ context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userID)
}

func (s *spyInvalidator) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.users...)
}
