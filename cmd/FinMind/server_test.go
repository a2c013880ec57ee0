package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinMind/internal/auth"
	"github.com/sebuszqo/FinMind/internal/finance/interfaces"
	"github.com/sebuszqo/FinMind/internal/log"
)

func newTestServer(t *testing.T, health func(context.Context) map[string]string) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp, Output: &buf})
	authService := auth.NewService(nil, auth.NewJWTManager("test-secret", time.Minute), logger)
	return NewServer(authService, interfaces.Handlers{}, health, logger), &buf
}

func up(context.Context) map[string]string { return map[string]string{"status": "up"} }

func TestReady(t *testing.T) {
	s, _ := newTestServer(t, up)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ready"`)

	down, _ := newTestServer(t, func(context.Context) map[string]string {
		return map[string]string{"status": "down", "error": "db down"}
	})
	rr = httptest.NewRecorder()
	down.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestUnknownPaths(t *testing.T) {
	s, _ := newTestServer(t, up)

	for _, path := range []string{"/", "/api/unknown", "/api/protected/unknown"} {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Path not found", body["message"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s, buf := newTestServer(t, up)

	for _, path := range []string{
		"/api/protected/transactions",
		"/api/protected/dashboard/summary",
		"/api/protected/goals/active",
	} {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	logged := buf.String()
	assert.Contains(t, logged, "request completed")
	assert.Contains(t, logged, "status_code=401")
	assert.Contains(t, logged, "path=/api/protected/goals/active")
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	s, _ := newTestServer(t, up)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) CheckBudgets(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestStartAlertScheduler(t *testing.T) {
	checker := &countingChecker{err: errors.New("store unavailable")}
	c, err := startAlertScheduler("@every 1s", checker, log.Discard())
	require.NoError(t, err)
	defer c.Stop()

	assert.Eventually(t, func() bool { return checker.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	_, err = startAlertScheduler("not a schedule", checker, log.Discard())
	assert.Error(t, err)
}
