package interfaces

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
)

func TestGoalLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/protected/goals",
		`{"name":"New car","targetAmount":"1000","currentAmount":"250","targetDate":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created application.GoalView
	decodeEnvelope(t, rr, &created)
	assert.True(t, decimal.NewFromInt(25).Equal(created.Progress))
	assert.Equal(t, domain.GoalTypeSavings, created.Type)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.False(t, created.IsCompleted)

	path := "/api/protected/goals/" + created.ID
	rr = s.do(t, http.MethodPut, path, `{"name":"Used car","priority":"high"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated application.GoalView
	decodeEnvelope(t, rr, &updated)
	assert.Equal(t, "Used car", updated.Name)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	rr = s.do(t, http.MethodPut, path+"/progress", `{"currentAmount":"1000"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var progressed application.GoalView
	decodeEnvelope(t, rr, &progressed)
	assert.True(t, progressed.IsCompleted)

	rr = s.do(t, http.MethodPut, path+"/progress", `{"currentAmount":"1100"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Goal is already completed", decodeEnvelope(t, rr, nil).Message)

	rr = s.do(t, http.MethodPut, path, `{"name":"Bike"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "A completed goal cannot be modified", decodeEnvelope(t, rr, nil).Message)

	var completed, active []application.GoalView
	rr = s.do(t, http.MethodGet, "/api/protected/goals/completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	decodeEnvelope(t, rr, &completed)
	assert.Len(t, completed, 1)
	rr = s.do(t, http.MethodGet, "/api/protected/goals/active", "")
	require.Equal(t, http.StatusOK, rr.Code)
	decodeEnvelope(t, rr, &active)
	assert.Empty(t, active)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "").Code)
}

func TestCompleteGoal(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/protected/goals",
		`{"name":"Trip","targetAmount":"800","targetDate":"2099-06-01","type":"purchase","priority":"low"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created application.GoalView
	decodeEnvelope(t, rr, &created)

	rr = s.do(t, http.MethodPost, "/api/protected/goals/"+created.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var done application.GoalView
	decodeEnvelope(t, rr, &done)
	assert.True(t, done.IsCompleted)
	assert.True(t, decimal.NewFromInt(800).Equal(done.CurrentAmount))
	assert.True(t, decimal.NewFromInt(100).Equal(done.Progress))

	rr = s.do(t, http.MethodPost, "/api/protected/goals/"+created.ID+"/complete", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/protected/goals/"+unknownID+"/complete", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Goal not found", decodeEnvelope(t, rr, nil).Message)
}

func TestCreateGoal_Invalid(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"past target date", `{"name":"Old","targetAmount":"10","targetDate":"2020-01-01"}`, "Target date must be in the future"},
		{"no name", `{"targetAmount":"10","targetDate":"2099-01-01"}`, "Name is required"},
		{"zero target", `{"name":"Zero","targetAmount":"0","targetDate":"2099-01-01"}`, "Target amount must be greater than zero"},
		{"bad priority", `{"name":"P","targetAmount":"10","targetDate":"2099-01-01","priority":"urgent"}`, "Priority must be 'low', 'medium' or 'high'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/api/protected/goals", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, decodeEnvelope(t, rr, nil).Message)
		})
	}

	rr := s.do(t, http.MethodPut, "/api/protected/goals/"+unknownID+"/progress", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Current amount is required", decodeEnvelope(t, rr, nil).Message)
	assert.Empty(t, s.goals.Goals)
}
