package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/FinMind/internal/log"
)

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]User
	err   error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]User{}}
}

func (m *memoryUserRepository) Create(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func newTestService(repo UserRepository) *Service {
	service := NewService(repo, NewJWTManager("test-secret", 15*time.Minute), log.Discard())
	service.cost = bcrypt.MinCost
	return service
}

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)

	token, expiresAt, err := manager.GenerateAccessJWT("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	userID, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTManager_Rejects(t *testing.T) {
	manager := NewJWTManager("secret", 15*time.Minute)

	t.Run("expired", func(t *testing.T) {
		manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { manager.now = time.Now }()

		token, _, err := manager.GenerateAccessJWT("user-1")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredJWTToken)
	})

	t.Run("other secret", func(t *testing.T) {
		token, _, err := NewJWTManager("other", time.Minute).GenerateAccessJWT("user-1")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepository()
	service := newTestService(repo)

	result, err := service.Register(ctx, " Ana@Example.com ", "password123", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, "password123", result.User.PasswordHash)
	assert.True(t, doPasswordsMatch(result.User.PasswordHash, "password123"))

	userID, err := service.jwtManager.ValidateAccessToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)

	_, err = service.Register(ctx, "ana@example.com", "password456", "Other")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_RegisterValidation(t *testing.T) {
	service := newTestService(newMemoryUserRepository())
	ctx := context.Background()

	_, err := service.Register(ctx, "not-an-email", "password123", "Ana")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.Register(ctx, "ana@example.com", "short", "Ana")
	assert.ErrorIs(t, err, ErrPasswordLength)

	_, err = service.Register(ctx, "ana@example.com", "password123", strings.Repeat("a", maxNameLength+1))
	assert.ErrorIs(t, err, ErrNameLength)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryUserRepository())

	registered, err := service.Register(ctx, "ana@example.com", "password123", "Ana")
	require.NoError(t, err)

	result, err := service.Login(ctx, "ANA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	_, err = service.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginStoreFailure(t *testing.T) {
	repo := newMemoryUserRepository()
	repo.err = errors.New("connection refused")
	service := newTestService(repo)

	_, err := service.Login(context.Background(), "ana@example.com", "password123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTAccessTokenMiddleware(t *testing.T) {
	service := newTestService(newMemoryUserRepository())
	registered, err := service.Register(context.Background(), "ana@example.com", "password123", "Ana")
	require.NoError(t, err)

	ghostToken, _, err := service.jwtManager.GenerateAccessJWT("3f1c2a90-0000-4000-8000-000000000000")
	require.NoError(t, err)

	var seen string
	protected := service.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + registered.Token, http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghostToken, http.StatusUnauthorized},
		{"valid", "Bearer " + registered.Token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/protected/dashboard/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			protected.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, registered.User.ID, seen)
			} else {
				assert.Empty(t, seen)
				assert.Contains(t, rr.Body.String(), `"status":"error"`)
			}
		})
	}
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	handler := NewHandler(newTestService(newMemoryUserRepository()))

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		h(rr, req)
		return rr
	}

	rr := post(handler.HandleRegister, `{"email":"ana@example.com","password":"password123","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered struct {
		Status string     `json:"status"`
		Data   AuthResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.Equal(t, "success", registered.Status)
	assert.NotEmpty(t, registered.Data.Token)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = post(handler.HandleRegister, `{"email":"ana@example.com","password":"password123","name":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(handler.HandleRegister, `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(handler.HandleLogin, `{"email":"ana@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token"`)

	rr = post(handler.HandleLogin, `{"email":"ana@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(handler.HandleLogin, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
