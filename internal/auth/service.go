package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/FinMind/internal/log"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 72
	maxNameLength     = 100
	bcryptCost        = 12
)

var (
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrPasswordLength     = fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	ErrNameLength         = fmt.Errorf("name must be at most %d characters", maxNameLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type Service struct {
	repo       UserRepository
	jwtManager *JWTManager
	logger     *log.Logger
	cost       int
	now        func() time.Time
}

func NewService(repo UserRepository, jwtManager *JWTManager, logger *log.Logger) *Service {
	return &Service{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     logger.WithComponent(log.ComponentAuth),
		cost:       bcryptCost,
		now:        time.Now,
	}
}

func validateEmailAddress(email string) error {
	if len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	// host lookups are skipped, registration must not depend on DNS
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	return string(hashed), err
}

func doPasswordsMatch(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func (s *Service) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, ErrPasswordLength
	}
	if len(name) > maxNameLength {
		return nil, ErrNameLength
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		s.logger.ErrorContext(ctx, "could not check email", log.FieldError, err.Error())
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, ErrEmailAlreadyExists) {
			s.logger.ErrorContext(ctx, "could not create user", log.FieldError, err.Error())
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", log.FieldUserID, user.ID)

	return s.issue(&user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	existingUser, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "could not load user", log.FieldError, err.Error())
		return nil, err
	}
	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(existingUser)
}

func (s *Service) issue(user *User) (*AuthResult, error) {
	token, expiresAt, err := s.jwtManager.GenerateAccessJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
