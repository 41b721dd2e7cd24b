package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadportal_backend/internal/auth/password"
	"leadportal_backend/internal/auth/repository"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// Roles assignable at registration.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is the authenticated view of a user returned to clients.
type Account struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     string
}

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a user with the given role and returns the account plus a
// signed access token.
func (s *Service) Register(ctx context.Context, username, email, plainPassword, role string) (Account, string, error) {
	if role != RoleAdmin && role != RoleVendor {
		return Account{}, "", apperr.Validation("invalid or missing role")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return Account{}, "", err
	}

	user, err := s.repo.CreateUser(ctx, strings.TrimSpace(username), normalizeEmail(email), hash, role)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return Account{}, "", apperr.New(apperr.KindConflict, "user already exists")
	}
	if err != nil {
		return Account{}, "", err
	}

	token, err := s.signJWT(user)
	if err != nil {
		return Account{}, "", err
	}

	return toAccount(user), token, nil
}

// Login verifies credentials and returns the account plus a signed access token.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (Account, string, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return Account{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, "", err
	}

	if !password.Verify(user.PasswordHash, plainPassword) {
		return Account{}, "", ErrInvalidCredentials
	}

	token, err := s.signJWT(user)
	if err != nil {
		return Account{}, "", err
	}

	return toAccount(user), token, nil
}

func (s *Service) signJWT(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"type":     accessTokenType,
		"username": user.Username,
		"roles":    []string{user.Role},
		"exp":      now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":      now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toAccount(user repository.User) Account {
	return Account{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
