package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"practice-tracker/internal/auth"
	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

// AuthService covers the session lifecycle: credential validation at
// registration/login and bearer token issue/verify.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repository.UserRepository, secret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, firstName, lastName, email, password string) (*domain.User, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)

	if firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("all fields are required: %w", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.Email, s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return sanitizeUser(user), token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required: %w", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid password: %w", domain.ErrUnauthorized)
	}

	token, err := auth.GenerateToken(user.Email, s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return sanitizeUser(user), token, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("token is required: %w", domain.ErrValidation)
	}

	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		// a token for a deleted user is no longer valid
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("token subject no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Problems:  user.Problems,
	}
}
