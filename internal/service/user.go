package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
)

// UserService handles sign-in and session lookups.
type UserService struct {
	store   UserStore
	tokens  TokenIssuer
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens TokenIssuer, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{store: store, tokens: tokens, metrics: recorder}
}

// SignIn checks the credentials and returns the user with a fresh session token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncSignIn(false)
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.metrics.IncSignIn(false)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncSignIn(true)
	return user, token, nil
}

// Me returns the account behind a session.
func (s *UserService) Me(ctx context.Context, claims *model.SessionClaims) (*model.User, error) {
	if claims == nil {
		return nil, ErrUserNotFound
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
