package service

import (
	"context"
	"errors"
	"fmt"

	"star_studio/internal/model"
	"star_studio/internal/repository"
	"star_studio/internal/utils"
)

// TokenService issues and resolves the single opaque token each user owns
type TokenService interface {
	// IssueOrGet returns the user's token, creating it on first use.
	// Repeated and concurrent calls return the same key.
	IssueOrGet(ctx context.Context, userID int64) (*model.Token, error)
	// Owner resolves a token key to the owning user's ID.
	Owner(ctx context.Context, key string) (int64, error)
	// Revoke deletes the user's token, if any.
	Revoke(ctx context.Context, userID int64) error
}

type tokenService struct {
	repo        repository.TokenRepository
	generateKey func() (string, error)
}

// NewTokenService creates a new TokenService
func NewTokenService(repo repository.TokenRepository) TokenService {
	return &tokenService{repo: repo, generateKey: utils.GenerateTokenKey}
}

func (s *tokenService) IssueOrGet(ctx context.Context, userID int64) (*model.Token, error) {
	candidate, err := s.generateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token key: %w", err)
	}
	token, err := s.repo.GetOrCreate(ctx, userID, candidate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (s *tokenService) Owner(ctx context.Context, key string) (int64, error) {
	if len(key) != 2*utils.TokenKeyBytes {
		return 0, ErrInvalidToken
	}
	token, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to look up token: %w", err)
	}
	return token.UserID, nil
}

func (s *tokenService) Revoke(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
