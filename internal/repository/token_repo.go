package repository

import (
	"context"
	"errors"
	"fmt"

	"star_studio/internal/model"

	"github.com/jackc/pgx/v5"
)

// TokenRepository stores at most one auth token per user
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID int64, candidateKey string) (*model.Token, error)
	FindByKey(ctx context.Context, key string) (*model.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

type tokenRepository struct {
	db DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db}
}

// GetOrCreate stores candidateKey for userID unless the user already has a
// token, in which case the existing one is returned. The no-op DO UPDATE
// makes RETURNING yield the winning row, so concurrent callers all see the
// same key. An unknown user yields ErrNotFound.
func (r *tokenRepository) GetOrCreate(ctx context.Context, userID int64, candidateKey string) (*model.Token, error) {
	sql := `INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
            ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
            RETURNING key, user_id, created_at`
	token := &model.Token{}
	err := r.db.QueryRow(ctx, sql, candidateKey, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get or create token: %w", err)
	}
	return token, nil
}

// FindByKey retrieves a token by its key
func (r *tokenRepository) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	sql := `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`
	token := &model.Token{}
	err := r.db.QueryRow(ctx, sql, key).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return token, nil
}

// DeleteByUserID removes the user's token if there is one
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	sql := `DELETE FROM auth_tokens WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, sql, userID); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
