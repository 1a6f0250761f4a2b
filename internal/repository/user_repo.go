package repository

import (
	"context"
	"errors"
	"fmt"

	"star_studio/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Duplicate usernames or emails are rejected by
// the unique indexes and reported as ErrDuplicateUsername / ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, email, password_hash, phone_number)
            VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, user.Username, user.Email, user.PasswordHash, user.PhoneNumber).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if dup := translateUserConstraint(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT id, username, email, password_hash, phone_number, created_at FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	sql := `SELECT id, username, email, password_hash, phone_number, created_at FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored hash. It is the only mutation of an
// existing user: phone number, username and email never change.
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sql := `UPDATE users SET password_hash = $1 WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, sql, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user; its auth token goes with it (ON DELETE CASCADE)
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	sql := `DELETE FROM users WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by ID
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	sql := `SELECT id, username, email, password_hash, phone_number, created_at FROM users ORDER BY id`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.PhoneNumber, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
