package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// Unique constraint names from the migrations.
const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
// pgxmock's pool satisfies it as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgErrorCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// translateUserConstraint maps a unique violation on users to a domain error.
func translateUserConstraint(err error) error {
	pgErr, ok := pgErrorCode(err)
	if !ok || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usersUsernameKey:
		return ErrDuplicateUsername
	case usersEmailKey:
		return ErrDuplicateEmail
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgErrorCode(err)
	return ok && pgErr.Code == pgerrcode.ForeignKeyViolation
}
