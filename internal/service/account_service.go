package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"star_studio/internal/logging"
	"star_studio/internal/model"
	"star_studio/internal/repository"
	"star_studio/internal/utils"

	"github.com/go-playground/validator/v10"
)

// RegisterInput carries the registration form
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     int64
}

// AccountService provides the account lifecycle and credential checks
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, *model.Token, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *model.Token, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AuthenticateToken(ctx context.Context, key string) (*model.User, error)
}

type accountService struct {
	users    repository.UserRepository
	tokens   TokenService
	hasher   utils.PasswordHasher
	policy   utils.PasswordPolicy
	validate *validator.Validate
	logger   logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService creates a new AccountService
func NewAccountService(
	users repository.UserRepository,
	tokens TokenService,
	hasher utils.PasswordHasher,
	policy utils.PasswordPolicy,
	logger logging.Logger,
) AccountService {
	return &accountService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		policy:   policy,
		validate: validator.New(),
		logger:   logger.With("component", "account_service"),
	}
}

// Register creates a user with a hashed password and hands out its token
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*model.User, *model.Token, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Password != in.ConfirmPassword {
		return nil, nil, fieldError(ErrValidation, "password", "Password fields didn't match.")
	}
	if err := s.validateRegistration(in); err != nil {
		return nil, nil, err
	}
	if err := s.policy.Validate(in.Password, map[string]string{"username": in.Username, "email": in.Email}); err != nil {
		return nil, nil, fieldError(ErrValidation, "password", err.Error())
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		PhoneNumber:  in.PhoneNumber,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, nil, fieldError(ErrUniqueness, "username", "A user with that username already exists.")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, nil, fieldError(ErrUniqueness, "email", "This field must be unique.")
		}
		return nil, nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.tokens.IssueOrGet(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "user created, but failed to issue token", "user_id", user.ID, "error", err)
		return nil, nil, fmt.Errorf("user created, but failed to issue token: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

func (s *accountService) validateRegistration(in RegisterInput) error {
	checks := []struct {
		field string
		value any
		tag   string
		msg   string
	}{
		{"username", in.Username, "required,max=100", "Enter a valid username of at most 100 characters."},
		{"email", in.Email, "required,email,max=100", "Enter a valid email address."},
		{"phone_number", in.PhoneNumber, "gt=0", "Enter a valid phone number."},
	}
	for _, c := range checks {
		if err := s.validate.Var(c.value, c.tag); err != nil {
			return fieldError(ErrValidation, c.field, c.msg)
		}
	}
	return nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *accountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same hashing time as a real check.
			s.hasher.Check(password, s.dummy())
			s.logger.Warn(ctx, "login failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		s.logger.Warn(ctx, "login failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

func (s *accountService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn(ctx, "failed to rehash password", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn(ctx, "failed to store rehashed password", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	s.logger.Info(ctx, "password hash upgraded", "user_id", user.ID)
}

func (s *accountService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// Login authenticates and returns the user's token
func (s *accountService) Login(ctx context.Context, email, password string) (*model.User, *model.Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	token, err := s.tokens.IssueOrGet(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// ChangePassword replaces the password after verifying the old one
func (s *accountService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(oldPassword, user.PasswordHash) {
		s.logger.Warn(ctx, "password change rejected", "user_id", user.ID)
		return nil, fieldError(ErrInvalidCredentials, "old_password", "Wrong password.")
	}
	if err := s.policy.Validate(newPassword, map[string]string{"username": user.Username, "email": user.Email}); err != nil {
		return nil, fieldError(ErrValidation, "new_password", err.Error())
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = hash

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return user, nil
}

func (s *accountService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *accountService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the user together with its token
func (s *accountService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// AuthenticateToken resolves a bearer token to its owner
func (s *accountService) AuthenticateToken(ctx context.Context, key string) (*model.User, error) {
	userID, err := s.tokens.Owner(ctx, key)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
