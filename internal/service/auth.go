// Package service holds the business rules of the API. Handlers call
// services; services call repositories through the interfaces in package
// repository and report failures as apperror values.
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                               ↘ TokenService, PasswordService
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
	"github.com/sakif/devlink/internal/validate"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validate.Validator
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	v *validate.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validate:  v,
		logger:    logger,
	}
}

// Register creates an account and returns a session token for it. The
// avatar is derived from the email; the password is stored only as a bcrypt
// hash. An email that is already registered fails with DuplicateUser and no
// token is issued.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}
	// bcrypt only reads the first 72 bytes.
	if len(in.Password) > 72 {
		return "", apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", apperror.DuplicateUser()
	case !errors.Is(err, apperror.ErrNotFound):
		return "", fmt.Errorf("service/auth: looking up %s: %w", in.Email, err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Avatar:   auth.AvatarURL(in.Email),
	}
	// A concurrent registration of the same email surfaces here as
	// DuplicateUser from the unique index.
	if err := s.users.Create(ctx, user); err != nil {
		return "", fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user.ID)
}

// Login checks an email and password pair. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", invalidCredentials()
		}
		return "", fmt.Errorf("service/auth: looking up %s: %w", in.Email, err)
	}

	if err := s.passwords.Verify(user.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return "", invalidCredentials()
		}
		return "", fmt.Errorf("service/auth: %w", err)
	}

	return s.issue(user.ID)
}

// CurrentUser returns the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", userID, err)
	}
	return token, nil
}

func invalidCredentials() *apperror.AppError {
	return apperror.ValidationFailed("", "Invalid Credentials")
}
