package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/validation"
)

const (
	MsgUsernameTaken   = "Username already exists."
	MsgPasswordTooLong = "Password cannot exceed 72 bytes."

	msgBadCredentials = "No active account found with the given credentials."
	msgBadRefresh     = "Token is invalid or expired."
)

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validator *validation.Validator
	logger    *slog.Logger

	// dummyHash is compared against when the username is unknown, so a
	// failed login costs one bcrypt comparison either way.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validator: validator,
		logger:    logger,
	}
}

// Register creates an account. Username and password problems are reported
// together; the password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	errs := in.invalid.Clone()
	errs.Require("username", in.Username)
	errs.Require("password", in.Password)

	// Passwords are taken verbatim; surrounding spaces are part of them.
	password := ""
	if in.Password != nil {
		password = *in.Password
	}
	fields := userFields{Username: trimmed(in.Username), Password: password}
	s.validator.Into(errs, fields)
	if !errs.Has("password") && len(password) > auth.MaxPasswordBytes {
		errs.Add("password", MsgPasswordTooLong)
	}

	if !errs.Has("username") {
		taken, err := s.users.UsernameExists(ctx, fields.Username)
		if err != nil {
			return nil, fmt.Errorf("service/auth: checking username: %w", err)
		}
		if taken {
			errs.Add("username", MsgUsernameTaken)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{Username: fields.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", MsgUsernameTaken)
		}
		s.logger.Error("failed to create user", slog.String("username", user.Username), slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and issues an access/refresh pair. An unknown
// username and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.TokenPair, error) {
	errs := in.invalid.Clone()
	errs.Require("username", in.Username)
	errs.Require("password", in.Password)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, trimmed(in.Username))
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up user: %w", err)
		}
		s.passwords.Verify(s.dummy(), *in.Password)
		return nil, apperror.Unauthorized(msgBadCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, *in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login failed", slog.String("username", user.Username))
			return nil, apperror.Unauthorized(msgBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password of %s: %w", user.ID, err)
	}

	access, err := s.tokens.GenerateAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}
	refresh, err := s.tokens.GenerateRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &model.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh trades a refresh token for a new access token. The user must
// still exist.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (string, error) {
	errs := in.invalid.Clone()
	errs.Require("refresh", in.Refresh)
	if err := errs.Err(); err != nil {
		return "", err
	}

	userID, err := s.tokens.ValidateRefresh(trimmed(in.Refresh))
	if err != nil {
		return "", apperror.Unauthorized(msgBadRefresh)
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized(msgBadRefresh)
		}
		return "", fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}

	access, err := s.tokens.GenerateAccess(userID)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return access, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwords.Hash("not-a-real-password")
		if err != nil {
			s.logger.Error("failed to build dummy hash", slog.String("error", err.Error()))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
