package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/auth"
	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

const MinPasswordLength = 8

// AuthService handles registration, login, email verification, and the
// password lifecycle. Verification and reset emails are best effort: a
// delivery failure never fails the triggering request, it only shows up
// in the email log.
type AuthService struct {
	users       repository.UserRepository
	dispatcher  *mailer.Dispatcher
	tokens      *auth.TokenService
	logger      *slog.Logger
	frontendURL string
}

// NewAuthService creates an AuthService. frontendURL is the base for the
// links embedded in verification and reset emails.
func NewAuthService(users repository.UserRepository, dispatcher *mailer.Dispatcher, tokens *auth.TokenService, logger *slog.Logger, frontendURL string) *AuthService {
	return &AuthService{
		users:       users,
		dispatcher:  dispatcher,
		tokens:      tokens,
		logger:      logger,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates an unverified account and sends a verification email.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := normalizeEmail(input.Email)
	firstName := strings.TrimSpace(input.FirstName)

	fields := map[string]string{}
	if email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "email is not valid"
	}
	if len(input.Password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if firstName == "" {
		fields["firstName"] = "first name is required"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "password is too long")
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         firstName,
		LastName:          strings.TrimSpace(input.LastName),
		Role:              model.RoleUser,
		IsActive:          true,
		VerificationToken: uuid.NewString(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, user)

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *model.User) {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, user.VerificationToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Job Tracker! Please verify your email address by visiting:\n\n%s",
		user.FirstName, link,
	)
	s.dispatcher.Dispatch(ctx, model.EmailVerification, user.ID, user.Email,
		"Verify your email address", body)
}

// VerifyEmail marks the account holding this token as verified and
// rotates the token so the link is single use.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.ValidationFailed("token", "verification token is required")
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("token", "verification token is invalid or expired")
		}
		return nil, err
	}

	user.IsEmailVerified = true
	user.VerificationToken = uuid.NewString()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("marking user verified: %w", err)
	}

	s.logger.Info("email verified", slog.String("id", user.ID))
	return user, nil
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same error so neither can be probed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("this account has been deactivated")
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return &LoginResult{Token: token, User: user}, nil
}

// Me returns the authenticated user's own record.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ProfileInput carries a profile update. Nil fields are left untouched.
type ProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateProfile changes the authenticated user's own name fields. Email,
// role, and flags are not self-service.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		firstName := strings.TrimSpace(*input.FirstName)
		if firstName == "" {
			return nil, apperror.ValidationFailed("firstName", "first name is required")
		}
		user.FirstName = firstName
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("id", userID))
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperror.Unauthorized("current password is incorrect")
	}
	if len(next) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return apperror.ValidationFailed("newPassword", "password is too long")
		}
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("saving password: %w", err)
	}

	s.logger.Info("password changed", slog.String("id", userID))
	return nil
}

// RequestPasswordReset sends a reset link if an active account holds the
// address. The response is identical either way, so the endpoint cannot
// be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	user.VerificationToken = uuid.NewString()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, user.VerificationToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Visit the link below to choose a new one:\n\n%s\n\nIf you did not request this, you can safely ignore this email.",
		user.FirstName, link,
	)
	s.dispatcher.Dispatch(ctx, model.EmailPasswordReset, user.ID, user.Email,
		"Reset your password", body)
	return nil
}

// ConfirmPasswordReset sets a new password for the account holding the
// reset token, then rotates the token.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperror.ValidationFailed("token", "reset token is required")
	}
	if len(newPassword) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("token", "reset token is invalid or expired")
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return apperror.ValidationFailed("newPassword", "password is too long")
		}
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = hash
	user.VerificationToken = uuid.NewString()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("saving password: %w", err)
	}

	s.logger.Info("password reset", slog.String("id", user.ID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
