// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service runs sign-up, sign-in and profile bootstrap on top of the identity provider.
type Service struct {
	accounts Accounts
	provider shared.IdentityProvider
	otp      *OTPService
	logger   *zap.Logger
}

func NewService(accounts Accounts, provider shared.IdentityProvider, otp *OTPService, logger *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		provider: provider,
		otp:      otp,
		logger:   logger.Named("auth"),
	}
}

// Bootstrap provisions the caller's profile after their first sign-in.
func (s *Service) Bootstrap(ctx context.Context, uid, email string, req user.BootstrapRequest) (*shared.User, bool, error) {
	if uid == "" {
		return nil, false, common.ErrUnauthorized
	}
	return s.accounts.Bootstrap(ctx, uid, email, req)
}

func (s *Service) SendOTP(ctx context.Context, email string) error {
	return s.otp.Send(ctx, email)
}

// RegisterWithOTP verifies the emailed code, creates the identity and the local
// profile, and returns a custom token for the new account.
func (s *Service) RegisterWithOTP(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.otp.Verify(ctx, email, req.OTP); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetUserByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uid, err := s.provider.CreateUser(ctx, email, req.Password, req.Metadata.FullName)
	if err != nil {
		return nil, identityError(err)
	}

	profile := user.BootstrapRequest{
		Role:             req.Role,
		DisplayName:      req.Metadata.FullName,
		OrganizationName: req.Metadata.OrganizationName,
		City:             req.Metadata.City,
		Area:             req.Metadata.Area,
	}
	if _, err := s.accounts.CreateWithPassword(ctx, uid, email, string(hash), profile); err != nil {
		s.logger.Error("Identity created but profile insert failed", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Account registered", zap.String("uid", uid), zap.String("role", profile.Role))
	return s.issue(ctx, uid)
}

// LoginWithOTP signs in an existing account with an emailed code.
func (s *Service) LoginWithOTP(ctx context.Context, req OTPLoginRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.otp.Verify(ctx, email, req.OTP); err != nil {
		return nil, err
	}
	uid, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrIdentityNotFound) {
			return nil, common.ErrNotFound.WithDetails("No account is registered with this email.")
		}
		return nil, identityError(err)
	}
	return s.issue(ctx, uid)
}

// LoginWithPassword checks the bcrypt hash stored at registration.
func (s *Service) LoginWithPassword(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	invalid := common.ErrUnauthorized.WithDetails("Invalid email or password.")
	uid, hash, err := s.accounts.PasswordHash(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, invalid
	}
	return s.issue(ctx, uid)
}

func (s *Service) Me(ctx context.Context, uid string) (*shared.User, error) {
	u, err := s.accounts.GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("User profile not found. Complete sign-up first.")
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateMe(ctx context.Context, uid string, req user.UpdateProfileRequest) (*shared.User, error) {
	if _, err := s.Me(ctx, uid); err != nil {
		return nil, err
	}
	return s.accounts.UpdateProfile(ctx, uid, req)
}

func (s *Service) issue(ctx context.Context, uid string) (*TokenResponse, error) {
	token, err := s.provider.CustomToken(ctx, uid)
	if err != nil {
		return nil, identityError(err)
	}
	return &TokenResponse{CustomToken: token, UID: uid}, nil
}

func identityError(err error) error {
	switch {
	case errors.Is(err, shared.ErrIdentityExists):
		return common.ErrConflict.WithDetails("An account with this email already exists.")
	case errors.Is(err, shared.ErrIdentityDisabled):
		return common.ErrServiceUnavailable.WithDetails("Authentication is not configured on this server.")
	}
	return fmt.Errorf("identity provider: %w", err)
}
