// File: internal/auth/otp.go
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/platform/crypto"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	otpDigits      = 6
	maxOTPAttempts = 5
	otpSendEvery   = 30 * time.Second
	otpSendBurst   = 3
)

// OTPRepository persists one pending code per email.
type OTPRepository interface {
	Upsert(ctx context.Context, code *OTPCode) error
	Find(ctx context.Context, email string) (*OTPCode, error)
	Delete(ctx context.Context, email string) error
	// ClaimAttempt counts one verification attempt unless max attempts are used up.
	// It reports false when the code is exhausted or gone.
	ClaimAttempt(ctx context.Context, email string, max int) (bool, error)
	// Consume deletes the pending code only if it still equals code.
	Consume(ctx context.Context, email, code string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormOTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &gormOTPRepository{db: db}
}

func (r *gormOTPRepository) Upsert(ctx context.Context, code *OTPCode) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "attempts", "created_at"}),
	}).Create(code).Error
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

func (r *gormOTPRepository) Find(ctx context.Context, email string) (*OTPCode, error) {
	var code OTPCode
	if err := r.db.WithContext(ctx).First(&code, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load otp: %w", err)
	}
	return &code, nil
}

func (r *gormOTPRepository) Delete(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Delete(&OTPCode{}, "email = ?", email).Error; err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

func (r *gormOTPRepository) ClaimAttempt(ctx context.Context, email string, max int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&OTPCode{}).
		Where("email = ? AND attempts < ?", email, max).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
	if result.Error != nil {
		return false, fmt.Errorf("failed to count otp attempt: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormOTPRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	result := r.db.WithContext(ctx).Where("email = ? AND code = ?", email, code).Delete(&OTPCode{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume otp: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&OTPCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired otps: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// OTPService issues and checks email one-time codes.
type OTPService struct {
	repo    OTPRepository
	mailer  Mailer
	limiter *sendLimiter
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

func NewOTPService(repo OTPRepository, mailer Mailer, cfg *config.Config, logger *zap.Logger) *OTPService {
	ttl := cfg.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPService{
		repo:    repo,
		mailer:  mailer,
		limiter: newSendLimiter(otpSendEvery, otpSendBurst),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.Named("otp"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Send replaces any pending code for email with a fresh one and mails it.
func (s *OTPService) Send(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !s.limiter.Allow(email, s.now()) {
		return common.ErrTooManyRequests.WithDetails("Please wait before requesting another code.")
	}
	code, err := crypto.GenerateNumericCode(otpDigits)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	now := s.now().UTC()
	if err := s.repo.Upsert(ctx, &OTPCode{Email: email, Code: code, ExpiresAt: now.Add(s.ttl), CreatedAt: now}); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, email, code, s.ttl); err != nil {
		s.logger.Error("Failed to deliver otp", zap.String("email", email), zap.Error(err))
		return common.ErrServiceUnavailable.WithDetails("Could not send the verification email.")
	}
	s.logger.Info("OTP sent", zap.String("email", email))
	return nil
}

// Verify checks code for email and consumes it on success. Every call spends one of
// the code's attempts, so concurrent guesses cannot exceed the limit.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	stored, err := s.repo.Find(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errOTPMissing()
		}
		return err
	}
	if s.now().After(stored.ExpiresAt) {
		s.discard(ctx, email, "expired")
		return common.ErrBadRequest.WithDetails("OTP has expired")
	}

	claimed, err := s.repo.ClaimAttempt(ctx, email, maxOTPAttempts)
	if err != nil {
		return err
	}
	if !claimed {
		if _, err := s.repo.Find(ctx, email); errors.Is(err, common.ErrNotFound) {
			return errOTPMissing()
		}
		s.discard(ctx, email, "attempts exhausted")
		return common.ErrTooManyRequests.WithDetails("Too many incorrect attempts. Request a new code.")
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return common.ErrBadRequest.WithDetails("Invalid OTP")
	}
	consumed, err := s.repo.Consume(ctx, email, code)
	if err != nil {
		return err
	}
	if !consumed {
		return errOTPMissing()
	}
	return nil
}

func errOTPMissing() error {
	return common.ErrBadRequest.WithDetails("OTP not found or expired")
}

func (s *OTPService) discard(ctx context.Context, email, reason string) {
	if err := s.repo.Delete(ctx, email); err != nil {
		s.logger.Warn("Failed to discard otp", zap.String("email", email), zap.String("reason", reason), zap.Error(err))
	}
}

// PurgeExpired removes codes past their expiry.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}
