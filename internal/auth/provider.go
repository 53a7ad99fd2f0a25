// File: internal/auth/provider.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/firebase"
	"educycle_backend/internal/platform/crypto"
	"educycle_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const devIssuer = "educycle_backend_dev"

// NewIdentityProvider picks Firebase when a service account is configured, then the
// local JWT provider when AUTH_DEV_SECRET is set. With neither, every token is refused.
func NewIdentityProvider(cfg *config.Config, fb *firebase.FirebaseService, accounts AccountLookup, logger *zap.Logger) shared.IdentityProvider {
	if fb != nil {
		return fb
	}
	if strings.TrimSpace(cfg.AuthDevSecret) != "" {
		logger.Warn("Using local development identity provider; do not use in production.")
		return NewDevProvider(cfg.AuthDevSecret, cfg.AuthDevTokenTTL, accounts, logger)
	}
	logger.Warn("No identity provider configured; authenticated routes will answer 503.")
	return disabledProvider{}
}

// DevProvider issues and verifies HS256 tokens signed with a shared secret. Custom
// tokens it mints are accepted directly as ID tokens.
type DevProvider struct {
	secret   []byte
	ttl      time.Duration
	accounts AccountLookup
	logger   *zap.Logger
}

var _ shared.IdentityProvider = (*DevProvider)(nil)

type devClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func NewDevProvider(secret string, ttl time.Duration, accounts AccountLookup, logger *zap.Logger) *DevProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DevProvider{secret: []byte(secret), ttl: ttl, accounts: accounts, logger: logger.Named("dev_identity")}
}

// IssueToken signs a token for uid carrying email.
func (p *DevProvider) IssueToken(uid, email string) (string, error) {
	now := time.Now()
	claims := &devClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    devIssuer,
			Subject:   uid,
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		p.logger.Error("Failed to sign token", zap.Error(err))
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return tokenString, nil
}

func (p *DevProvider) VerifyIDToken(_ context.Context, idToken string) (*shared.IdentityToken, error) {
	claims := &devClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(devIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &shared.IdentityToken{UID: claims.Subject, Email: claims.Email}, nil
}

func (p *DevProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	email := ""
	if p.accounts != nil {
		if u, err := p.accounts.GetUserByUID(ctx, uid); err == nil {
			email = u.Email
		}
	}
	return p.IssueToken(uid, email)
}

// CreateUser allocates a uid for a new email. Existing local profiles count as taken.
func (p *DevProvider) CreateUser(ctx context.Context, email, _, _ string) (string, error) {
	if _, err := p.GetUserByEmail(ctx, email); err == nil {
		return "", shared.ErrIdentityExists
	} else if !errors.Is(err, shared.ErrIdentityNotFound) {
		return "", err
	}
	suffix, err := crypto.GenerateSecureRandomString(15)
	if err != nil {
		return "", fmt.Errorf("failed to generate uid: %w", err)
	}
	return "dev_" + suffix, nil
}

func (p *DevProvider) GetUserByEmail(ctx context.Context, email string) (string, error) {
	if p.accounts == nil {
		return "", shared.ErrIdentityNotFound
	}
	u, err := p.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", shared.ErrIdentityNotFound
		}
		return "", err
	}
	return u.UID, nil
}

type disabledProvider struct{}

func (disabledProvider) VerifyIDToken(context.Context, string) (*shared.IdentityToken, error) {
	return nil, shared.ErrIdentityDisabled
}

func (disabledProvider) CustomToken(context.Context, string) (string, error) {
	return "", shared.ErrIdentityDisabled
}

func (disabledProvider) CreateUser(context.Context, string, string, string) (string, error) {
	return "", shared.ErrIdentityDisabled
}

func (disabledProvider) GetUserByEmail(context.Context, string) (string, error) {
	return "", shared.ErrIdentityDisabled
}
