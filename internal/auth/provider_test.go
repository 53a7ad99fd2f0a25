package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLookup struct {
	users map[string]*shared.User
}

func (s *stubLookup) GetUserByUID(_ context.Context, uid string) (*shared.User, error) {
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubLookup) GetUserByEmail(_ context.Context, email string) (*shared.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func TestDevProvider_RoundTrip(t *testing.T) {
	accounts := &stubLookup{users: map[string]*shared.User{"u1": {UID: "u1", Email: "u1@example.com"}}}
	p := NewDevProvider("secret", time.Hour, accounts, zap.NewNop())
	ctx := context.Background()

	token, err := p.CustomToken(ctx, "u1")
	require.NoError(t, err)
	claims, err := p.VerifyIDToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "u1@example.com", claims.Email)

	other := NewDevProvider("another-secret", time.Hour, accounts, zap.NewNop())
	_, err = other.VerifyIDToken(ctx, token)
	assert.Error(t, err)
}

func TestDevProvider_RejectsForeignIssuerAndExpiry(t *testing.T) {
	p := NewDevProvider("secret", time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1", Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = p.VerifyIDToken(ctx, foreign)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1", Issuer: devIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = p.VerifyIDToken(ctx, expired)
	assert.Error(t, err)
}

func TestDevProvider_CreateAndLookup(t *testing.T) {
	accounts := &stubLookup{users: map[string]*shared.User{"u1": {UID: "u1", Email: "taken@example.com"}}}
	p := NewDevProvider("secret", time.Hour, accounts, zap.NewNop())
	ctx := context.Background()

	_, err := p.CreateUser(ctx, "taken@example.com", "pw", "")
	assert.ErrorIs(t, err, shared.ErrIdentityExists)

	uid, err := p.CreateUser(ctx, "new@example.com", "pw", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uid, "dev_"))

	_, err = p.GetUserByEmail(ctx, "new@example.com")
	assert.ErrorIs(t, err, shared.ErrIdentityNotFound)
	got, err := p.GetUserByEmail(ctx, "taken@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
}

func TestNewIdentityProvider_Selection(t *testing.T) {
	dev := NewIdentityProvider(&config.Config{AuthDevSecret: "s"}, nil, nil, zap.NewNop())
	assert.IsType(t, &DevProvider{}, dev)

	disabled := NewIdentityProvider(&config.Config{}, nil, nil, zap.NewNop())
	_, err := disabled.VerifyIDToken(context.Background(), "x")
	assert.ErrorIs(t, err, shared.ErrIdentityDisabled)
}
