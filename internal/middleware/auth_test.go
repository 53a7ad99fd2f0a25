package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) VerifyIDToken(ctx context.Context, idToken string) (*shared.IdentityToken, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.IdentityToken), args.Error(1)
}

func (m *mockProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) GetUserByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUserByUID(ctx context.Context, uid string) (*shared.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

func newAuthRouter(p *mockProvider, u *mockUsers, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(p, u, zap.NewNop())}
	if len(roles) > 0 {
		chain = append(chain, RoleAuthMiddleware(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":  common.GetUserUIDFromContext(c),
			"role": common.GetUserRoleFromContext(c),
		})
	})
	r.GET("/protected", chain...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w := doGet(newAuthRouter(new(mockProvider), new(mockUsers)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	w := doGet(newAuthRouter(new(mockProvider), new(mockUsers)), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	p := new(mockProvider)
	p.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("expired"))

	w := doGet(newAuthRouter(p, new(mockUsers)), "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ProviderDisabled(t *testing.T) {
	p := new(mockProvider)
	p.On("VerifyIDToken", mock.Anything, "tok").Return(nil, shared.ErrIdentityDisabled)

	w := doGet(newAuthRouter(p, new(mockUsers)), "Bearer tok")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthMiddleware_SetsRole(t *testing.T) {
	p := new(mockProvider)
	u := new(mockUsers)
	p.On("VerifyIDToken", mock.Anything, "tok").Return(&shared.IdentityToken{UID: "u1", Email: "a@b.c"}, nil)
	u.On("GetUserByUID", mock.Anything, "u1").Return(&shared.User{UID: "u1", Role: common.RoleNGO}, nil)

	w := doGet(newAuthRouter(p, u, common.RoleNGO), "Bearer tok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","role":"ngo"}`, w.Body.String())
}

func TestAuthMiddleware_RolelessUserPassesAuthButNotRoleCheck(t *testing.T) {
	p := new(mockProvider)
	u := new(mockUsers)
	p.On("VerifyIDToken", mock.Anything, "tok").Return(&shared.IdentityToken{UID: "u2"}, nil)
	u.On("GetUserByUID", mock.Anything, "u2").Return(nil, common.ErrNotFound.WithDetails("User not found."))

	w := doGet(newAuthRouter(p, u), "Bearer tok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u2","role":""}`, w.Body.String())

	w = doGet(newAuthRouter(p, u, common.RoleStudent), "Bearer tok")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleAuthMiddleware_WrongRole(t *testing.T) {
	p := new(mockProvider)
	u := new(mockUsers)
	p.On("VerifyIDToken", mock.Anything, "tok").Return(&shared.IdentityToken{UID: "u3"}, nil)
	u.On("GetUserByUID", mock.Anything, "u3").Return(&shared.User{UID: "u3", Role: common.RoleStudent}, nil)

	w := doGet(newAuthRouter(p, u, common.RoleNGO), "Bearer tok")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
