package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/middleware"
	"educycle_backend/internal/platform/database/dbtest"
	"educycle_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HandlerSuite struct {
	suite.Suite
	router   *gin.Engine
	mailer   *captureMailer
	provider *DevProvider
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	common.RegisterValidators()
	logger := zap.NewNop()

	db := dbtest.New(s.T(), &user.User{}, &OTPCode{})
	users := user.NewService(user.NewGORMRepository(db), nil, nil, logger)
	s.provider = NewDevProvider("test-secret", time.Hour, users, logger)
	s.mailer = newCaptureMailer()
	otp := NewOTPService(NewOTPRepository(db), s.mailer, &config.Config{OTPTTL: 10 * time.Minute}, logger)
	handler := NewHandler(NewService(users, s.provider, otp, logger), logger)

	s.router = gin.New()
	handler.RegisterRoutes(s.router.Group("/api/v1"), middleware.AuthMiddleware(s.provider, users, logger))
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Details interface{}     `json:"details"`
}

func (s *HandlerSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *HandlerSuite) register(email, password, role string) TokenResponse {
	w, _ := s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"email": email})
	s.Require().Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/auth/otp/register", "", gin.H{
		"email":    email,
		"otp":      s.mailer.code(email),
		"password": password,
		"role":     role,
		"metadata": gin.H{"full_name": "Asha Patil", "city": "Pune", "area": "Kothrud"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var token TokenResponse
	s.Require().NoError(json.Unmarshal(env.Data, &token))
	return token
}

func (s *HandlerSuite) TestRegisterThenMe() {
	token := s.register("asha@example.com", "correct-horse", "student")
	s.NotEmpty(token.CustomToken)

	w, env := s.do(http.MethodGet, "/api/v1/auth/me", token.CustomToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &me))
	s.Equal("asha@example.com", me["email"])
	s.Equal("student", me["role"])
	s.Equal(token.UID, me["uid"])
}

func (s *HandlerSuite) TestRegisterTwiceConflicts() {
	s.register("asha@example.com", "correct-horse", "student")

	s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"email": "asha@example.com"})
	w, _ := s.do(http.MethodPost, "/api/v1/auth/otp/register", "", gin.H{
		"email": "asha@example.com", "otp": s.mailer.code("asha@example.com"), "password": "another-pass",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestRegisterWithWrongOTP() {
	s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"email": "asha@example.com"})
	code := "123456"
	if s.mailer.code("asha@example.com") == code {
		code = "654321"
	}
	w, env := s.do(http.MethodPost, "/api/v1/auth/otp/register", "", gin.H{
		"email": "asha@example.com", "otp": code, "password": "correct-horse",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid OTP", env.Details)
}

func (s *HandlerSuite) TestRegisterValidation() {
	w, env := s.do(http.MethodPost, "/api/v1/auth/otp/register", "", gin.H{
		"email": "asha@example.com", "otp": "12ab56", "password": "short", "role": "admin",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", env.Code)
}

func (s *HandlerSuite) TestPasswordLogin() {
	registered := s.register("ngo@example.com", "correct-horse", "ngo")

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "NGO@example.com", "password": "correct-horse"})
	s.Require().Equal(http.StatusOK, w.Code)
	var token TokenResponse
	s.Require().NoError(json.Unmarshal(env.Data, &token))
	s.Equal(registered.UID, token.UID)

	w, env = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ngo@example.com", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid email or password.", env.Details)

	w, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "nobody@example.com", "password": "whatever"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestOTPLogin() {
	registered := s.register("asha@example.com", "correct-horse", "student")

	s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"email": "asha@example.com"})
	w, env := s.do(http.MethodPost, "/api/v1/auth/otp/login", "", gin.H{"email": "asha@example.com", "otp": s.mailer.code("asha@example.com")})
	s.Require().Equal(http.StatusOK, w.Code)
	var token TokenResponse
	s.Require().NoError(json.Unmarshal(env.Data, &token))
	s.Equal(registered.UID, token.UID)

	s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"email": "ghost@example.com"})
	w, _ = s.do(http.MethodPost, "/api/v1/auth/otp/login", "", gin.H{"email": "ghost@example.com", "otp": s.mailer.code("ghost@example.com")})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestBootstrapCreatesOnceAndKeepsRole() {
	token, err := s.provider.IssueToken("firebase-uid-1", "ravi@example.com")
	s.Require().NoError(err)

	w, _ := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/auth/bootstrap", token, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var res BootstrapResponse
	s.Require().NoError(json.Unmarshal(env.Data, &res))
	s.True(res.Created)
	s.Equal("student", res.User.Role)

	w, env = s.do(http.MethodPost, "/api/v1/auth/bootstrap", token, gin.H{"role": "ngo", "city": "Pune"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &res))
	s.False(res.Created)
	s.Equal("student", res.User.Role)
	s.Equal("Pune", res.User.City)
}

func (s *HandlerSuite) TestUpdateMe() {
	token := s.register("asha@example.com", "correct-horse", "student")
	w, env := s.do(http.MethodPut, "/api/v1/auth/me", token.CustomToken, gin.H{"display_name": "Asha P", "area": "Baner"})
	s.Require().Equal(http.StatusOK, w.Code)
	var me map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &me))
	s.Equal("Baner", me["area"])
}

func (s *HandlerSuite) TestProtectedRoutesNeedToken() {
	w, _ := s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/api/v1/auth/bootstrap", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func TestHandler_DisabledProviderAnswers503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	db := dbtest.New(t, &user.User{}, &OTPCode{})
	users := user.NewService(user.NewGORMRepository(db), nil, nil, logger)
	provider := NewIdentityProvider(&config.Config{}, nil, users, logger)
	otp := NewOTPService(NewOTPRepository(db), newCaptureMailer(), &config.Config{}, logger)
	r := gin.New()
	NewHandler(NewService(users, provider, otp, logger), logger).RegisterRoutes(r.Group("/api/v1"), middleware.AuthMiddleware(provider, users, logger))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
