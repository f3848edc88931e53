package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ideilsonsouza/backend/internal/application"
	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/interface/middleware"
	"github.com/ideilsonsouza/backend/internal/testutil"
	"github.com/ideilsonsouza/backend/pkg/helpers"
	"github.com/ideilsonsouza/backend/pkg/validation"
)

type testEnv struct {
	router *gin.Engine
	users  *testutil.FakeUserRepo
	codes  *testutil.FakeCodeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	users := testutil.NewFakeUserRepo()
	codes := testutil.NewFakeCodeRepo()
	jwt := helpers.NewJWTManager("test-secret", time.Hour, 168*time.Hour)

	authSvc := application.NewAuthService(users, jwt, nil, logger)
	verifySvc := application.NewVerificationService(codes, users, nil, logger, 30*time.Minute, false)

	auth := NewAuthHandler(authSvc, logger)
	email := NewEmailValidateHandler(verifySvc, logger)
	password := NewPasswordResetHandler(verifySvc, logger)

	r := gin.New()
	api := r.Group("/api")
	group := api.Group("/auth")
	group.POST("/register", auth.Register)
	group.POST("/login", auth.Login)
	group.POST("/refresh", auth.Refresh)
	group.POST("/password/forgot", password.Forgot)
	group.POST("/password/reset", password.Reset)

	user := group.Group("/")
	user.Use(middleware.Authenticate(jwt, users, nil), middleware.RequireUser())
	{
		user.POST("/logout", auth.Logout)
		user.POST("/me", auth.Me)
		user.POST("/email/validate", email.Store)
		user.PUT("/email/validate", email.Update)
	}

	return &testEnv{router: r, users: users, codes: codes}
}

func (e *testEnv) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerBody(name, email, password string) gin.H {
	return gin.H{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}
}

func TestRegisterLoginMeFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "Ana@X.com", "password1"))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.NotEmpty(t, body["token"])
	registered := body["user"].(map[string]any)
	require.Equal(t, "ana@x.com", registered["email"])
	require.Equal(t, true, registered["enabled"])
	require.Nil(t, registered["email_verified_at"])
	require.NotContains(t, registered, "password")

	// login with a differently cased address
	w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ANA@X.COM", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	require.Equal(t, "bearer", body["token_type"])
	require.Equal(t, float64(3600), body["expires_in"])
	require.NotEmpty(t, body["refresh_token"])
	access := body["token"].(string)

	w = env.request(http.MethodPost, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "ana@x.com", me["email"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	// short password
	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "short"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// confirmation mismatch
	w = env.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":                  "Ana",
		"email":                 "ana@x.com",
		"password":              "password1",
		"password_confirmation": "password2",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// duplicate email, case-insensitively
	w = env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana Again", "ANA@x.com", "password1"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLoginFailureBodiesAreIdentical(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPwd := env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@x.com", "password": "password2"})
	noUser := env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@x.com", "password": "password1"})

	require.Equal(t, http.StatusUnauthorized, wrongPwd.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	require.JSONEq(t, wrongPwd.Body.String(), noUser.Body.String())
}

func TestLoginDisabledUserMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	require.Equal(t, http.StatusCreated, w.Code)

	u, err := env.users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	u.Enabled = false
	require.NoError(t, env.users.Update(ctx, u))

	w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@x.com", "password": "password1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "user not authorized", decode(t, w)["message"])
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	w := env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@x.com", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	access := body["token"].(string)
	refresh := body["refresh_token"].(string)

	// the access token is not valid here
	w = env.request(http.MethodPost, "/api/auth/refresh", access, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(http.MethodPost, "/api/auth/refresh", refresh, nil)
	require.Equal(t, http.StatusOK, w.Code)
	next := decode(t, w)
	require.Equal(t, "bearer", next["token_type"])
	require.NotEmpty(t, next["token"])
	require.NotEmpty(t, next["refresh_token"])

	// the refresh token is not valid on protected routes
	w = env.request(http.MethodPost, "/api/auth/me", refresh, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	access := decode(t, w)["token"].(string)

	w = env.request(http.MethodPost, "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "successfully logged out", decode(t, w)["message"])

	w = env.request(http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEmailValidationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	w := env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))
	access := decode(t, w)["token"].(string)

	w = env.request(http.MethodPost, "/api/auth/email/validate", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "the validation code has been sent to your email", decode(t, w)["message"])

	u, err := env.users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	stored, err := env.codes.Get(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	// wrong code first
	w = env.request(http.MethodPut, "/api/auth/email/validate", access, gin.H{"code": "ffffffffffffffffffffffffffffffff"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid or expired code", decode(t, w)["message"])

	w = env.request(http.MethodPut, "/api/auth/email/validate", access, gin.H{"code": stored.Code})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "the email has been successfully validated", decode(t, w)["message"])

	// the verified timestamp is visible on the profile
	w = env.request(http.MethodPost, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]any)
	require.NotNil(t, me["email_verified_at"])

	// the code was consumed
	w = env.request(http.MethodPut, "/api/auth/email/validate", access, gin.H{"code": stored.Code})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.request(http.MethodPost, "/api/auth/register", "", registerBody("Ana", "ana@x.com", "password1"))

	// unknown email gets the same answer as a known one
	w := env.request(http.MethodPost, "/api/auth/password/forgot", "", gin.H{"email": "nobody@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodPost, "/api/auth/password/forgot", "", gin.H{"email": "ana@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	u, err := env.users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	stored, err := env.codes.Get(ctx, u.ID, entity.PurposePasswordReset)
	require.NoError(t, err)

	w = env.request(http.MethodPost, "/api/auth/password/reset", "", gin.H{
		"email":                 "ana@x.com",
		"code":                  "ffffffffffffffffffffffffffffffff",
		"password":              "new-password1",
		"password_confirmation": "new-password1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(http.MethodPost, "/api/auth/password/reset", "", gin.H{
		"email":                 "ana@x.com",
		"code":                  stored.Code,
		"password":              "new-password1",
		"password_confirmation": "new-password1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "the password has been successfully reset", decode(t, w)["message"])

	// old password no longer works, the new one does
	w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@x.com", "password": "password1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@x.com", "password": "new-password1"})
	require.Equal(t, http.StatusOK, w.Code)
}
