package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ideilsonsouza/backend/internal/domain/repository"
	handlers "github.com/ideilsonsouza/backend/internal/interface/http"
	"github.com/ideilsonsouza/backend/internal/interface/middleware"
	"github.com/ideilsonsouza/backend/pkg/helpers"
)

// AuthModule wires the auth endpoints under /auth.
// Public: register, login, refresh, password forgot/reset.
// User tier: logout, me, email validation.
type AuthModule struct {
	Auth     *handlers.AuthHandler
	Email    *handlers.EmailValidateHandler
	Password *handlers.PasswordResetHandler
	JWT      *helpers.JWTManager
	Users    repository.UserRepository
	Redis    *redis.Client
}

func NewAuthModule(auth *handlers.AuthHandler, email *handlers.EmailValidateHandler, password *handlers.PasswordResetHandler, jwt *helpers.JWTManager, users repository.UserRepository, rdb *redis.Client) *AuthModule {
	return &AuthModule{Auth: auth, Email: email, Password: password, JWT: jwt, Users: users, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")

	auth.POST("/register", m.Auth.Register)
	auth.POST("/login", m.Auth.Login)
	// Refresh carries a refresh-type bearer token, which the access-token
	// middleware would reject; the handler validates it itself.
	auth.POST("/refresh", m.Auth.Refresh)
	auth.POST("/password/forgot", m.Password.Forgot)
	auth.POST("/password/reset", m.Password.Reset)

	user := auth.Group("/")
	user.Use(middleware.Authenticate(m.JWT, m.Users, m.Redis), middleware.RequireUser())
	{
		user.POST("/logout", m.Auth.Logout)
		user.POST("/me", m.Auth.Me)
		user.POST("/email/validate", m.Email.Store)
		user.PUT("/email/validate", m.Email.Update)
		user.PATCH("/email/validate", m.Email.Update)
	}
}
