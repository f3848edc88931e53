package router

import (
	"github.com/ideilsonsouza/backend/internal/application"
	"github.com/ideilsonsouza/backend/internal/container"
	pginfra "github.com/ideilsonsouza/backend/internal/infrastructure/postgres"
	handlers "github.com/ideilsonsouza/backend/internal/interface/http"
	"github.com/ideilsonsouza/backend/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	codes := pginfra.NewVerificationCodeRepository(container.GetPGPool())

	authSvc := application.NewAuthService(users, container.GetJWT(), container.GetRedis(), logger)
	verifySvc := application.NewVerificationService(codes, users, container.GetRabbitPub(), logger, cfg.CodeTTL, cfg.MailSendEnabled)

	authHandler := handlers.NewAuthHandler(authSvc, logger)
	emailHandler := handlers.NewEmailValidateHandler(verifySvc, logger)
	passwordHandler := handlers.NewPasswordResetHandler(verifySvc, logger)

	r.Add(modules.NewAuthModule(authHandler, emailHandler, passwordHandler, container.GetJWT(), users, container.GetRedis()))
}
