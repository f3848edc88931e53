package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ideilsonsouza/backend/internal/application"
	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
	"github.com/ideilsonsouza/backend/internal/interface/middleware"
	"github.com/ideilsonsouza/backend/pkg/response"
	"github.com/ideilsonsouza/backend/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name                 string         `json:"name" binding:"required,max=255"`
	Email                string         `json:"email" binding:"required,email,max=255"`
	Password             string         `json:"password" binding:"required,pwd"`
	PasswordConfirmation string         `json:"password_confirmation" binding:"required,eqfield=Password"`
	Definers             map[string]any `json:"definers"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// userJSON shapes a user for API responses. The password hash never
// leaves the service.
func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":                u.ID,
		"name":              u.Name,
		"email":             u.Email,
		"enabled":           u.Enabled,
		"team":              u.Team,
		"super":             u.Super,
		"definers":          u.Definers,
		"email_verified_at": u.EmailVerifiedAt,
		"created_at":        u.CreatedAt,
		"updated_at":        u.UpdatedAt,
	}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Definers: req.Definers,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.ValidationError(c, map[string]string{"email": "has already been taken"})
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Message(c, http.StatusInternalServerError, "could not register user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userJSON(u), "token": token})
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Message(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, application.ErrUserDisabled):
			response.Message(c, http.StatusUnauthorized, "user not authorized")
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Message(c, http.StatusInternalServerError, "could not create token")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          userJSON(u),
		"token":         pair.AccessToken,
		"expires_in":    pair.ExpiresIn,
		"token_type":    application.TokenType,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout POST /auth/logout (user tier)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), claims); err != nil {
		h.Logger.WithError(err).Error("logout failed")
		response.Message(c, http.StatusInternalServerError, "could not log out")
		return
	}
	response.Message(c, http.StatusOK, "successfully logged out")
}

// Refresh POST /auth/refresh. The bearer token here must be refresh-type;
// the handler applies the same enabled check as the user tier.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "user not authenticated")
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Message(c, http.StatusUnauthorized, "user not authenticated")
		case errors.Is(err, application.ErrUserDisabled):
			response.Message(c, http.StatusUnauthorized, "user not authorized")
		default:
			h.Logger.WithError(err).Error("refresh failed")
			response.Message(c, http.StatusInternalServerError, "could not create token")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          userJSON(u),
		"token":         pair.AccessToken,
		"expires_in":    pair.ExpiresIn,
		"token_type":    application.TokenType,
		"refresh_token": pair.RefreshToken,
	})
}

// Me POST /auth/me (user tier)
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "user not authenticated")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(u)})
}
