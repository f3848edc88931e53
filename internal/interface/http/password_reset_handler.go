package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ideilsonsouza/backend/internal/application"
	"github.com/ideilsonsouza/backend/pkg/response"
	"github.com/ideilsonsouza/backend/pkg/validation"
)

type PasswordResetHandler struct {
	Svc    *application.VerificationService
	Logger *logrus.Logger
}

func NewPasswordResetHandler(svc *application.VerificationService, logger *logrus.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{Svc: svc, Logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Code                 string `json:"code" binding:"required"`
	Password             string `json:"password" binding:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// Forgot POST /auth/password/forgot. Always answers 200 for a
// well-formed email so account existence is not revealed.
func (h *PasswordResetHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("failed to issue password reset code")
		response.Message(c, http.StatusInternalServerError, "could not send the reset code")
		return
	}
	response.Message(c, http.StatusOK, "if the email exists, a reset code has been sent")
}

// Reset POST /auth/password/reset
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		if errors.Is(err, application.ErrInvalidOrExpiredCode) {
			response.Message(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.Logger.WithError(err).Error("failed to reset password")
		response.Message(c, http.StatusInternalServerError, "could not reset the password")
		return
	}
	response.Message(c, http.StatusOK, "the password has been successfully reset")
}
