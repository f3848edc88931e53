package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ideilsonsouza/backend/internal/application"
	"github.com/ideilsonsouza/backend/internal/interface/middleware"
	"github.com/ideilsonsouza/backend/pkg/response"
	"github.com/ideilsonsouza/backend/pkg/validation"
)

type EmailValidateHandler struct {
	Svc    *application.VerificationService
	Logger *logrus.Logger
}

func NewEmailValidateHandler(svc *application.VerificationService, logger *logrus.Logger) *EmailValidateHandler {
	return &EmailValidateHandler{Svc: svc, Logger: logger}
}

type confirmEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

// Store POST /auth/email/validate (user tier). Issues a fresh code and
// mails it to the authenticated user.
func (h *EmailValidateHandler) Store(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if err := h.Svc.RequestEmailValidation(c.Request.Context(), u); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to issue email validation code")
		response.Message(c, http.StatusInternalServerError, "could not send the validation code")
		return
	}
	response.Message(c, http.StatusOK, "the validation code has been sent to your email")
}

// Update PUT/PATCH /auth/email/validate (user tier). Consumes the code
// and marks the email verified.
func (h *EmailValidateHandler) Update(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "user not authenticated")
		return
	}
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.ConfirmEmail(c.Request.Context(), u, req.Code); err != nil {
		if errors.Is(err, application.ErrInvalidOrExpiredCode) {
			response.Message(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to confirm email")
		response.Message(c, http.StatusInternalServerError, "could not validate the email")
		return
	}
	response.Message(c, http.StatusOK, "the email has been successfully validated")
}
