package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
	"github.com/ideilsonsouza/backend/pkg/helpers"
	"github.com/ideilsonsouza/backend/pkg/mailer"
	tpl "github.com/ideilsonsouza/backend/pkg/mailer/templates"
)

var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrMailDispatch         = errors.New("failed to dispatch email")
)

// maxCodeAttempts bounds the collision-retry loop during generation.
// 128-bit collisions are practically impossible; the loop is a safety net.
const maxCodeAttempts = 5

// VerificationService issues and consumes single-use verification codes
// for email validation and password reset, and dispatches the code emails
// through the queue.
type VerificationService struct {
	Codes       repository.VerificationCodeRepository
	Users       repository.UserRepository
	Pub         *helpers.RabbitPublisher
	Logger      *logrus.Logger
	CodeTTL     time.Duration
	MailEnabled bool

	Now func() time.Time
}

func NewVerificationService(codes repository.VerificationCodeRepository, users repository.UserRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, codeTTL time.Duration, mailEnabled bool) *VerificationService {
	return &VerificationService{
		Codes:       codes,
		Users:       users,
		Pub:         pub,
		Logger:      logger,
		CodeTTL:     codeTTL,
		MailEnabled: mailEnabled,
		Now:         time.Now,
	}
}

// Issue generates a fresh code for (user, purpose) and stores it with a
// new expiry, replacing any previous unconsumed code.
func (s *VerificationService) Issue(ctx context.Context, userID string, purpose entity.Purpose) (string, error) {
	code, err := s.generate(ctx, purpose)
	if err != nil {
		return "", err
	}
	v := &entity.VerificationCode{
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: s.Now().Add(s.CodeTTL),
	}
	if err := s.Codes.Upsert(ctx, v); err != nil {
		return "", err
	}
	return code, nil
}

func (s *VerificationService) generate(ctx context.Context, purpose entity.Purpose) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := helpers.GenVerificationCode()
		if err != nil {
			return "", err
		}
		exists, err := s.Codes.CodeExists(ctx, purpose, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique code")
}

// Consume validates a submitted code and deletes it on success. A failed
// match leaves the stored code intact so the user may retry until expiry.
func (s *VerificationService) Consume(ctx context.Context, userID string, purpose entity.Purpose, submitted string) error {
	v, err := s.Codes.Get(ctx, userID, purpose)
	if err != nil {
		return ErrInvalidOrExpiredCode
	}
	if v.Code != submitted || v.Expired(s.Now()) {
		return ErrInvalidOrExpiredCode
	}
	return s.Codes.Delete(ctx, userID, purpose)
}

// RequestEmailValidation issues an email-validation code and mails it.
func (s *VerificationService) RequestEmailValidation(ctx context.Context, u *entity.User) error {
	code, err := s.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	if err != nil {
		return err
	}
	return s.sendCode(ctx, u, tpl.EmailValidate, code)
}

// ConfirmEmail consumes the code and marks the user's email verified.
func (s *VerificationService) ConfirmEmail(ctx context.Context, u *entity.User, code string) error {
	if err := s.Consume(ctx, u.ID, entity.PurposeEmailValidate, code); err != nil {
		return err
	}
	now := s.Now()
	u.EmailVerifiedAt = &now
	return s.Users.Update(ctx, u)
}

// RequestPasswordReset issues a reset code for the account with this
// email, if any. An unknown email is not reported to the caller.
func (s *VerificationService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil
	}
	code, err := s.Issue(ctx, u.ID, entity.PurposePasswordReset)
	if err != nil {
		return err
	}
	return s.sendCode(ctx, u, tpl.PasswordReset, code)
}

// ResetPassword consumes a reset code and stores the new password hash.
func (s *VerificationService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return ErrInvalidOrExpiredCode
	}
	if err := s.Consume(ctx, u.ID, entity.PurposePasswordReset, code); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.Users.Update(ctx, u)
}

func (s *VerificationService) sendCode(ctx context.Context, u *entity.User, template, code string) error {
	if !s.MailEnabled {
		s.Logger.WithField("user_id", u.ID).Debug("mail sending disabled, skipping code email")
		return nil
	}
	if s.Pub == nil {
		return ErrMailDispatch
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data: map[string]any{
			"Name":      u.Name,
			"Code":      code,
			"ExpiresIn": s.CodeTTL.String(),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to publish email job")
		return ErrMailDispatch
	}
	return nil
}
