package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/testutil"
	"github.com/ideilsonsouza/backend/pkg/helpers"
)

func newVerificationService(t *testing.T) (*VerificationService, *testutil.FakeUserRepo, *entity.User) {
	t.Helper()
	users := testutil.NewFakeUserRepo()
	codes := testutil.NewFakeCodeRepo()
	svc := NewVerificationService(codes, users, nil, logrus.New(), 30*time.Minute, false)

	u := &entity.User{Name: "Ana", Email: "ana@x.com", Password: "irrelevant"}
	require.NoError(t, users.Create(context.Background(), u))
	return svc, users, u
}

func TestIssueReplacesPriorCode(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newVerificationService(t)

	first, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)
	require.Len(t, first, helpers.VerificationCodeLen)

	second, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	err = svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, first)
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))

	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, second))
}

func TestConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newVerificationService(t)

	code, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, code))

	err = svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, code)
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))
}

func TestConsumeFailedMatchLeavesCodeIntact(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newVerificationService(t)

	code, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	err = svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, "ffffffffffffffffffffffffffffffff")
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))

	// The stored code survives a failed match and can still be consumed.
	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, code))
}

func TestConsumeExpiryWindow(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newVerificationService(t)

	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return current }

	code, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	// One second before expiry the code is still good.
	current = current.Add(30*time.Minute - time.Second)
	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, code))

	// Past expiry a fresh code no longer validates.
	current = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	code, err = svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	current = current.Add(30*time.Minute + time.Second)
	err = svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, code)
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))
}

func TestPurposesAreIndependentNamespaces(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newVerificationService(t)

	emailCode, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)
	resetCode, err := svc.Issue(ctx, u.ID, entity.PurposePasswordReset)
	require.NoError(t, err)

	// A reset code does not validate the email and vice versa.
	err = svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, resetCode)
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))

	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposeEmailValidate, emailCode))
	require.NoError(t, svc.Consume(ctx, u.ID, entity.PurposePasswordReset, resetCode))
}

func TestConfirmEmailMarksVerified(t *testing.T) {
	ctx := context.Background()
	svc, users, u := newVerificationService(t)

	code, err := svc.Issue(ctx, u.ID, entity.PurposeEmailValidate)
	require.NoError(t, err)

	require.Nil(t, u.EmailVerifiedAt)
	require.NoError(t, svc.ConfirmEmail(ctx, u, code))
	require.NotNil(t, u.EmailVerifiedAt)

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerifiedAt)
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	svc, users, u := newVerificationService(t)

	hash, err := helpers.HashPassword("old-password")
	require.NoError(t, err)
	u.Password = hash
	require.NoError(t, users.Update(ctx, u))

	code, err := svc.Issue(ctx, u.ID, entity.PurposePasswordReset)
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "ana@x.com", "wrong-code", "new-password1")
	require.True(t, errors.Is(err, ErrInvalidOrExpiredCode))

	require.NoError(t, svc.ResetPassword(ctx, "ANA@X.COM", code, "new-password1"))

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, helpers.CompareHashAndPassword(stored.Password, "new-password1"))
	require.False(t, helpers.CompareHashAndPassword(stored.Password, "old-password"))
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newVerificationService(t)

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@x.com"))
}
