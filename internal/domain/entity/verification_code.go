package entity

import "time"

// Purpose namespaces verification codes. Each purpose keeps at most one
// live code per user; issuing a new one replaces the previous.
type Purpose string

const (
	PurposeEmailValidate Purpose = "email_validate"
	PurposePasswordReset Purpose = "password_reset"
)

// VerificationCode is a single-use, time-limited code proving ownership
// of the account's email address.
type VerificationCode struct {
	UserID    string
	Purpose   Purpose
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
