package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// VerificationCodeLen is the rendered length of a verification code:
// 16 random bytes as 32 hex characters (128 bits of entropy).
const VerificationCodeLen = 32

// GenVerificationCode generates a secure random verification code.
func GenVerificationCode() (string, error) {
	b := make([]byte, VerificationCodeLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
