package entity

import "time"

// User is the aggregate root for the auth domain.
// Password holds a bcrypt hash; Email is stored lowercased and unique.
type User struct {
	ID              string
	Name            string
	Email           string
	Password        string
	Enabled         bool
	Team            bool
	Super           bool
	Definers        map[string]any
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
