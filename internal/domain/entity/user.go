package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// PasswordHash holds a bcrypt hash; the plaintext password is never stored.
// Credential material never marshals, handlers expose id/name/email/is_admin.
//
// ResetTokenHash and ResetTokenExpiry are set together when a password reset
// is pending and cleared together once the reset completes or delivery fails.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	IsAdmin          bool       `json:"is_admin"`
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ResetPending reports whether a reset token is outstanding for the user.
func (u *User) ResetPending() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil
}
