package domain

import "time"

// ForgottenPassword is a password reset token. Like invites the raw Code is
// never stored, only its fingerprint.
type ForgottenPassword struct {
	ID        string
	Code      string
	CodeHash  string
	UserID    string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
	Links     []Link
}

func (f ForgottenPassword) Expired(now time.Time) bool {
	return now.After(f.ExpiresAt)
}
