package models

import "time"

// OTP is the pending one-time code for an email address. It lives in process
// memory only and is never written to the booking store.
type OTP struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// IsExpired reports whether now is strictly past the expiry instant.
func (o OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
