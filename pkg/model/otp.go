package model

import "time"

// OTPSession is one phone-verification attempt. The code itself is never
// stored; only its SHA-256 digest is kept, in Redis, under the session's TTL.
type OTPSession struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	CodeHash    string    `json:"code_hash"`
	UserID      string    `json:"user_id,omitempty"`
	Attempts    int       `json:"attempts"`
	IsVerified  bool      `json:"is_verified"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
