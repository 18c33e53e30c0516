package errors

import "errors"

var (
	ErrSessionNotFound = errors.New("otp session not found")
	ErrSessionExpired  = errors.New("otp session expired")
)
