package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	otperrors "glowbridge/internal/otp/errors"
	"glowbridge/internal/otp/store"
	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/model"
	"glowbridge/pkg/sanitizer"
	"glowbridge/pkg/sealer"

	"github.com/google/uuid"
)

// Sender delivers a one-time code to a phone number. Provider integrations
// implement this; the log sender is for development and tests.
type Sender interface {
	Send(ctx context.Context, phone string, code string) error
}

// VerifyResult is returned on successful verification: an opaque session token
// sealing the verified phone.
type VerifyResult struct {
	SessionToken string `json:"session_token"`
	PhoneNumber  string `json:"phone_number"`
}

type OTPService interface {
	Send(ctx context.Context, phone string, userID string) (sessionID string, err error)
	Verify(ctx context.Context, sessionID string, code string) (*VerifyResult, error)
	Resend(ctx context.Context, sessionID string) error
}

type otpService struct {
	store  store.SessionStore
	sender Sender
	cfg    *config.Config
}

func NewOTPService(store store.SessionStore, sender Sender, cfg *config.Config) OTPService {
	return &otpService{
		store:  store,
		sender: sender,
		cfg:    cfg,
	}
}

// Send issues a fresh verification code for the phone number. A previous
// unexpired session for the same phone enforces the resend cooldown.
func (s *otpService) Send(ctx context.Context, phone string, userID string) (string, error) {
	normalized := sanitizer.NormalizePhone(phone)
	if normalized == "" {
		return "", apperrors.InvalidInput("Invalid phone number")
	}

	existing, err := s.store.FindByPhone(ctx, normalized)
	if err != nil && !errors.Is(err, otperrors.ErrSessionNotFound) {
		s.cfg.Log.Error("Failed to check existing otp session", "error", err)
		return "", apperrors.Internal("Failed to start phone verification", err)
	}
	if existing != nil && time.Since(existing.CreatedAt) < s.cfg.OTPResendCooldown {
		return "", apperrors.Conflict("A code was sent recently. Please wait before requesting another.")
	}

	code, err := s.generateCode()
	if err != nil {
		return "", apperrors.Internal("Failed to generate verification code", err)
	}

	session := &model.OTPSession{
		ID:          uuid.NewString(),
		PhoneNumber: normalized,
		CodeHash:    hashCode(code),
		UserID:      userID,
		ExpiresAt:   time.Now().Add(s.cfg.OTPTTL).UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Save(ctx, session, s.cfg.OTPTTL); err != nil {
		s.cfg.Log.Error("Failed to store otp session", "error", err)
		return "", apperrors.Internal("Failed to start phone verification", err)
	}

	if err := s.sender.Send(ctx, normalized, code); err != nil {
		s.cfg.Log.Error("Failed to deliver verification code", "session_id", session.ID, "error", err)
		return "", apperrors.Internal("Failed to deliver verification code", err)
	}

	s.cfg.Log.Info("Verification code sent", "session_id", session.ID)
	return session.ID, nil
}

// Verify checks the submitted code. Attempts are counted and capped; on
// success the session is consumed and a sealed session token is returned.
func (s *otpService) Verify(ctx context.Context, sessionID string, code string) (*VerifyResult, error) {
	if sessionID == "" || code == "" {
		return nil, apperrors.InvalidInput("Session ID and code are required")
	}

	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, otperrors.ErrSessionNotFound) {
			return nil, apperrors.NotFound("Verification session")
		}
		s.cfg.Log.Error("Failed to load otp session", "session_id", sessionID, "error", err)
		return nil, apperrors.Internal("Failed to verify code", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, apperrors.InvalidInput("Verification code expired. Request a new one.")
	}
	if session.Attempts >= s.cfg.OTPMaxAttempts {
		return nil, apperrors.Conflict("Too many failed attempts. Request a new code.")
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(session.CodeHash)) != 1 {
		session.Attempts++
		ttl := time.Until(session.ExpiresAt)
		if err := s.store.Save(ctx, session, ttl); err != nil {
			s.cfg.Log.Error("Failed to record otp attempt", "session_id", sessionID, "error", err)
		}
		s.cfg.Log.Warn("Verification code mismatch", "session_id", sessionID, "attempts", session.Attempts)
		return nil, apperrors.InvalidInput("Incorrect verification code")
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.cfg.Log.Warn("Failed to consume otp session", "session_id", sessionID, "error", err)
	}

	token, err := sealer.CreateSessionToken(session.PhoneNumber, session.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to seal session token", "session_id", sessionID, "error", err)
		return nil, apperrors.Internal("Failed to complete verification", err)
	}

	s.cfg.Log.Info("Phone verified successfully", "session_id", sessionID)
	return &VerifyResult{
		SessionToken: token,
		PhoneNumber:  session.PhoneNumber,
	}, nil
}

// Resend issues a new code on an existing session, resetting the attempt
// counter and extending the TTL. The cooldown applies from the last issue.
func (s *otpService) Resend(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("Session ID is required")
	}

	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, otperrors.ErrSessionNotFound) {
			return apperrors.NotFound("Verification session")
		}
		s.cfg.Log.Error("Failed to load otp session", "session_id", sessionID, "error", err)
		return apperrors.Internal("Failed to resend code", err)
	}

	if time.Since(session.CreatedAt) < s.cfg.OTPResendCooldown {
		return apperrors.Conflict("A code was sent recently. Please wait before requesting another.")
	}

	code, err := s.generateCode()
	if err != nil {
		return apperrors.Internal("Failed to generate verification code", err)
	}

	session.CodeHash = hashCode(code)
	session.Attempts = 0
	session.CreatedAt = time.Now().UTC()
	session.ExpiresAt = time.Now().Add(s.cfg.OTPTTL).UTC()

	if err := s.store.Save(ctx, session, s.cfg.OTPTTL); err != nil {
		s.cfg.Log.Error("Failed to store otp session", "session_id", sessionID, "error", err)
		return apperrors.Internal("Failed to resend code", err)
	}

	if err := s.sender.Send(ctx, session.PhoneNumber, code); err != nil {
		s.cfg.Log.Error("Failed to deliver verification code", "session_id", sessionID, "error", err)
		return apperrors.Internal("Failed to deliver verification code", err)
	}

	s.cfg.Log.Info("Verification code resent", "session_id", sessionID)
	return nil
}

// generateCode produces a zero-padded numeric code of the configured length
// using crypto/rand.
func (s *otpService) generateCode() (string, error) {
	length := s.cfg.OTPLength
	upper := big.NewInt(1)
	for i := 0; i < length; i++ {
		upper.Mul(upper, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
