package service

import (
	"context"
	"strings"
	"testing"
	"time"

	otperrors "glowbridge/internal/otp/errors"
	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

// In-memory session store for testing
type memorySessionStore struct {
	sessions map[string]*model.OTPSession
	byPhone  map[string]string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{
		sessions: map[string]*model.OTPSession{},
		byPhone:  map[string]string{},
	}
}

func (m *memorySessionStore) Save(ctx context.Context, session *model.OTPSession, ttl time.Duration) error {
	copied := *session
	m.sessions[session.ID] = &copied
	m.byPhone[session.PhoneNumber] = session.ID
	return nil
}

func (m *memorySessionStore) Find(ctx context.Context, sessionID string) (*model.OTPSession, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, otperrors.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memorySessionStore) FindByPhone(ctx context.Context, phone string) (*model.OTPSession, error) {
	sessionID, ok := m.byPhone[phone]
	if !ok {
		return nil, otperrors.ErrSessionNotFound
	}
	return m.Find(ctx, sessionID)
}

func (m *memorySessionStore) Delete(ctx context.Context, sessionID string) error {
	if session, ok := m.sessions[sessionID]; ok {
		delete(m.byPhone, session.PhoneNumber)
		delete(m.sessions, sessionID)
	}
	return nil
}

// Sender that captures the last issued code
type captureSender struct {
	phone string
	code  string
	calls int
}

func (s *captureSender) Send(ctx context.Context, phone string, code string) error {
	s.phone = phone
	s.code = code
	s.calls++
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:               log,
		OTPLength:         6,
		OTPTTL:            10 * time.Minute,
		OTPMaxAttempts:    3,
		OTPResendCooldown: 60 * time.Second,
	}
}

func newTestService(store *memorySessionStore, sender *captureSender) OTPService {
	return NewOTPService(store, sender, testConfig())
}

const testPhone = "+972501234567"

func TestSend_IssuesSixDigitCode(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), testPhone, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	if len(sender.code) != 6 {
		t.Errorf("expected 6-digit code, got %q", sender.code)
	}
	for _, c := range sender.code {
		if c < '0' || c > '9' {
			t.Errorf("expected numeric code, got %q", sender.code)
		}
	}
	if sender.phone != testPhone {
		t.Errorf("expected delivery to %s, got %s", testPhone, sender.phone)
	}

	session, err := store.Find(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if session.CodeHash == sender.code {
		t.Error("plaintext code must never be stored")
	}
	if len(session.CodeHash) != 64 {
		t.Errorf("expected hex SHA-256 hash, got %q", session.CodeHash)
	}
}

func TestSend_NormalizesPhone(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), "050-123-4567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, _ := store.Find(context.Background(), sessionID)
	if !strings.HasPrefix(session.PhoneNumber, "+") {
		t.Errorf("expected E.164 phone, got %q", session.PhoneNumber)
	}
}

func TestSend_RejectsInvalidPhone(t *testing.T) {
	service := newTestService(newMemorySessionStore(), &captureSender{})

	_, err := service.Send(context.Background(), "not a phone", "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSend_EnforcesResendCooldown(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	if _, err := service.Send(context.Background(), testPhone, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := service.Send(context.Background(), testPhone, "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT within cooldown, got %v", err)
	}
}

func TestVerify_CorrectCode(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), testPhone, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Verify(context.Background(), sessionID, sender.code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SessionToken == "" {
		t.Error("expected a session token")
	}
	if result.PhoneNumber != testPhone {
		t.Errorf("expected verified phone %s, got %s", testPhone, result.PhoneNumber)
	}

	// Session is consumed; a second verify must fail
	_, err = service.Verify(context.Background(), sessionID, sender.code)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND for consumed session, got %v", err)
	}
}

func TestVerify_WrongCodeCountsAttempts(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), testPhone, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrong := "000000"
	if wrong == sender.code {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		_, err := service.Verify(context.Background(), sessionID, wrong)
		appErr := apperrors.AsAppError(err)
		if err == nil || appErr.Code != apperrors.CodeInvalidInput {
			t.Fatalf("attempt %d: expected INVALID_INPUT, got %v", i+1, err)
		}
	}

	// Fourth attempt is over the cap, even with the right code
	_, err = service.Verify(context.Background(), sessionID, sender.code)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT after max attempts, got %v", err)
	}
}

func TestVerify_ExpiredSession(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), testPhone, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := store.sessions[sessionID]
	session.ExpiresAt = time.Now().Add(-time.Minute)

	_, err = service.Verify(context.Background(), sessionID, sender.code)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for expired session, got %v", err)
	}
}

func TestResend_CooldownThenNewCode(t *testing.T) {
	store := newMemorySessionStore()
	sender := &captureSender{}
	service := newTestService(store, sender)

	sessionID, err := service.Send(context.Background(), testPhone, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = service.Resend(context.Background(), sessionID)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT within cooldown, got %v", err)
	}

	// Age the session past the cooldown, then resend resets attempts
	session := store.sessions[sessionID]
	session.CreatedAt = time.Now().Add(-2 * time.Minute)
	session.Attempts = 2

	if err := service.Resend(context.Background(), sessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.calls != 2 {
		t.Errorf("expected 2 deliveries, got %d", sender.calls)
	}
	refreshed := store.sessions[sessionID]
	if refreshed.Attempts != 0 {
		t.Errorf("expected attempts reset, got %d", refreshed.Attempts)
	}
}

func TestResend_UnknownSession(t *testing.T) {
	service := newTestService(newMemorySessionStore(), &captureSender{})

	err := service.Resend(context.Background(), "missing")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
