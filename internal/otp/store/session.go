package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	otperrors "glowbridge/internal/otp/errors"
	"glowbridge/pkg/config"
	"glowbridge/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "otp:session:"
	phoneKeyPrefix   = "otp:phone:"
)

// SessionStore keeps OTP sessions in Redis under the session TTL. A secondary
// phone index points at the latest session for resend-cooldown checks.
type SessionStore interface {
	Save(ctx context.Context, session *model.OTPSession, ttl time.Duration) error
	Find(ctx context.Context, sessionID string) (*model.OTPSession, error)
	FindByPhone(ctx context.Context, phone string) (*model.OTPSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(cfg *config.Config) SessionStore {
	return &redisSessionStore{
		rdb: cfg.Client.Redis,
	}
}

func (s *redisSessionStore) Save(ctx context.Context, session *model.OTPSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode otp session: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl)
	pipe.Set(ctx, phoneKeyPrefix+session.PhoneNumber, session.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store otp session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Find(ctx context.Context, sessionID string) (*model.OTPSession, error) {
	payload, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, otperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load otp session: %w", err)
	}

	var session model.OTPSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode otp session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) FindByPhone(ctx context.Context, phone string) (*model.OTPSession, error) {
	sessionID, err := s.rdb.Get(ctx, phoneKeyPrefix+phone).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, otperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load otp phone index: %w", err)
	}
	return s.Find(ctx, sessionID)
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	session, err := s.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, otperrors.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionID)
	pipe.Del(ctx, phoneKeyPrefix+session.PhoneNumber)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete otp session: %w", err)
	}
	return nil
}
