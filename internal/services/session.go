package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/combohub/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionService reads sessions written by the auth service. Each read
// slides the expiry forward by ttl.
type SessionService struct {
	redis RedisClient
	ttl   time.Duration
}

func NewSessionService(redis RedisClient, ttl time.Duration) *SessionService {
	return &SessionService{redis: redis, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *SessionService) GetCurrentSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	key := sessionKey(sessionID)
	raw, err := s.redis.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.User.Email == "" || session.User.ID == uuid.Nil {
		// Unreadable payloads are dropped so they stop costing a lookup.
		_ = s.redis.Del(ctx, key)
		return nil, ErrSessionNotFound
	}

	if s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl); err != nil {
			return nil, fmt.Errorf("refreshing session: %w", err)
		}
	}
	return &session, nil
}
