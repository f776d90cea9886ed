package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepository stores session payloads in Redis, keyed by the opaque
// cookie token. TTL equals the session lifetime and slides on each lookup.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{client: client, ttl: ttl}
}

// Save stores a session under its token.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+session.Token, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// Find loads the session for a token and slides its expiry: the touched
// payload is written back with a fresh TTL, so both the Redis eviction and
// the recorded ExpiresAt move forward together. Missing or expired sessions
// surface as ErrNotAuthenticated.
func (r *SessionRepository) Find(ctx context.Context, token string) (*models.Session, error) {
	key := sessionKeyPrefix + token
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Expired(time.Now().UTC()) {
		_ = r.client.Del(ctx, key).Err()
		return nil, appErrors.ErrNotAuthenticated
	}

	session.Touch(time.Now().UTC(), r.ttl)
	payload, err := json.Marshal(&session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis touch session: %w", err)
	}
	return &session, nil
}

// Delete removes a session (logout).
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to the user, used on account
// deletion and password change.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var session models.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			continue
		}
		if session.UserID == userID {
			if err := r.client.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("redis delete user session: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan sessions: %w", err)
	}
	return nil
}
