package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix = "refresh:"
	refreshTTL       = 7 * 24 * time.Hour
)

// RefreshStore keeps opaque refresh tokens in Redis.
type RefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRefreshStore returns a new refresh token store.
func NewRefreshStore(rdb *redis.Client, ttl time.Duration) *RefreshStore {
	if ttl <= 0 {
		ttl = refreshTTL
	}
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

// Create stores a new refresh token for the user and returns it.
func (s *RefreshStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, refreshKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate consumes token and issues a replacement for the same user.
// Unknown, expired or already used tokens yield ErrInvalidToken.
func (s *RefreshStore) Rotate(ctx context.Context, token string) (int64, string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, "", ErrInvalidToken
	}
	raw, err := s.rdb.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, "", ErrInvalidToken
	}
	if err != nil {
		return 0, "", err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	next, err := s.Create(ctx, userID)
	if err != nil {
		return 0, "", err
	}
	return userID, next, nil
}

// Delete revokes a refresh token.
func (s *RefreshStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshKeyPrefix+token).Err()
}
