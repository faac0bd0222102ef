package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/udyamsetu/platform/internal/common"
)

// ErrSessionNotFound is returned when a session id resolves to nothing,
// either because it never existed or because its TTL expired.
var ErrSessionNotFound = errors.New("session not found")

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, sessionTTL time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: sessionTTL,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

// CreateSession allocates a new session id bound to the user.
func (s *Store) CreateSession(ctx context.Context, userID uint64) (string, error) {
	sid, err := common.NewULID()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKey(sid), strconv.FormatUint(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// ResolveSession maps a session id back to its user id.
func (s *Store) ResolveSession(ctx context.Context, sid string) (uint64, error) {
	v, err := s.client.Get(ctx, sessionKey(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	uid, err := strconv.ParseUint(v, 10, 64)
	if err != nil || uid == 0 {
		return 0, ErrSessionNotFound
	}
	return uid, nil
}

func (s *Store) DeleteSession(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionKey(sid)).Err()
}
