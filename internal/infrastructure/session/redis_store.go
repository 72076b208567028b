package session

import (
	"context"
	"fmt"
	"time"

	"kala/internal/domain/session"
	"kala/internal/infrastructure/cache"

	"github.com/google/uuid"
)

const keyPrefix = "kala:session:"

// RedisStore keeps each session as one JSON value whose expiry is
// refreshed on every save.
type RedisStore struct {
	r   *cache.Redis
	ttl time.Duration
}

func NewRedisStore(r *cache.Redis, ttl time.Duration) *RedisStore {
	return &RedisStore{r: r, ttl: ttl}
}

func Key(id uuid.UUID) string { return keyPrefix + id.String() }

func (s *RedisStore) Create(ctx context.Context, sess session.Session) error {
	ok, err := s.r.SetJSON(ctx, Key(sess.ID), sess, s.ttl, cache.SetIfAbsent)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return session.ErrExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (session.Session, error) {
	var sess session.Session
	found, err := s.r.GetJSON(ctx, Key(id), &sess)
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !found {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess session.Session) error {
	ok, err := s.r.SetJSON(ctx, Key(sess.ID), sess, s.ttl, cache.SetIfPresent)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !ok {
		return session.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.r.Delete(ctx, Key(id))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !ok {
		return session.ErrNotFound
	}
	return nil
}

var _ session.Store = (*RedisStore)(nil)
