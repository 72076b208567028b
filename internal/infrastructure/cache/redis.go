package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"kala/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis is a small JSON value layer over go-redis.
type Redis struct {
	client *redis.Client
	logger *zap.Logger

	warnedUnavailable atomic.Bool
}

// Dial connects and pings. The returned Redis is usable only when err is nil.
func Dial(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrUnavailable, err)
	}
	return New(client, logger), nil
}

func New(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis command failed", zap.Error(err))
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

// GetJSON decodes key into out. found is false when the key does not exist.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (found bool, err error) {
	if r.isUnavailable() {
		return false, ErrUnavailable
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key with ttl. mode selects plain SET, NX or XX.
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration, mode SetMode) (bool, error) {
	if r.isUnavailable() {
		return false, ErrUnavailable
	}
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	var ok bool
	switch mode {
	case SetIfAbsent:
		ok, err = r.client.SetNX(ctx, key, b, ttl).Result()
	case SetIfPresent:
		ok, err = r.client.SetXX(ctx, key, b, ttl).Result()
	default:
		err = r.client.Set(ctx, key, b, ttl).Err()
		ok = err == nil
	}
	if err != nil {
		r.warnOnce(err)
		return false, err
	}
	return ok, nil
}

// Delete removes key and reports whether it existed.
func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	if r.isUnavailable() {
		return false, ErrUnavailable
	}
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		r.warnOnce(err)
		return false, err
	}
	return n > 0, nil
}

type SetMode int

const (
	SetAlways SetMode = iota
	SetIfAbsent
	SetIfPresent
)
