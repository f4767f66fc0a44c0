package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store is the key-value surface the projection cache needs. The
// production implementation is Redis; tests swap in a map.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	SetNX(ctx context.Context, key string, value string) (bool, error)
}

// Calendar memoizes fully-rendered month projections keyed by a
// per-coach monotonic version counter. Bumping the version is the
// invalidation mechanism; the TTL is only a safety net. A cache hit is
// advisory and never trusted for the final booking decision.
type Calendar struct {
	store Store
	ttl   time.Duration
}

func NewCalendar(store Store, ttl time.Duration) *Calendar {
	return &Calendar{store: store, ttl: ttl}
}

func versionKey(coachID uint) string {
	return fmt.Sprintf("coach_calendar_version:%d", coachID)
}

// Version returns the coach's current calendar version, initializing
// it to 1 on first use.
func (c *Calendar) Version(ctx context.Context, coachID uint) (int64, error) {
	key := versionKey(coachID)

	if _, err := c.store.SetNX(ctx, key, "1"); err != nil {
		return 0, err
	}

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}

	var v int64
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil || v < 1 {
		return 1, nil
	}
	return v, nil
}

// Bump invalidates every cached projection for the coach by moving the
// version forward.
func (c *Calendar) Bump(ctx context.Context, coachID uint) error {
	_, err := c.store.Incr(ctx, versionKey(coachID))
	return err
}

// MonthKey builds the projection key for one rendered month.
func MonthKey(coachID uint, version int64, year int, month int, tz string, sessionLength int) string {
	return fmt.Sprintf(
		"calendar:%d:v%d:%d:%02d:%s:%d",
		coachID, version, year, month, tz, sessionLength,
	)
}

// GetMonth returns the cached rendered payload, if any.
func (c *Calendar) GetMonth(ctx context.Context, key string) (string, bool, error) {
	return c.store.Get(ctx, key)
}

// PutMonth stores the rendered payload under the versioned key.
func (c *Calendar) PutMonth(ctx context.Context, key string, payload string) error {
	return c.store.Set(ctx, key, payload, c.ttl)
}

// --------------------------------------------------
// Redis store
// --------------------------------------------------

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *RedisStore) SetNX(ctx context.Context, key string, value string) (bool, error) {
	return s.client.SetNX(ctx, key, value, 0).Result()
}
