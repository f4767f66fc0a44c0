package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

// mapStore is the in-memory Store used by tests.
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string]string{}}
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.ParseInt(s.data[key], 10, 64)
	n++
	s.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *mapStore) SetNX(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func TestVersionInitializesToOne(t *testing.T) {
	cal := NewCalendar(newMapStore(), time.Hour)

	v, err := cal.Version(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Fatalf("first version must be 1, got %d", v)
	}
}

func TestBumpInvalidatesKey(t *testing.T) {
	ctx := context.Background()
	cal := NewCalendar(newMapStore(), time.Hour)

	v1, _ := cal.Version(ctx, 5)
	key1 := MonthKey(5, v1, 2026, 3, "UTC", 60)
	if err := cal.PutMonth(ctx, key1, `{"weeks":[]}`); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, ok, _ := cal.GetMonth(ctx, key1); !ok {
		t.Fatalf("expected a hit before the bump")
	}

	if err := cal.Bump(ctx, 5); err != nil {
		t.Fatalf("bump failed: %v", err)
	}

	v2, _ := cal.Version(ctx, 5)
	if v2 != v1+1 {
		t.Fatalf("expected version %d, got %d", v1+1, v2)
	}

	// The new version addresses a different key, so the stale payload
	// is unreachable without any explicit deletion.
	key2 := MonthKey(5, v2, 2026, 3, "UTC", 60)
	if key2 == key1 {
		t.Fatalf("bumped version must change the key")
	}
	if _, ok, _ := cal.GetMonth(ctx, key2); ok {
		t.Fatalf("new version must start cold")
	}
}

func TestMonthKeyIsolatesDimensions(t *testing.T) {
	base := MonthKey(5, 1, 2026, 3, "UTC", 60)

	variants := []string{
		MonthKey(6, 1, 2026, 3, "UTC", 60),
		MonthKey(5, 2, 2026, 3, "UTC", 60),
		MonthKey(5, 1, 2026, 4, "UTC", 60),
		MonthKey(5, 1, 2026, 3, "America/New_York", 60),
		MonthKey(5, 1, 2026, 3, "UTC", 30),
	}
	for _, v := range variants {
		if v == base {
			t.Fatalf("key %q must differ from base", v)
		}
	}
}

func TestVersionsIndependentPerCoach(t *testing.T) {
	ctx := context.Background()
	cal := NewCalendar(newMapStore(), time.Hour)

	_, _ = cal.Version(ctx, 1)
	_, _ = cal.Version(ctx, 2)

	if err := cal.Bump(ctx, 1); err != nil {
		t.Fatalf("bump failed: %v", err)
	}

	v1, _ := cal.Version(ctx, 1)
	v2, _ := cal.Version(ctx, 2)
	if v1 != 2 || v2 != 1 {
		t.Fatalf("expected independent versions, got coach1=%d coach2=%d", v1, v2)
	}
}
