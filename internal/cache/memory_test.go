package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "page", []byte("<html>"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "page")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "<html>" {
		t.Fatalf("got %q", got)
	}

	// Returned slice is a copy; mutating it must not corrupt the cache.
	got[0] = 'X'
	again, err := c.Get(ctx, "page")
	if err != nil || string(again) != "<html>" {
		t.Fatalf("cache corrupted: %q, %v", again, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "page", []byte("x"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.Get(ctx, "page"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired entry must miss, got %v", err)
	}
}

func TestMemoryCacheGetOrSet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("body"), nil
	}
	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(ctx, "page", time.Minute, fetch)
		if err != nil {
			t.Fatalf("get or set: %v", err)
		}
		if string(got) != "body" {
			t.Fatalf("got %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}

	boom := errors.New("upstream down")
	if _, err := c.GetOrSet(ctx, "other", time.Minute, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("fetch error must propagate, got %v", err)
	}
	if _, err := c.Get(ctx, "other"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("failed fetch must not be cached")
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("cleared entry still present")
	}
}
