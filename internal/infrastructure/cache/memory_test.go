package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedValue struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	var dest cachedValue
	err := c.Get(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	original := cachedValue{Name: "overview", Items: []string{"a", "b"}}
	if err := c.SetWithTTL(ctx, "metrics:v1:overview", original, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the original must not affect the cached copy
	original.Items[0] = "changed"

	var got cachedValue
	if err := c.Get(ctx, "metrics:v1:overview", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "overview" {
		t.Errorf("expected name overview, got %s", got.Name)
	}
	if got.Items[0] != "a" {
		t.Errorf("expected cached copy to be isolated, got %s", got.Items[0])
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "short", cachedValue{Name: "x"}, time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got cachedValue
	if err := c.Get(ctx, "short", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	_ = c.SetWithTTL(ctx, "metrics:a", cachedValue{Name: "a"}, time.Minute)
	_ = c.SetWithTTL(ctx, "metrics:b", cachedValue{Name: "b"}, time.Minute)
	_ = c.SetWithTTL(ctx, "other:c", cachedValue{Name: "c"}, time.Minute)

	if err := c.DeletePrefix(ctx, "metrics:"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got cachedValue
	if err := c.Get(ctx, "metrics:a", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected metrics:a to be deleted")
	}
	if err := c.Get(ctx, "metrics:b", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected metrics:b to be deleted")
	}
	if err := c.Get(ctx, "other:c", &got); err != nil {
		t.Errorf("expected other:c to survive, got %v", err)
	}
}

func TestMemoryCache_HealthCheck(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}
