package service

import (
	"testing"

	"convo-chat/internal/domain"
)

func TestMemoryProfileCache_SetGetInvalidate(t *testing.T) {
	cache := NewMemoryProfileCache()
	user := domain.User{ID: "u1", Email: "user@example.com", FirstName: "Ann"}

	if _, ok := cache.Get("u1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cache.Set("u1", user)
	got, ok := cache.Get("u1")
	if !ok || got.Email != "user@example.com" {
		t.Fatalf("expected cached view, got %+v ok=%v", got, ok)
	}

	cache.Invalidate("u1")
	if _, ok := cache.Get("u1"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestMemoryProfileCache_IgnoresEmptyKey(t *testing.T) {
	cache := NewMemoryProfileCache()
	cache.Set("", domain.User{ID: "x"})
	if _, ok := cache.Get(""); ok {
		t.Fatalf("empty keys must never be cached")
	}
}
