package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	sessions, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })
	return sessions
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	sessions := setupTestRedis(t)
	ctx := context.Background()

	if err := sessions.SaveRefreshSession(ctx, "hash-1", "usr_123", time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	user, err := sessions.LookupRefreshSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LookupRefreshSession failed: %v", err)
	}
	if user.ID != "usr_123" {
		t.Errorf("expected user usr_123, got %q", user.ID)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	s := miniredis.RunT(t)
	sessions, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	defer sessions.Close()

	ctx := context.Background()
	if err := sessions.SaveRefreshSession(ctx, "hash-exp", "usr_456", time.Now().Add(time.Millisecond)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	s.FastForward(2 * time.Millisecond)

	if _, err := sessions.LookupRefreshSession(ctx, "hash-exp"); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestLookupUnknownSession(t *testing.T) {
	sessions := setupTestRedis(t)
	if _, err := sessions.LookupRefreshSession(context.Background(), "never-saved"); err == nil {
		t.Error("expected error for unknown token, got nil")
	}
}

func TestRevokeRefreshSession(t *testing.T) {
	sessions := setupTestRedis(t)
	ctx := context.Background()

	if err := sessions.SaveRefreshSession(ctx, "hash-rev", "usr_789", time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}
	if err := sessions.RevokeRefreshSession(ctx, "hash-rev"); err != nil {
		t.Fatalf("RevokeRefreshSession failed: %v", err)
	}
	if _, err := sessions.LookupRefreshSession(ctx, "hash-rev"); err == nil {
		t.Error("expected error after revocation, got nil")
	}
}

func TestPing(t *testing.T) {
	sessions := setupTestRedis(t)
	if err := sessions.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
