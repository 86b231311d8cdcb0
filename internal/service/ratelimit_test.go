package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/event-tracker/internal/service"
)

func newTestTokenBucket(t *testing.T, rate, capacity float64) (*service.TokenBucket, func(time.Duration)) {
	t.Helper()
	mock := newMockClock()
	tb := service.NewTokenBucket(rate, capacity, mock)
	t.Cleanup(tb.Stop)
	return tb, mock.Add
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb, _ := newTestTokenBucket(t, 1, 3) // rate=1/s, capacity=3

	// Should allow 3 requests immediately (full bucket).
	for i := 0; i < 3; i++ {
		if !tb.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}

	// 4th request should be denied (bucket empty).
	if tb.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb, _ := newTestTokenBucket(t, 1, 1) // capacity=1

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}

	// ip-b has its own bucket.
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb, advance := newTestTokenBucket(t, 0.5, 1) // one token every 2s

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("second request should be denied")
	}

	advance(time.Second)
	if tb.Allow("k") {
		t.Fatal("half a token is not enough")
	}

	advance(time.Second)
	if !tb.Allow("k") {
		t.Fatal("request should be allowed after refill")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb, advance := newTestTokenBucket(t, 0, 2) // never refills

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if !tb.Allow("k") {
		t.Fatal("second request should be allowed")
	}
	advance(4 * time.Minute)
	if tb.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestTokenBucket_SweepsIdleKeys(t *testing.T) {
	tb, advance := newTestTokenBucket(t, 1, 1)

	tb.Allow("idle")
	if got := tb.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}

	// Two sweep intervals pass the idle timeout.
	for i := 0; i < 3; i++ {
		advance(5 * time.Minute)
	}

	deadline := time.Now().Add(2 * time.Second)
	for tb.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected idle bucket to be removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
