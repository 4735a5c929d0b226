package limiter

import (
	"context"
	"testing"
	"time"
)

func TestAttemptCounterBlocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, 48*time.Hour)
	ip := "203.0.113.7"

	if ok, _ := l.Allowed(ctx, ip); !ok {
		t.Fatal("fresh client should be allowed")
	}

	if err := l.RecordCompletion(ctx, ip); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ok, _ := l.Allowed(ctx, ip); !ok {
		t.Fatal("one completion should not block")
	}

	if err := l.RecordCompletion(ctx, ip); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ok, _ := l.Allowed(ctx, ip); ok {
		t.Fatal("third attempt should be blocked after two completions")
	}

	// Other clients unaffected.
	if ok, _ := l.Allowed(ctx, "198.51.100.4"); !ok {
		t.Fatal("different client should be allowed")
	}
}

func TestAbandonmentDoesNotCount(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, 48*time.Hour)
	ip := "203.0.113.8"

	// Starting sessions without completing never increments.
	for i := 0; i < 5; i++ {
		if ok, _ := l.Allowed(ctx, ip); !ok {
			t.Fatalf("attempt %d should be allowed without completions", i)
		}
	}
}

func TestTimeLockExpires(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, 48*time.Hour).(*memoryLimiter)

	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	ip := "203.0.113.9"
	if err := l.Lock(ctx, ip); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if locked, _ := l.Locked(ctx, ip); !locked {
		t.Fatal("client should be locked right after completion")
	}

	current = current.Add(47 * time.Hour)
	if locked, _ := l.Locked(ctx, ip); !locked {
		t.Fatal("lock should still hold before 48h")
	}

	current = current.Add(2 * time.Hour)
	if locked, _ := l.Locked(ctx, ip); locked {
		t.Fatal("lock should self-clear after 48h")
	}
	// Cleared state stays cleared.
	if locked, _ := l.Locked(ctx, ip); locked {
		t.Fatal("expired lock should not come back")
	}
}
