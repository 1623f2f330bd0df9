package auth

import (
	"testing"
	"time"
)

func newTestLockout(max int, window, lockFor time.Duration) (*Lockout, *time.Time) {
	l := NewLockout(max, window, lockFor)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLockout_TriggersAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLockout(3, 5*time.Minute, 15*time.Minute)

	if l.Failure("alice") {
		t.Error("first failure must not lock")
	}
	if l.Failure("alice") {
		t.Error("second failure must not lock")
	}
	if !l.Failure("alice") {
		t.Error("third failure must lock")
	}

	locked, remaining := l.Locked("alice")
	if !locked {
		t.Fatal("alice should be locked")
	}
	if remaining != 15*time.Minute {
		t.Errorf("remaining = %v, want 15m", remaining)
	}

	if locked, _ := l.Locked("bob"); locked {
		t.Error("bob must be unaffected")
	}
}

func TestLockout_WindowExpiry(t *testing.T) {
	l, now := newTestLockout(3, 5*time.Minute, 15*time.Minute)

	l.Failure("alice")
	l.Failure("alice")
	*now = now.Add(6 * time.Minute)
	// Both earlier failures fell out of the window.
	if l.Failure("alice") {
		t.Error("stale failures must not count toward the threshold")
	}
}

func TestLockout_ExpiresAndClears(t *testing.T) {
	l, now := newTestLockout(2, 5*time.Minute, 10*time.Minute)

	l.Failure("alice")
	l.Failure("alice")
	if locked, _ := l.Locked("alice"); !locked {
		t.Fatal("alice should be locked")
	}

	*now = now.Add(11 * time.Minute)
	if locked, _ := l.Locked("alice"); locked {
		t.Error("lock must expire after the lockout duration")
	}
	// Expiry also cleared the attempt history.
	if l.Failure("alice") {
		t.Error("post-expiry failure count must restart")
	}
}

func TestLockout_SuccessClears(t *testing.T) {
	l, _ := newTestLockout(3, 5*time.Minute, 15*time.Minute)

	l.Failure("alice")
	l.Failure("alice")
	l.Success("alice")
	if l.Failure("alice") {
		t.Error("success must reset the failure count")
	}
}

func TestLockout_Disabled(t *testing.T) {
	l, _ := newTestLockout(0, time.Minute, time.Minute)
	for i := 0; i < 10; i++ {
		if l.Failure("alice") {
			t.Fatal("disabled tracker must never lock")
		}
	}
	if locked, _ := l.Locked("alice"); locked {
		t.Error("disabled tracker must never report locked")
	}
}
