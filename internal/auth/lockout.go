package auth

import (
	"sync"
	"time"
)

// Lockout tracks failed login attempts per username and locks a username
// out after too many failures inside a sliding window. State is held in
// memory only; a restart clears it, which is acceptable for its purpose.
type Lockout struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	lockFor     time.Duration
	now         func() time.Time

	attempts map[string][]time.Time
	lockedAt map[string]time.Time
}

// NewLockout creates a lockout tracker. maxAttempts <= 0 disables
// tracking entirely.
func NewLockout(maxAttempts int, window, lockFor time.Duration) *Lockout {
	return &Lockout{
		maxAttempts: maxAttempts,
		window:      window,
		lockFor:     lockFor,
		now:         time.Now,
		attempts:    map[string][]time.Time{},
		lockedAt:    map[string]time.Time{},
	}
}

// Locked reports whether the username is currently locked out and, when
// it is, how long until the lock expires.
func (l *Lockout) Locked(username string) (bool, time.Duration) {
	if l.maxAttempts <= 0 {
		return false, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	at, ok := l.lockedAt[username]
	if !ok {
		return false, 0
	}
	remaining := l.lockFor - l.now().Sub(at)
	if remaining <= 0 {
		delete(l.lockedAt, username)
		delete(l.attempts, username)
		return false, 0
	}
	return true, remaining
}

// Failure records a failed attempt. Returns true when this failure
// triggered a lockout.
func (l *Lockout) Failure(username string) bool {
	if l.maxAttempts <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.attempts[username][:0]
	for _, t := range l.attempts[username] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.attempts[username] = kept

	if len(kept) >= l.maxAttempts {
		l.lockedAt[username] = now
		return true
	}
	return false
}

// Success clears all state for the username.
func (l *Lockout) Success(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
	delete(l.lockedAt, username)
}
