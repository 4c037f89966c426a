package bot

import (
	"fmt"
	"sync"
	"time"
)

// CooldownTable rate-limits commands per user to keep the AI providers from
// being hammered. One entry per (user, command) pair.
type CooldownTable struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[string]time.Time
}

// NewCooldownTable creates a cooldown table with the given per-command window
func NewCooldownTable(ttl time.Duration) *CooldownTable {
	return &CooldownTable{
		ttl:     ttl,
		expires: make(map[string]time.Time),
	}
}

func cooldownKey(userID, command string) string {
	return fmt.Sprintf("%s:%s", userID, command)
}

// Allow reports whether the user may run the command now, and if so starts a
// new cooldown window
func (t *CooldownTable) Allow(userID, command string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cooldownKey(userID, command)
	now := time.Now()

	if expiry, ok := t.expires[key]; ok && now.Before(expiry) {
		return false
	}

	t.expires[key] = now.Add(t.ttl)

	// Opportunistic cleanup of expired entries
	for k, expiry := range t.expires {
		if now.After(expiry) {
			delete(t.expires, k)
		}
	}

	return true
}

// Remaining returns how long until the user may run the command again
func (t *CooldownTable) Remaining(userID, command string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.expires[cooldownKey(userID, command)]
	if !ok {
		return 0
	}

	remaining := time.Until(expiry)
	if remaining < 0 {
		return 0
	}
	return remaining
}
