package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps counters in process. Each server instance enforces the
// limit on its own.
type MemoryStore struct {
	policy Policy
	mu     sync.Mutex
	counts *gocache.Cache
}

func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		policy: policy,
		counts: gocache.New(policy.Window, policy.Window),
	}
}

func (m *MemoryStore) Take(_ context.Context, key string, now time.Time) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var state State
	if v, found := m.counts.Get(key); found {
		state = v.(State)
	}

	allowed, state := m.policy.Allow(state, now)
	m.counts.Set(key, state, m.policy.Window)

	return m.policy.decide(state, allowed, now), nil
}
