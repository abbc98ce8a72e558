// Package ratelimit caps how often one client may call an endpoint using
// fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Policy allows Limit requests per Window. Every request counts, including
// rejected ones, and a window is not extended by traffic inside it.
type Policy struct {
	Limit  int
	Window time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Limit: 10, Window: time.Minute}
}

// State is the counter for one key.
type State struct {
	Count       int
	WindowStart time.Time
}

// Allow counts one request at now and reports whether it fits the window.
func (p Policy) Allow(s State, now time.Time) (bool, State) {
	if s.WindowStart.IsZero() || !now.Before(s.WindowStart.Add(p.Window)) {
		s = State{WindowStart: now}
	}
	s.Count++
	return s.Count <= p.Limit, s
}

func (p Policy) decide(s State, allowed bool, now time.Time) Decision {
	remaining := p.Limit - s.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:    allowed,
		Limit:      p.Limit,
		Remaining:  remaining,
		RetryAfter: s.WindowStart.Add(p.Window).Sub(now),
	}
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the time left in the current window.
	RetryAfter time.Duration
}

// Store keeps the counters. Take counts one request for key.
type Store interface {
	Take(ctx context.Context, key string, now time.Time) (Decision, error)
}
