package chain

import (
	"sync"
	"time"

	"credval/internal/validation/models"
)

const (
	// DefaultBreakerThreshold is the consecutive transport-failure count
	// that opens a provider's circuit.
	DefaultBreakerThreshold = 5

	// DefaultBreakerCooldown is how long an open circuit skips its
	// provider before the next call is allowed through.
	DefaultBreakerCooldown = time.Minute
)

// BreakerSet tracks one circuit per provider. When a provider accumulates
// enough consecutive transport failures its circuit opens and the chain
// walker skips it until the cooldown elapses, letting fallbacks answer
// without waiting out a dead upstream every request.
//
// Only transport-level failures count against a provider: an authoritative
// rejection or a NOT_FOUND is a healthy answer about the input, not a sign
// the provider is down.
type BreakerSet struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	states map[string]*breakerState
}

type breakerState struct {
	failures  int
	openUntil time.Time
	open      bool
}

// NewBreakerSet creates a breaker set. Non-positive arguments fall back to
// the package defaults.
func NewBreakerSet(threshold int, cooldown time.Duration) *BreakerSet {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	return &BreakerSet{
		threshold: threshold,
		cooldown:  cooldown,
		states:    make(map[string]*breakerState),
	}
}

// Allow reports whether the provider may be called. An open circuit whose
// cooldown has expired transitions to half-open and lets one call through.
func (b *BreakerSet) Allow(provider string) bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[provider]
	if !ok || !st.open {
		return true
	}
	if time.Now().After(st.openUntil) {
		st.open = false
		st.failures = 0
		return true
	}
	return false
}

// Record feeds one attempt outcome into the provider's circuit.
func (b *BreakerSet) Record(provider string, code models.ErrorCode, failed bool) {
	if b == nil {
		return
	}
	if failed && transportFailure(code) {
		b.recordFailure(provider)
		return
	}
	b.recordSuccess(provider)
}

// IsOpen reports whether the provider's circuit is currently open.
func (b *BreakerSet) IsOpen(provider string) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[provider]
	return ok && st.open && time.Now().Before(st.openUntil)
}

// Reset closes the provider's circuit and clears its failure count.
func (b *BreakerSet) Reset(provider string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, provider)
}

func (b *BreakerSet) recordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, provider)
}

func (b *BreakerSet) recordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[provider]
	if !ok {
		st = &breakerState{}
		b.states[provider] = st
	}
	st.failures++
	if st.failures >= b.threshold {
		st.open = true
		st.openUntil = time.Now().Add(b.cooldown)
	}
}

// transportFailure reports whether the code indicates the provider itself
// is unhealthy, as opposed to a definitive answer about the input.
func transportFailure(code models.ErrorCode) bool {
	switch code {
	case models.ErrServiceUnavailable, models.ErrTimeout, models.ErrNetwork, models.ErrUnknown:
		return true
	}
	return false
}
