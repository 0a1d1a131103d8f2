// Package guard rejects duplicate mutating operations. Two layers: a
// fingerprint guard keyed by the semantic identity of the operation, and a
// fingerprint-independent submit cooldown that absorbs double-click races
// before a fingerprint is even computed.
package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Fingerprint identifies "the same logical operation" across repeated
// submissions. Built from the operation kind and a stable payload subset.
type Fingerprint string

// NewFingerprint hashes the operation kind with the identifying payload
// fields (counterparty, description, amount).
func NewFingerprint(op string, parts ...string) Fingerprint {
	h := sha256.New()
	fmt.Fprintf(h, "%s", op)
	for _, p := range parts {
		fmt.Fprintf(h, "|%s", p)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

type Guard struct {
	mu       sync.Mutex
	pending  map[Fingerprint]time.Time
	recent   map[Fingerprint]time.Time
	suppress time.Duration
	grace    time.Duration
	now      func() time.Time
	after    func(time.Duration, func()) // deferred cleanup scheduler
}

func New(suppress, grace time.Duration) *Guard {
	g := &Guard{
		pending:  make(map[Fingerprint]time.Time),
		recent:   make(map[Fingerprint]time.Time),
		suppress: suppress,
		grace:    grace,
		now:      time.Now,
	}
	g.after = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	return g
}

// TryBegin reports whether the operation may proceed. A true return means
// the caller owns the fingerprint and must call End on every exit path.
func (g *Guard) TryBegin(fp Fingerprint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, inFlight := g.pending[fp]; inFlight {
		return false
	}
	if done, ok := g.recent[fp]; ok && g.now().Sub(done) < g.suppress {
		return false
	}

	g.pending[fp] = g.now()
	return true
}

// End releases the fingerprint and shadow-keeps it for the suppression
// check. The recent entry self-expires after the grace period.
func (g *Guard) End(fp Fingerprint) {
	g.mu.Lock()
	delete(g.pending, fp)
	g.recent[fp] = g.now()
	g.mu.Unlock()

	g.after(g.grace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.recent, fp)
	})
}

// Cooldown is the fingerprint-independent gate: at most one submit attempt
// per window, measured from the previous attempt's start.
type Cooldown struct {
	mu     sync.Mutex
	last   time.Time
	window time.Duration
	now    func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window, now: time.Now}
}

// Allow records an attempt and reports whether it may proceed. Rejected
// attempts do not reset the window.
func (c *Cooldown) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < c.window {
		return false
	}
	c.last = now
	return true
}
