package method

import (
	"sync"
	"time"
)

// CommonState is the state every method provider shares: the send-side
// nonce counter, the receive-side replay window, and the validity/refresh/
// supersession bookkeeping that the handshake subsystem consults to decide
// when to renegotiate. It never touches a wall clock itself; "now" is
// threaded through from the single poll-loop tick, matching the cooperative,
// suspension-free concurrency model the rest of this module follows.
type CommonState struct {
	mu sync.Mutex

	initiator bool
	createdAt time.Time
	validFor  time.Duration

	// refreshFraction is the share of validFor, past session creation,
	// after which a refresh is requested.
	refreshFraction float64
	// refreshAfterPackets is the send-nonce count past which a refresh is
	// requested, regardless of elapsed time.
	refreshAfterPackets uint64

	send       *SendNonce
	recv       ReplayWindow
	superseded bool
}

// NewCommonState builds the shared state for a freshly-established session.
func NewCommonState(initiator bool, now time.Time, validFor time.Duration, refreshFraction float64, refreshAfterPackets uint64) *CommonState {
	return &CommonState{
		initiator:           initiator,
		createdAt:           now,
		validFor:            validFor,
		refreshFraction:     refreshFraction,
		refreshAfterPackets: refreshAfterPackets,
		send:                NewSendNonce(initiator),
	}
}

// NewCommonStateAtSendValue builds a session whose send counter starts from
// an explicit value instead of the role's default seed. Used by method
// providers resuming persisted session state and by tests exercising nonce
// exhaustion without iterating the counter 2^47 times.
func NewCommonStateAtSendValue(initiator bool, now time.Time, validFor time.Duration, refreshFraction float64, refreshAfterPackets, sendValue uint64) *CommonState {
	c := NewCommonState(initiator, now, validFor, refreshFraction, refreshAfterPackets)
	c.send.value = sendValue
	return c
}

// MaxNonce reports the highest representable 48-bit nonce value.
func MaxNonce() uint64 { return maxNonce48 }

// IsInitiator reports the fixed role of this session.
func (c *CommonState) IsInitiator() bool {
	return c.initiator
}

// IsValid reports whether the session may still send, per §4.3.4: valid
// from creation until validTill, and never once the send counter is
// exhausted.
func (c *CommonState) IsValid(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send.Exhausted() {
		return false
	}
	return now.Before(c.createdAt.Add(c.validFor))
}

// WantRefresh reports whether the handshake subsystem should start
// renegotiating: either the elapsed fraction of the session lifetime has
// passed, or the send counter has crossed the configured packet threshold.
func (c *CommonState) WantRefresh(now time.Time) bool {
	c.mu.Lock()
	threshold := c.createdAt.Add(time.Duration(float64(c.validFor) * c.refreshFraction))
	refreshAfterPackets := c.refreshAfterPackets
	c.mu.Unlock()

	if now.After(threshold) {
		return true
	}
	if refreshAfterPackets == 0 {
		return false
	}
	return c.send.sentApprox() >= refreshAfterPackets
}

// Superseded reports whether a newer session has been fully established.
func (c *CommonState) Superseded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.superseded
}

// MarkSuperseded flags this session as replaced by a newer one. The session
// is kept only until the next outbound packet once marked.
func (c *CommonState) MarkSuperseded() {
	c.mu.Lock()
	c.superseded = true
	c.mu.Unlock()
}

// NextSendNonce advances and returns the next outgoing nonce.
func (c *CommonState) NextSendNonce() (uint64, error) {
	return c.send.Next()
}

// CheckReplay reports whether an inbound nonce would be accepted, without
// mutating the replay window. Callers must authenticate the packet before
// calling AcceptReplay.
func (c *CommonState) CheckReplay(nonce uint64) (age uint64, err error) {
	return c.recv.Check(nonce)
}

// AcceptReplay commits an authenticated nonce to the replay window.
func (c *CommonState) AcceptReplay(nonce uint64) (reordered bool, age uint64) {
	return c.recv.Accept(nonce)
}

// ExpectedParity reports the low bit a nonce received by this session must
// carry: the opposite of this session's own role, since the initiator's
// sends are odd and the responder's are even.
func (c *CommonState) ExpectedParity() uint64 {
	if c.initiator {
		return 0
	}
	return 1
}
