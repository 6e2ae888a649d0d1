// Package peer owns the two-slot current/previous session rotation the
// handshake subsystem drives: decryption tries the current session first and
// falls back to the previous one, while encryption always uses current.
package peer

import (
	"sync"
	"time"

	"relaycore/logging"
	"relaycore/provider"
)

// SessionHandle pairs a resolved method with one of its live sessions; both
// are needed to call Encrypt/Decrypt since the method carries the cipher
// suite's dispatch while the session carries per-peer state.
type SessionHandle struct {
	Method  *provider.Method
	Session *provider.Session
}

// Peer holds at most two sessions for one remote endpoint: the session
// currently used for encryption, and the immediately-preceding one kept
// alive briefly to absorb packets already in flight when it was retired.
type Peer struct {
	mu sync.Mutex

	id string

	current  *SessionHandle
	previous *SessionHandle

	// previousDeadline is when the previous session is destroyed outright,
	// regardless of outbound traffic, per session_linger.
	previousDeadline time.Time

	dropCount uint64
}

// New creates a peer with no session installed; the handshake subsystem
// must call InstallSession before any Encrypt/Decrypt call will succeed.
func New(id string) *Peer {
	return &Peer{id: id}
}

// ID returns the peer identifier the core was given; it is opaque to the
// core and never interpreted.
func (p *Peer) ID() string { return p.id }

// InstallSession performs the two-slot rotation: the existing current
// session (if any) is marked superseded and becomes previous, and handle
// becomes current. lingerFor bounds how long the retired previous session
// survives regardless of subsequent traffic. Reports whether this is the
// peer's first-ever session (peer_established fires only once).
func (p *Peer) InstallSession(handle *SessionHandle, now time.Time, lingerFor time.Duration) (firstSession bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	firstSession = p.current == nil
	if p.current != nil {
		p.current.Session.MarkSuperseded()
	}
	p.previous = p.current
	p.current = handle
	p.previousDeadline = now.Add(lingerFor)
	return firstSession
}

// Tick retires the previous session once its linger deadline has passed.
// Called once per event-loop tick alongside every other timeout check; the
// core has no timers of its own.
func (p *Peer) Tick(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.previous != nil && !now.Before(p.previousDeadline) {
		p.previous = nil
	}
}

// DropCount reports how many inbound packets have failed decryption under
// both the current and (if present) previous session.
func (p *Peer) DropCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropCount
}

// WantRefresh reports whether the current session has crossed its refresh
// threshold.
func (p *Peer) WantRefresh(now time.Time) bool {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	return cur != nil && cur.Session.WantRefresh(now)
}

// Encrypt always uses the current session. A successful send retires the
// previous session immediately: session_linger's "one additional outbound
// packet" threshold is satisfied by the very next packet sent on the new
// current session.
func (p *Peer) Encrypt(in []byte, log *logging.Logger) ([]byte, error) {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur == nil {
		return nil, ErrNoSession
	}

	out, err := cur.Method.Encrypt(cur.Session, in, log)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.previous = nil
	p.mu.Unlock()

	return out.Bytes(), nil
}

// Decrypt tries the current session, then falls back to the previous
// session once if present. A failure on both increments the per-peer drop
// counter, which the caller is expected to log at verbose level.
func (p *Peer) Decrypt(in []byte, now time.Time, log *logging.Logger) (plaintext []byte, reordered bool, err error) {
	p.mu.Lock()
	cur, prev := p.current, p.previous
	p.mu.Unlock()

	if cur == nil {
		p.recordDrop()
		return nil, false, ErrNoSession
	}

	plaintext, reordered, err = cur.Method.Decrypt(cur.Session, in, now, log)
	if err == nil {
		return plaintext, reordered, nil
	}

	if prev != nil {
		plaintext, reordered, err2 := prev.Method.Decrypt(prev.Session, in, now, log)
		if err2 == nil {
			return plaintext, reordered, nil
		}
	}

	p.recordDrop()
	return nil, false, err
}

func (p *Peer) recordDrop() {
	p.mu.Lock()
	p.dropCount++
	p.mu.Unlock()
}
