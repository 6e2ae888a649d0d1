package method

import (
	"errors"
	"sync"
)

// ErrNonceExhausted is returned once the 48-bit send counter would overflow.
// The session is terminal at that point; it must be renegotiated.
var ErrNonceExhausted = errors.New("method: send nonce exhausted, session must be renegotiated")

// SendNonce is the outgoing 48-bit counter. The initiator starts at 1, the
// responder at 0, and each side advances by 2 so both directions share one
// 48-bit space without collision; the low bit of every nonce therefore
// always carries the same role parity for the life of the session.
type SendNonce struct {
	mu        sync.Mutex
	value     uint64
	sent      uint64
	exhausted bool
}

// NewSendNonce seeds the counter with the correct starting parity.
func NewSendNonce(initiator bool) *SendNonce {
	n := &SendNonce{}
	if initiator {
		n.value = 1
	}
	return n
}

// Next returns the nonce to stamp on the next outbound packet and advances
// the counter by 2. It fails once advancing would exceed the 48-bit range;
// from that point every session on this counter is permanently invalid.
func (n *SendNonce) Next() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.exhausted {
		return 0, ErrNonceExhausted
	}

	cur := n.value
	next := cur + 2
	if next > maxNonce48 {
		n.exhausted = true
		return 0, ErrNonceExhausted
	}
	n.value = next
	n.sent++
	return cur, nil
}

// Exhausted reports whether the counter has been permanently retired.
func (n *SendNonce) Exhausted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.exhausted
}

// sentApprox reports how many packets have been sent on this counter.
func (n *SendNonce) sentApprox() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}
