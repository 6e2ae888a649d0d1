// Package pipeline contains the narrow glue between socket/TUN I/O (owned by
// the surrounding event loop, outside this module's scope) and the per-peer
// session machinery in package peer: routing an inbound datagram to decrypt,
// routing an outbound frame to encrypt, and the three upward-facing events
// the handshake subsystem reacts to.
package pipeline

// EventSink receives the three events the core raises upward. The runtime
// decides what to do with them (start a rekey, log a metric, ...); the core
// only decides when to fire.
type EventSink interface {
	// PeerEstablished fires the first time a peer's first session is
	// installed.
	PeerEstablished(peerID string)
	// PeerRefreshWanted fires after each successfully decrypted inbound
	// packet while the peer's current session is past its refresh
	// threshold; it is not limited to the first crossing.
	PeerRefreshWanted(peerID string)
	// PeerSessionInstalled fires whenever the handshake subsystem rotates a
	// peer onto a new session.
	PeerSessionInstalled(peerID string)
}

// NopEventSink discards every event; useful for callers that only care about
// the data path.
type NopEventSink struct{}

func (NopEventSink) PeerEstablished(string)      {}
func (NopEventSink) PeerRefreshWanted(string)    {}
func (NopEventSink) PeerSessionInstalled(string) {}
