package pipeline

import (
	"time"

	"relaycore/peer"
	"relaycore/provider"
)

// InstallSession is the entry point the handshake subsystem calls to hand
// the core a newly-negotiated session. It performs the two-slot rotation and
// raises peer_established (first session ever) or peer_session_installed
// (every subsequent rotation). cfg.SessionLinger bounds how long the
// retired previous session survives the rotation.
func InstallSession(p *peer.Peer, handle *peer.SessionHandle, now time.Time, cfg provider.Config, sink EventSink) {
	first := p.InstallSession(handle, now, cfg.SessionLinger)
	if first {
		sink.PeerEstablished(p.ID())
	} else {
		sink.PeerSessionInstalled(p.ID())
	}
}
