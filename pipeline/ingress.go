package pipeline

import (
	"time"

	"relaycore/logging"
	"relaycore/peer"
)

// Demux is the Ethernet/IP demultiplexer the decoded plaintext is handed to;
// it lives outside this module's scope.
type Demux func(plaintext []byte, reordered bool)

// Ingress routes one inbound UDP datagram to its peer's session machinery.
// peer.Decrypt already implements the current-then-previous fallback and
// drop-counter bookkeeping; Ingress's only job is wiring the result to the
// demultiplexer and the refresh-wanted event.
func Ingress(p *peer.Peer, datagram []byte, now time.Time, log *logging.Logger, sink EventSink, demux Demux) {
	plaintext, reordered, err := p.Decrypt(datagram, now, log)
	if err != nil {
		log.Verbosef("ingress: peer %s: drop: %v", p.ID(), err)
		return
	}

	demux(plaintext, reordered)

	if p.WantRefresh(now) {
		sink.PeerRefreshWanted(p.ID())
	}
}
