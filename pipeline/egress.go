package pipeline

import (
	"time"

	"relaycore/logging"
	"relaycore/peer"
)

// Submit hands a framed wire packet to the UDP socket; it lives outside
// this module's scope.
type Submit func(wire []byte) error

// Egress routes one outbound TUN frame through its peer's current session
// and submits the result. Headroom/tailroom accounting is satisfied inside
// peer.Encrypt/Method.Encrypt, which allocate the correctly-sized buffer
// internally; Egress only needs the method's advertised overhead to size
// any buffer it builds itself before handing bytes off (e.g. when batching).
func Egress(p *peer.Peer, frame []byte, now time.Time, log *logging.Logger, submit Submit) error {
	wire, err := p.Encrypt(frame, log)
	if err != nil {
		log.Debugf("egress: peer %s: encrypt failed: %v", p.ID(), err)
		return err
	}
	return submit(wire)
}
