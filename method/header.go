// Package method implements the state every cipher-suite provider shares:
// the on-wire common header, the 48-bit send nonce with role parity, the
// replay window, and the validity/refresh/supersession bookkeeping that
// drives session rotation.
package method

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderBytes is the size of the on-wire common header: a 48-bit
	// big-endian nonce, a flags byte, and one reserved byte.
	HeaderBytes = 8
	// NonceBytes is the width of the wire nonce within the header.
	NonceBytes = 6

	maxNonce48 = (uint64(1) << 48) - 1
)

// ErrShortPacket is returned when an inbound packet is too small to contain
// even the common header.
var ErrShortPacket = errors.New("method: packet shorter than common header")

// ErrBadFlags is returned when the header's flags byte is non-zero. The byte
// is reserved for future protocol revisions; any value a provider doesn't
// recognise is rejected.
var ErrBadFlags = errors.New("method: non-zero flags byte")

// Header is the decoded form of the 8-byte common header.
type Header struct {
	Nonce uint64
	Flags byte
}

// EncodeHeader writes the common header for the given nonce into dst[:8].
// dst must be at least HeaderBytes long.
func EncodeHeader(dst []byte, nonce uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce<<16) // shift 48-bit nonce into the top 6 bytes
	copy(dst[:NonceBytes], buf[:NonceBytes])
	dst[6] = 0 // flags
	dst[7] = 0 // reserved
}

// DecodeHeader parses the common header from the front of buf. buf must be
// at least HeaderBytes long; callers check length before calling this.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderBytes {
		return Header{}, ErrShortPacket
	}
	var padded [8]byte
	copy(padded[:NonceBytes], buf[:NonceBytes])
	nonce := binary.BigEndian.Uint64(padded[:]) >> 16
	return Header{Nonce: nonce, Flags: buf[6]}, nil
}
