// Package provider implements the two method providers: the production
// AEAD construction and the diagnostic cipher-test construction,
// both built from the independently-registered cipher and mac catalogues
// rather than a bundled AEAD primitive.
package provider

import (
	"errors"
	"fmt"
	"time"

	"relaycore/buffer"
	"relaycore/cipher"
	"relaycore/logging"
	"relaycore/mac"
	"relaycore/method"
)

// Kind distinguishes the two provider families a parsed Method can select.
type Kind int

const (
	// KindAEAD is the production provider: cipher + MAC, authenticated.
	KindAEAD Kind = iota
	// KindCipherTest is the diagnostic provider: cipher only, unauthenticated.
	KindCipherTest
)

var (
	// ErrInvalidSession is returned by decrypt when the session is not
	// currently usable (expired, or send counter exhausted). Encrypt does not
	// check expiry and never returns it; it fails with
	// method.ErrNonceExhausted once the send counter is spent.
	ErrInvalidSession = errors.New("provider: session is not valid")
	// ErrAuthFailure is returned by AEAD decrypt on a MAC mismatch.
	ErrAuthFailure = errors.New("provider: authentication failed")
)

// Method is a parsed, resolved cipher-suite descriptor: create_by_name's
// result. It is immutable once built and safe for concurrent session_init
// calls, though the core's single-threaded model never requires that.
type Method struct {
	name       string
	kind       Kind
	cipherName string
	macName    string
	cipherInfo cipher.Info
	macInfo    mac.Info
}

// Name returns the suite name the method was created from.
func (m *Method) Name() string { return m.name }

// Kind reports which provider family this method belongs to.
func (m *Method) Kind() Kind { return m.kind }

// Destroy releases the method descriptor. Method holds no resources beyond
// ordinary Go memory, so this is a no-op kept for parity with the
// create/destroy pairing the rest of the provider contract follows; the
// garbage collector reclaims a Method once its last reference drops.
func (m *Method) Destroy() {}

// Overhead is the number of bytes encrypt adds beyond the plaintext length:
// the common header, plus a MAC tag for the AEAD provider.
func (m *Method) Overhead() int {
	switch m.kind {
	case KindAEAD:
		return method.HeaderBytes + m.macInfo.TagLength
	default:
		return method.HeaderBytes
	}
}

// EncryptHeadroom is the number of bytes encrypt places before the
// ciphertext: the common header, for both provider kinds. Encrypt takes the
// plaintext as a plain slice and allocates its own output, so it never
// writes into headroom of a caller's buffer; the value is advertised for
// callers sizing their own buffers.
func (m *Method) EncryptHeadroom() int { return method.HeaderBytes }

// DecryptHeadroom is the space a caller sizing a socket read buffer should
// reserve before the wire packet so a successful decrypt can hand back
// plaintext without a second allocation. Both providers decrypt into a
// freshly allocated slice rather than shifting the inbound buffer's own
// window in place, so no headroom is required on the read side; this
// method exists so callers anticipating decrypt framing have the same
// four-dimension surface encrypt exposes.
func (m *Method) DecryptHeadroom() int { return 0 }

// Tailroom is the number of bytes encrypt appends after the ciphertext: the
// MAC tag for the AEAD provider, zero for the cipher-test provider. Encrypt
// reserves this tailroom in the output buffer it allocates itself.
func (m *Method) Tailroom() int {
	if m.kind == KindAEAD {
		return m.macInfo.TagLength
	}
	return 0
}

// KeyLength is the number of secret bytes session_init requires. For both
// provider kinds this is exactly the stream cipher's key length: the AEAD
// provider derives its one-time MAC key from the cipher's own keystream
// (NaCl secretbox's construction), so no separate MAC key is carried in the
// handshake secret.
func (m *Method) KeyLength() int { return m.cipherInfo.KeyLength }

// CreateByName parses a full suite name and resolves it against the cipher
// and mac registries. Grammar:
//
//	<cipher>+<mac>+aead        production AEAD provider
//	<cipher>+cipher-test       diagnostic provider, no MAC
//
// A name may additionally carry a leading "null+" compatibility token before
// the real cipher name (e.g. "null+salsa2012+umac+aead"); it is stripped and
// ignored, since it selects no distinct behaviour here (see the "null"
// identity cipher registered separately under its own name for the *one*
// case where it is the actual payload cipher).
func CreateByName(name string) (*Method, error) {
	tokens := splitPlus(name)
	if len(tokens) >= 2 && tokens[0] == "null" && tokens[len(tokens)-1] != "null" {
		// Leading compatibility prefix distinct from an actual "null" cipher
		// selection; only strip it when there is something left to parse.
		if len(tokens) > 2 {
			tokens = tokens[1:]
		}
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("provider: malformed method name %q", name)
	}

	suffix := tokens[len(tokens)-1]
	switch suffix {
	case "aead":
		if len(tokens) < 3 {
			return nil, fmt.Errorf("provider: %q: aead suite needs <cipher>+<mac>+aead", name)
		}
		cipherName := tokens[len(tokens)-3]
		macName := tokens[len(tokens)-2]
		cinfo, ok := cipher.Lookup(cipherName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", cipher.ErrUnknownCipher, cipherName)
		}
		minfo, ok := mac.Lookup(macName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", mac.ErrUnknownMAC, macName)
		}
		return &Method{
			name: name, kind: KindAEAD,
			cipherName: cipherName, macName: macName,
			cipherInfo: cinfo, macInfo: minfo,
		}, nil

	case "cipher-test":
		cipherName := tokens[len(tokens)-2]
		if cipherName == "" {
			return nil, fmt.Errorf("provider: %q: cipher-test needs a cipher name", name)
		}
		cinfo, ok := cipher.Lookup(cipherName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", cipher.ErrUnknownCipher, cipherName)
		}
		return &Method{
			name: name, kind: KindCipherTest,
			cipherName: cipherName,
			cipherInfo: cinfo,
		}, nil

	default:
		return nil, fmt.Errorf("provider: %q: unrecognised suite suffix %q", name, suffix)
	}
}

func splitPlus(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '+' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// Session is the live state for one end of one session under a Method:
// the shared nonce/replay/validity bookkeeping plus the raw cipher key.
// Encrypt and decrypt build the keyed cipher from that key for each packet;
// the AEAD provider derives each one-time MAC key from its keystream.
type Session struct {
	method     *Method
	common     *method.CommonState
	cipherKey  []byte
	warnedOnce bool
}

// Config collects the tunable parameters every session depends on. It is
// not a parsed CLI/config-file format — parsing configuration is out of
// scope here — just the value the handshake subsystem is expected to
// produce (from flags, a file, or hardcoded defaults) and hand to
// SessionInit and pipeline.InstallSession.
type Config struct {
	// ValidFor is how long a session stays usable after creation.
	ValidFor time.Duration
	// RefreshFraction is the share of ValidFor, past creation, after which
	// WantRefresh starts reporting true.
	RefreshFraction float64
	// RefreshAfterPackets is the send-nonce count past which WantRefresh
	// reports true regardless of elapsed time. Zero disables this check.
	RefreshAfterPackets uint64
	// SessionLinger bounds how long a retired previous session survives a
	// rotation, regardless of subsequent outbound traffic.
	SessionLinger time.Duration
}

// SessionInit builds session state from a raw secret of exactly
// m.KeyLength() bytes. now anchors validity/refresh timers; the cipher-test
// provider additionally emits a one-time warning through log.
func SessionInit(m *Method, secret []byte, initiator bool, now time.Time, cfg Config, log *logging.Logger) (*Session, error) {
	if len(secret) != m.KeyLength() {
		return nil, fmt.Errorf("provider: %s: want %d key bytes, got %d", m.name, m.KeyLength(), len(secret))
	}
	s := &Session{
		method:    m,
		common:    method.NewCommonState(initiator, now, cfg.ValidFor, cfg.RefreshFraction, cfg.RefreshAfterPackets),
		cipherKey: append([]byte(nil), secret...),
	}
	if m.kind == KindCipherTest {
		log.Warnf("method %q MUST NOT be used in production: no authentication is performed", m.name)
		s.warnedOnce = true
	}
	return s, nil
}

func (s *Session) IsValid(now time.Time) bool     { return s.common.IsValid(now) }
func (s *Session) IsInitiator() bool              { return s.common.IsInitiator() }
func (s *Session) WantRefresh(now time.Time) bool { return s.common.WantRefresh(now) }
func (s *Session) Superseded() bool               { return s.common.Superseded() }
func (s *Session) MarkSuperseded()                { s.common.MarkSuperseded() }

// Free releases a session once the handshake subsystem is done with it
// (superseded and past its linger window). Session holds no resources
// beyond ordinary Go memory and its key material, which is not worth
// zeroing here since cipherKey is already unreachable once the last
// reference to Session drops; this is a no-op kept for parity with the
// provider contract's explicit _free operation.
func (s *Session) Free() {}

// Encrypt consumes in (plaintext) and returns a freshly allocated buffer
// holding the common header plus ciphertext (plus MAC, for AEAD). Reported
// failures are nonce exhaustion or an underlying cipher fault; both leave
// the session's validity state already updated by CommonState.
func (m *Method) Encrypt(s *Session, in []byte, log *logging.Logger) (*buffer.Buffer, error) {
	switch m.kind {
	case KindAEAD:
		return aeadEncrypt(m, s, in)
	case KindCipherTest:
		return cipherTestEncrypt(m, s, in)
	default:
		panic("provider: unknown method kind")
	}
}

// Decrypt consumes in (wire packet) and returns plaintext plus whether the
// nonce arrived out of order. Per the ordering rules, malformed packets and
// invalid sessions are rejected before any decryption is attempted, and the
// replay window is only ever consulted after authentication succeeds.
func (m *Method) Decrypt(s *Session, in []byte, now time.Time, log *logging.Logger) (plaintext []byte, reordered bool, err error) {
	switch m.kind {
	case KindAEAD:
		return aeadDecrypt(m, s, in, now, log)
	case KindCipherTest:
		return cipherTestDecrypt(m, s, in, now, log)
	default:
		panic("provider: unknown method kind")
	}
}
