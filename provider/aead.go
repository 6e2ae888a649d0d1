package provider

import (
	"crypto/subtle"
	"time"

	"relaycore/buffer"
	"relaycore/cipher"
	"relaycore/logging"
	"relaycore/mac"
	"relaycore/method"
)

// expandNonce writes the 48-bit send nonce little-endian into the low bytes
// of an IV of length ivLen, zero-padding the rest. The on-wire header carries
// the same 48-bit value big-endian; the cipher IV re-encodes it little-endian
// per the provider's own internal convention, independent of wire framing.
func expandNonce(nonce uint64, ivLen int) []byte {
	iv := make([]byte, ivLen)
	for i := 0; i < method.NonceBytes && i < ivLen; i++ {
		iv[i] = byte(nonce >> (8 * uint(i)))
	}
	return iv
}

// deriveKeystream runs the cipher over a macKeyLen-byte zero prefix followed
// by src, returning (oneTimeMacKey, output-for-src). This is the NaCl
// secretbox zero-prefix convention (see the design notes on the AEAD
// primitive this method is modelled on): reserving the first keystream bytes
// for a one-time MAC key lets a plain stream cipher and an independent MAC
// primitive compose into an AEAD construction without a dedicated key
// schedule for the MAC.
func deriveKeystream(st cipher.State, iv []byte, macKeyLen int, src []byte) (macKey, out []byte, err error) {
	extendedIn := make([]byte, macKeyLen+len(src))
	copy(extendedIn[macKeyLen:], src)
	extendedOut := make([]byte, len(extendedIn))
	if err := st.Crypt(extendedOut, extendedIn, iv); err != nil {
		return nil, nil, err
	}
	return extendedOut[:macKeyLen], extendedOut[macKeyLen:], nil
}

func aeadEncrypt(m *Method, s *Session, in []byte) (*buffer.Buffer, error) {
	nonce, err := s.common.NextSendNonce()
	if err != nil {
		return nil, err
	}

	cst, _, err := cipher.New(m.cipherName, s.cipherKey)
	if err != nil {
		return nil, err
	}
	iv := expandNonce(nonce, m.cipherInfo.IVLength)

	macKey, ciphertext, err := deriveKeystream(cst, iv, m.macInfo.KeyLength, in)
	if err != nil {
		return nil, err
	}

	mst, _, err := mac.New(m.macName, macKey)
	if err != nil {
		return nil, err
	}

	buf := buffer.Alloc(method.HeaderBytes+len(ciphertext), 0, m.macInfo.TagLength)
	out := buf.Bytes()
	method.EncodeHeader(out[:method.HeaderBytes], nonce)
	copy(out[method.HeaderBytes:], ciphertext)

	tag := mst.Sum(out)
	buf.GrowTail(len(tag))
	copy(buf.Bytes()[buf.Len()-len(tag):], tag)

	return buf, nil
}

func aeadDecrypt(m *Method, s *Session, in []byte, now time.Time, log *logging.Logger) ([]byte, bool, error) {
	tagLen := m.macInfo.TagLength
	if len(in) < method.HeaderBytes+tagLen {
		log.Debugf("aead decrypt: short packet (%d bytes)", len(in))
		return nil, false, method.ErrShortPacket
	}
	if !s.IsValid(now) {
		log.Verbosef("aead decrypt: session not valid")
		return nil, false, ErrInvalidSession
	}

	header, err := method.DecodeHeader(in)
	if err != nil {
		return nil, false, err
	}
	if header.Flags != 0 {
		log.Debugf("aead decrypt: non-zero flags byte")
		return nil, false, method.ErrBadFlags
	}
	if header.Nonce&1 != s.common.ExpectedParity() {
		log.Debugf("aead decrypt: nonce parity mismatch")
		return nil, false, method.ErrBadParity
	}

	bodyEnd := len(in) - tagLen
	ciphertext := in[method.HeaderBytes:bodyEnd]
	gotTag := in[bodyEnd:]

	cst, _, err := cipher.New(m.cipherName, s.cipherKey)
	if err != nil {
		return nil, false, err
	}
	iv := expandNonce(header.Nonce, m.cipherInfo.IVLength)

	macKey, plaintext, err := deriveKeystream(cst, iv, m.macInfo.KeyLength, ciphertext)
	if err != nil {
		return nil, false, err
	}
	mst, _, err := mac.New(m.macName, macKey)
	if err != nil {
		return nil, false, err
	}
	wantTag := mst.Sum(in[:bodyEnd])
	if subtle.ConstantTimeCompare(wantTag, gotTag) != 1 {
		log.Debugf("aead decrypt: authentication failed")
		return nil, false, ErrAuthFailure
	}

	// Authentication succeeded: only now may the replay window be consulted.
	if _, err := s.common.CheckReplay(header.Nonce); err != nil {
		log.Debugf("aead decrypt: %v", err)
		return []byte{}, false, nil
	}
	reordered, _ := s.common.AcceptReplay(header.Nonce)
	return plaintext, reordered, nil
}
