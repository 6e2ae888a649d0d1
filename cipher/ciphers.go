package cipher

import (
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/salsa20"
)

func init() {
	Register("null", Info{KeyLength: 0, IVLength: 0, BlockSize: 1}, newNullState)
	Register("salsa20", Info{KeyLength: 32, IVLength: 8, BlockSize: 64}, newSalsa20State)
	Register("chacha20", Info{KeyLength: chacha20.KeySize, IVLength: chacha20.NonceSize, BlockSize: 64}, newChaCha20State)
}

// nullState is the identity primitive: it copies src to dst unmodified.
// Registered under "null" so the diagnostic cipher-test provider (as in
// "null+cipher-test") has a concrete, always-available primitive to exercise
// without pulling in real key material. The leading "null+" compatibility
// prefix that provider.CreateByName strips from longer names does not select
// this primitive.
type nullState struct{}

func newNullState(key []byte) (State, error) { return nullState{}, nil }

func (nullState) Crypt(dst, src, iv []byte) error {
	copy(dst, src)
	return nil
}

type salsa20State struct {
	key [32]byte
}

func newSalsa20State(key []byte) (State, error) {
	var s salsa20State
	copy(s.key[:], key)
	return &s, nil
}

func (s *salsa20State) Crypt(dst, src, iv []byte) error {
	if len(iv) != 8 {
		return fmt.Errorf("salsa20: iv must be 8 bytes, got %d", len(iv))
	}
	var nonce [8]byte
	copy(nonce[:], iv)
	salsa20.XORKeyStream(dst, src, nonce[:], &s.key)
	return nil
}

type chacha20State struct {
	key [chacha20.KeySize]byte
}

func newChaCha20State(key []byte) (State, error) {
	var s chacha20State
	copy(s.key[:], key)
	return &s, nil
}

func (s *chacha20State) Crypt(dst, src, iv []byte) error {
	if len(iv) != chacha20.NonceSize {
		return fmt.Errorf("chacha20: iv must be %d bytes, got %d", chacha20.NonceSize, len(iv))
	}
	c, err := chacha20.NewUnauthenticatedCipher(s.key[:], iv)
	if err != nil {
		return err
	}
	c.XORKeyStream(dst, src)
	return nil
}
