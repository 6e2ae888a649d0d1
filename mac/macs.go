package mac

import (
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/poly1305"
)

func init() {
	// "umac" names the poly1305-backed entry. fastd-style method names call
	// for a UMAC primitive, which has no implementation in this corpus or in
	// golang.org/x/crypto; poly1305 is the nearest available one-time,
	// keyed universal-hash MAC (also 16-byte tags), so the catalogue
	// registers it under that name rather than leaving the grammar unusable.
	Register("umac", Info{KeyLength: 32, TagLength: 16}, newPoly1305State)
	Register("hmac-sha256", Info{KeyLength: 32, TagLength: sha256.Size}, newHMACSHA256State)
}

type poly1305State struct {
	key [32]byte
}

func newPoly1305State(key []byte) (State, error) {
	var s poly1305State
	copy(s.key[:], key)
	return &s, nil
}

func (s *poly1305State) Sum(data []byte) []byte {
	var tag [16]byte
	poly1305.Sum(&tag, data, &s.key)
	return tag[:]
}

type hmacSHA256State struct {
	key []byte
}

func newHMACSHA256State(key []byte) (State, error) {
	return &hmacSHA256State{key: append([]byte(nil), key...)}, nil
}

func (s *hmacSHA256State) Sum(data []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	return h.Sum(nil)
}
