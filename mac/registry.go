// Package mac is the process-wide catalogue of keyed authentication
// primitives, the counterpart to package cipher. The AEAD method provider
// composes one entry from each catalogue (stream cipher + MAC) into an
// authenticated construction, since this corpus has no bundled AEAD
// primitive that models the independently-pluggable cipher/mac naming
// grammar directly.
package mac

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownMAC = errors.New("mac: unknown name")

// Info describes the dimensions of a registered MAC primitive.
type Info struct {
	KeyLength int
	TagLength int
}

// State is a keyed MAC instance, one-shot per message like the primitives it
// wraps (poly1305, HMAC).
type State interface {
	Sum(data []byte) []byte
}

// Factory builds a State from key material of exactly Info.KeyLength bytes.
type Factory func(key []byte) (State, error)

type entry struct {
	info    Info
	factory Factory
}

var (
	mu       sync.RWMutex
	registry = map[string]entry{}
)

func Register(name string, info Info, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("mac: %q already registered", name))
	}
	registry[name] = entry{info: info, factory: factory}
}

func Lookup(name string) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[name]
	return e.info, ok
}

func New(name string, key []byte) (State, Info, error) {
	mu.RLock()
	e, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, Info{}, fmt.Errorf("%w: %q", ErrUnknownMAC, name)
	}
	if len(key) != e.info.KeyLength {
		return nil, Info{}, fmt.Errorf("mac %q: want %d key bytes, got %d", name, e.info.KeyLength, len(key))
	}
	st, err := e.factory(key)
	if err != nil {
		return nil, Info{}, err
	}
	return st, e.info, nil
}
