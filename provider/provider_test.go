package provider

import (
	"bytes"
	"testing"
	"time"

	"relaycore/logging"
	"relaycore/method"
)

var epoch = time.Unix(1_700_000_000, 0)

var testCfg = Config{ValidFor: time.Hour, RefreshFraction: 0.9}

func newPair(t *testing.T, name string, key []byte) (*Method, *Session, *Session) {
	t.Helper()
	m, err := CreateByName(name)
	if err != nil {
		t.Fatalf("CreateByName(%q): %v", name, err)
	}
	log := logging.New(func(logging.Level) bool { return true }, nil)
	initSess, err := SessionInit(m, key, true, epoch, testCfg, log)
	if err != nil {
		t.Fatalf("SessionInit(initiator): %v", err)
	}
	respSess, err := SessionInit(m, key, false, epoch, testCfg, log)
	if err != nil {
		t.Fatalf("SessionInit(responder): %v", err)
	}
	return m, initSess, respSess
}

// Scenario 1: round-trip one packet through the AEAD provider.
func TestAEADRoundTripOnePacket(t *testing.T) {
	key := make([]byte, 32)
	m, initSess, respSess := newPair(t, "salsa20+umac+aead", key)
	log := logging.New(nil, nil)

	plaintext := []byte{0x01, 0x02, 0x03, 0x04}
	out, err := m.Encrypt(initSess, plaintext, log)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if out.Len() != method.HeaderBytes+len(plaintext)+16 {
		t.Fatalf("ciphertext length = %d, want %d", out.Len(), method.HeaderBytes+len(plaintext)+16)
	}
	wire := out.Bytes()
	wantHeader := []byte{0, 0, 0, 0, 0, 1, 0, 0}
	if !bytes.Equal(wire[:method.HeaderBytes], wantHeader) {
		t.Fatalf("header = % x, want % x", wire[:method.HeaderBytes], wantHeader)
	}

	got, reordered, err := m.Decrypt(respSess, wire, epoch, log)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if reordered {
		t.Fatal("first packet must not be reported reordered")
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("roundtrip mismatch: got % x want % x", got, plaintext)
	}
}

// Scenario 2: replaying the same wire bytes is accepted once, then dropped
// with a zero-length (but success) result, without perturbing max_nonce.
func TestAEADReplayIsRejectedSecondTime(t *testing.T) {
	key := make([]byte, 32)
	m, initSess, respSess := newPair(t, "salsa20+umac+aead", key)
	log := logging.New(nil, nil)

	out, err := m.Encrypt(initSess, []byte{1, 2, 3}, log)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	wire := append([]byte(nil), out.Bytes()...)

	if _, _, err := m.Decrypt(respSess, wire, epoch, log); err != nil {
		t.Fatalf("first decrypt: %v", err)
	}

	got, reordered, err := m.Decrypt(respSess, wire, epoch, log)
	if err != nil {
		t.Fatalf("second decrypt should report success-with-drop, got error: %v", err)
	}
	if reordered {
		t.Fatal("replay must not be reported as reordered")
	}
	if len(got) != 0 {
		t.Fatalf("replayed packet's plaintext must be unobservable, got %d bytes", len(got))
	}
}

// Scenario 3: packets delivered out of order within the replay window all
// decrypt successfully, with reordered set on every one after the first.
func TestAEADReorderWithinWindow(t *testing.T) {
	key := make([]byte, 32)
	m, initSess, respSess := newPair(t, "salsa20+umac+aead", key)
	log := logging.New(nil, nil)

	var wires [][]byte
	for i := 0; i < 4; i++ {
		out, err := m.Encrypt(initSess, []byte{byte(i)}, log)
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		wires = append(wires, append([]byte(nil), out.Bytes()...))
	}
	// wires[0..3] carry nonces 1,3,5,7. Deliver as 7,3,5,1.
	order := []int{3, 1, 2, 0}
	wantReordered := []bool{false, true, true, true}

	for i, idx := range order {
		_, reordered, err := m.Decrypt(respSess, wires[idx], epoch, log)
		if err != nil {
			t.Fatalf("decrypt step %d (wire %d): %v", i, idx, err)
		}
		if reordered != wantReordered[i] {
			t.Fatalf("step %d: reordered = %v, want %v", i, reordered, wantReordered[i])
		}
	}
}

// Scenario 4: two initiator sessions (both expecting odd nonces) cannot
// decrypt each other's packets, regardless of key agreement.
func TestAEADParityRejection(t *testing.T) {
	key := make([]byte, 32)
	m, err := CreateByName("salsa20+umac+aead")
	if err != nil {
		t.Fatalf("CreateByName: %v", err)
	}
	log := logging.New(nil, nil)
	a, err := SessionInit(m, key, true, epoch, testCfg, log)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SessionInit(m, key, true, epoch, testCfg, log)
	if err != nil {
		t.Fatal(err)
	}

	out, err := m.Encrypt(a, []byte{9}, log)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, _, err := m.Decrypt(b, out.Bytes(), epoch, log); err != method.ErrBadParity {
		t.Fatalf("expected ErrBadParity, got %v", err)
	}
}

// Scenario 5: once the send nonce is exhausted, encrypt fails and the
// session is permanently invalid.
func TestAEADNonceExhaustion(t *testing.T) {
	key := make([]byte, 32)
	m, err := CreateByName("salsa20+umac+aead")
	if err != nil {
		t.Fatal(err)
	}
	log := logging.New(nil, nil)
	s, err := SessionInit(m, key, true, epoch, testCfg, log)
	if err != nil {
		t.Fatal(err)
	}
	s.common = method.NewCommonStateAtSendValue(true, epoch, time.Hour, 0.9, 0, method.MaxNonce()-2)
	if _, err := m.Encrypt(s, []byte{1}, log); err != nil {
		t.Fatalf("last valid send before exhaustion should succeed: %v", err)
	}

	if _, err := m.Encrypt(s, []byte{1}, log); err == nil {
		t.Fatal("expected encrypt to fail once the send nonce is exhausted")
	}
	if s.IsValid(epoch) {
		t.Fatal("session must be permanently invalid after nonce exhaustion")
	}
}

// Scenario 6: the cipher-test provider round-trips deterministically and
// warns exactly once per session initialisation.
func TestCipherTestDeterministicRoundTrip(t *testing.T) {
	countingSink := &countSink{}
	log := logging.New(func(logging.Level) bool { return true }, countingSink)

	m, err := CreateByName("null+cipher-test")
	if err != nil {
		t.Fatalf("CreateByName: %v", err)
	}
	initSess, err := SessionInit(m, nil, true, epoch, testCfg, log)
	if err != nil {
		t.Fatalf("SessionInit: %v", err)
	}
	respSess, err := SessionInit(m, nil, false, epoch, testCfg, log)
	if err != nil {
		t.Fatalf("SessionInit: %v", err)
	}

	plaintext := bytes.Repeat([]byte{0xAA}, 32)
	out, err := m.Encrypt(initSess, plaintext, log)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, _, err := m.Decrypt(respSess, out.Bytes(), epoch, log)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got % x", got)
	}
	if countingSink.count != 2 {
		t.Fatalf("expected exactly one warning per session init (2 sessions), got %d", countingSink.count)
	}
}

type countSink struct{ count int }

func (c *countSink) Printf(format string, v ...any) { c.count++ }
