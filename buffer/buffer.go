// Package buffer implements the headroom/tailroom packet slab used by the
// crypto pipeline: a single owned allocation with a movable data window, so
// that prepending a header or appending a MAC never triggers a reallocation.
package buffer

// Buffer is a contiguous owned allocation of length BaseLen with a logical
// window [data, data+len) lying within it. The window may be shifted toward
// either end as long as it never escapes the allocation.
type Buffer struct {
	base []byte
	data int
	len  int
}

// Alloc reserves headSpace+length+tailSpace bytes and places the window
// right after headSpace, length bytes wide.
func Alloc(length, headSpace, tailSpace int) *Buffer {
	if length < 0 || headSpace < 0 || tailSpace < 0 {
		panic("buffer: negative size")
	}
	base := make([]byte, headSpace+length+tailSpace)
	return &Buffer{base: base, data: headSpace, len: length}
}

// Wrap adopts an existing slice as the full allocation, with the window
// covering it entirely. Used when a caller already owns a right-sized slice
// (e.g. a datagram just read off the wire).
func Wrap(b []byte) *Buffer {
	return &Buffer{base: b, data: 0, len: len(b)}
}

// Bytes returns the current data window. The returned slice aliases the
// underlying allocation; callers must not retain it past the next mutating
// call on this Buffer.
func (b *Buffer) Bytes() []byte {
	return b.base[b.data : b.data+b.len]
}

// Len reports the current window length.
func (b *Buffer) Len() int {
	return b.len
}

// HeadSpace reports how many bytes precede the window inside the allocation.
func (b *Buffer) HeadSpace() int {
	return b.data
}

// TailSpace reports how many bytes follow the window inside the allocation.
func (b *Buffer) TailSpace() int {
	return len(b.base) - b.data - b.len
}

// PullHead moves the window start backward by n, growing it to expose
// previously reserved headroom for a header/prefix the caller is about to
// write. Moving past the base of the allocation is a buffer-sizing bug, not
// a runtime condition, so it aborts the process like the rest of the
// invariant violations in this package.
func (b *Buffer) PullHead(n int) {
	if n < 0 {
		panic("buffer: negative pull")
	}
	if b.data-n < 0 {
		panic("buffer: pull_head underflow (buffer sizing bug)")
	}
	b.data -= n
	b.len += n
}

// PushHead moves the window start forward by n, shrinking it from the front
// to strip a header/prefix that has already been consumed.
func (b *Buffer) PushHead(n int) {
	if n < 0 {
		panic("buffer: negative push")
	}
	if n > b.len {
		panic("buffer: push_head overflow (buffer sizing bug)")
	}
	b.data += n
	b.len -= n
}

// GrowTail extends the window into reserved tailroom, for appending a MAC
// after the ciphertext has been produced in place.
func (b *Buffer) GrowTail(n int) {
	if n < 0 {
		panic("buffer: negative grow")
	}
	if n > b.TailSpace() {
		panic("buffer: grow_tail overflow (buffer sizing bug)")
	}
	b.len += n
}

// TrimTail shrinks the window from the end by n, for stripping a MAC once it
// has been verified and is no longer part of the plaintext.
func (b *Buffer) TrimTail(n int) {
	if n < 0 {
		panic("buffer: negative trim")
	}
	if n > b.len {
		panic("buffer: trim_tail underflow (buffer sizing bug)")
	}
	b.len -= n
}

// SetLen forces the window length without moving its start, for example to
// zero it. The providers do not call it: AEAD decrypt works on a plain slice
// and reports a replay-rejected packet as an empty plaintext slice.
func (b *Buffer) SetLen(n int) {
	if n < 0 || b.data+n > len(b.base) {
		panic("buffer: set_len out of range")
	}
	b.len = n
}
