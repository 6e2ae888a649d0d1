package buffer

import "testing"

func TestAllocWindow(t *testing.T) {
	b := Alloc(4, 3, 2)
	if b.HeadSpace() != 3 || b.TailSpace() != 2 || b.Len() != 4 {
		t.Fatalf("unexpected dims: head=%d tail=%d len=%d", b.HeadSpace(), b.TailSpace(), b.Len())
	}
}

func TestPullPushHeadRoundTrip(t *testing.T) {
	b := Alloc(4, 3, 2)
	b.PullHead(3)
	if b.HeadSpace() != 0 || b.Len() != 7 {
		t.Fatalf("pull_head: head=%d len=%d", b.HeadSpace(), b.Len())
	}
	b.PushHead(3)
	if b.HeadSpace() != 3 || b.Len() != 4 {
		t.Fatalf("push_head: head=%d len=%d", b.HeadSpace(), b.Len())
	}
}

func TestPullHeadUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on pull_head underflow")
		}
	}()
	b := Alloc(4, 2, 0)
	b.PullHead(3)
}

func TestPushHeadOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on push_head overflow")
		}
	}()
	b := Alloc(4, 0, 0)
	b.PushHead(5)
}

func TestGrowTrimTail(t *testing.T) {
	b := Alloc(4, 0, 4)
	b.GrowTail(4)
	if b.Len() != 8 || b.TailSpace() != 0 {
		t.Fatalf("grow_tail: len=%d tail=%d", b.Len(), b.TailSpace())
	}
	b.TrimTail(4)
	if b.Len() != 4 || b.TailSpace() != 4 {
		t.Fatalf("trim_tail: len=%d tail=%d", b.Len(), b.TailSpace())
	}
}

func TestGrowTailOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on grow_tail overflow")
		}
	}()
	b := Alloc(4, 0, 2)
	b.GrowTail(3)
}

func TestSetLenZeroesWindow(t *testing.T) {
	b := Alloc(4, 0, 0)
	b.SetLen(0)
	if b.Len() != 0 {
		t.Fatalf("expected len=0, got %d", b.Len())
	}
}

// invariantsHold checks the universal buffer invariant: the window never
// escapes the allocation.
func invariantsHold(t *testing.T, b *Buffer) {
	t.Helper()
	if b.data < 0 {
		t.Fatalf("data precedes base: %d", b.data)
	}
	if b.data+b.len > len(b.base) {
		t.Fatalf("window escapes allocation: data=%d len=%d base=%d", b.data, b.len, len(b.base))
	}
}

func TestInvariantSequence(t *testing.T) {
	b := Alloc(8, 8, 8)
	invariantsHold(t, b)
	b.PullHead(4)
	invariantsHold(t, b)
	b.PushHead(2)
	invariantsHold(t, b)
	b.GrowTail(3)
	invariantsHold(t, b)
	b.TrimTail(5)
	invariantsHold(t, b)
}
