// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"testing"

	"github.com/gviegas/gscache/gmem"
)

func newTestSurface() (surface, *fakeMemory) {
	tex := &fakeTexture{scaleX: 1, scaleY: 1}
	return newSurface(gmem.TEX0{TBW: 8, PSM: gmem.PSMCT32}, gmem.TEXA{}, tex), &fakeMemory{}
}

func TestWriteCoalescesAdjacentRects(t *testing.T) {
	s, mem := newTestSurface()
	s.writeRect(gmem.Rect{0, 0, 8, 8}, mem)
	s.writeRect(gmem.Rect{8, 0, 16, 8}, mem)

	if s.writeCount != 1 {
		t.Fatalf("writeCount = %d, want 1 after coalescing horizontally adjacent rects", s.writeCount)
	}
	want := gmem.Rect{0, 0, 16, 8}
	if s.write[0] != want {
		t.Errorf("coalesced rect = %+v, want %+v", s.write[0], want)
	}
}

func TestWriteCoalescesVerticallyAdjacentRects(t *testing.T) {
	s, mem := newTestSurface()
	s.writeRect(gmem.Rect{0, 0, 8, 8}, mem)
	s.writeRect(gmem.Rect{0, 8, 8, 16}, mem)

	if s.writeCount != 1 {
		t.Fatalf("writeCount = %d, want 1 after coalescing vertically adjacent rects", s.writeCount)
	}
	want := gmem.Rect{0, 0, 8, 16}
	if s.write[0] != want {
		t.Errorf("coalesced rect = %+v, want %+v", s.write[0], want)
	}
}

func TestWriteFlushesOnThirdDisjointRect(t *testing.T) {
	s, mem := newTestSurface()
	s.writeRect(gmem.Rect{0, 0, 8, 8}, mem)
	s.writeRect(gmem.Rect{100, 100, 108, 108}, mem)
	if s.writeCount != 2 {
		t.Fatalf("writeCount = %d, want 2 before a third rect arrives", s.writeCount)
	}
	s.writeRect(gmem.Rect{200, 200, 208, 208}, mem)
	if s.writeCount != 0 {
		t.Errorf("writeCount = %d, want 0 (queue flushed) after a third disjoint rect", s.writeCount)
	}
}

func TestWriteDoesNotCoalesceDisjointRects(t *testing.T) {
	s, mem := newTestSurface()
	s.writeRect(gmem.Rect{0, 0, 8, 8}, mem)
	s.writeRect(gmem.Rect{16, 16, 24, 24}, mem)
	if s.writeCount != 2 {
		t.Errorf("writeCount = %d, want 2 for disjoint rects", s.writeCount)
	}
}

// TestWriteOverflowUploadsInsteadOfDropping guards against the eager
// flush triggered when the 3-slot queue fills silently discarding every
// rect queued so far: all three must reach the texture instead.
func TestWriteOverflowUploadsInsteadOfDropping(t *testing.T) {
	s, mem := newTestSurface()
	s.writeRect(gmem.Rect{0, 0, 8, 8}, mem)
	s.writeRect(gmem.Rect{100, 100, 108, 108}, mem)
	s.writeRect(gmem.Rect{200, 200, 208, 208}, mem) // fills the queue, forcing an eager flush

	if s.writeCount != 0 {
		t.Fatalf("writeCount = %d, want 0 after the eager flush", s.writeCount)
	}
	if len(mem.reads) != 3 {
		t.Fatalf("ReadTexture calls = %d, want 3 (no rect dropped by the eager flush)", len(mem.reads))
	}
	tex := s.texture.(*fakeTexture)
	if len(tex.updates) != 3 {
		t.Errorf("Texture.Update calls = %d, want 3", len(tex.updates))
	}
}
