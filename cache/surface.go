// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/gpu"
)

// surface is the state every Source and Target shares: the guest
// descriptor it was created from, the GPU texture backing it, and a
// small queue of pending CPU-side write rects.
//
// The write queue mirrors the original's m_write: at most three rects
// are ever queued, because writeRect flushes eagerly as soon as a third
// one is queued (see writeRect below). This lets the queue live as a fixed array
// instead of a growable slice, matching the original's
// _aligned_malloc(3 * sizeof(GSVector4i)).
type surface struct {
	tex0    gmem.TEX0
	texa    gmem.TEXA
	texture gpu.Texture

	// rect is the guest-pixel-coordinate extent this surface was built
	// to cover; it may be smaller than the full TEX0 footprint for a
	// partially-sized Source.
	rect gmem.Rect

	age int // reset to 0 by touch; nothing increments it or evicts by it

	scaleX, scaleY float32 // supersampling factor actually backing texture

	// shared reports whether texture is owned by another surface (a
	// Target lending its backing texture to a same-page Source) and
	// must not be recycled when this surface is destroyed.
	shared bool

	write      [3]gmem.Rect
	writeCount int
}

func newSurface(tex0 gmem.TEX0, texa gmem.TEXA, texture gpu.Texture) surface {
	return surface{tex0: tex0, texa: texa, texture: texture, scaleX: 1, scaleY: 1}
}

// TEX0 returns the guest descriptor this surface was created from.
func (s *surface) TEX0() gmem.TEX0 { return s.tex0 }

// Texture returns the GPU texture backing this surface.
func (s *surface) Texture() gpu.Texture { return s.texture }

// Age returns this surface's age counter. TextureCache resets it to 0 on
// every lookup that returns the surface and never increments it.
func (s *surface) Age() int { return s.age }

// Scale returns the supersampling factor backing this surface's texture.
func (s *surface) Scale() (x, y float32) { return s.scaleX, s.scaleY }

func (s *surface) setScale(x, y float32) {
	s.scaleX, s.scaleY = x, y
	s.texture.SetScale(x, y)
}

func (s *surface) touch() { s.age = 0 }

func (s *surface) destroy() {
	if !s.shared && s.texture != nil {
		s.texture = nil
	}
}

// write queues rect for upload, coalescing it with the most recently
// queued rect when they form a single larger rectangle: either the same
// row pair stacked vertically (equal X0/X1, adjacent Y), or the same
// column pair stacked horizontally (equal Y0/Y1, adjacent X). This is the
// Go equivalent of the original's GSVector4i(==).mask() adjacency test.
//
// The queue is drained through mem (see flushTo) whenever a third rect
// would need to be held, so callers never need to reason about more than
// two pending rects at a time, and no queued rect is ever lost.
func (s *surface) writeRect(r gmem.Rect, mem gmem.Memory) {
	if s.writeCount > 0 {
		last := &s.write[s.writeCount-1]
		if coalesce(*last, r, last) {
			return
		}
	}
	if s.writeCount == len(s.write) {
		s.flushTo(mem)
	}
	s.write[s.writeCount] = r
	s.writeCount++
	if s.writeCount > 2 {
		s.flushTo(mem)
	}
}

// coalesce merges a and b into *out if they are adjacent and form a
// single rectangle, reporting whether it did so.
func coalesce(a, b gmem.Rect, out *gmem.Rect) bool {
	if a.Y0 == b.Y0 && a.Y1 == b.Y1 {
		if a.X1 == b.X0 {
			*out = gmem.Rect{a.X0, a.Y0, b.X1, a.Y1}
			return true
		}
		if b.X1 == a.X0 {
			*out = gmem.Rect{b.X0, a.Y0, a.X1, a.Y1}
			return true
		}
	}
	if a.X0 == b.X0 && a.X1 == b.X1 {
		if a.Y1 == b.Y0 {
			*out = gmem.Rect{a.X0, a.Y0, a.X1, b.Y1}
			return true
		}
		if b.Y1 == a.Y0 {
			*out = gmem.Rect{a.X0, b.Y0, a.X1, a.Y1}
			return true
		}
	}
	return false
}

// flushTo uploads every queued rect to the backing texture, reading
// pixel data for each from mem, and empties the queue. A nil mem drops
// the queue instead of uploading it; callers that have guest memory to
// read from must pass it so queued rects are never silently lost.
func (s *surface) flushTo(mem gmem.Memory) {
	if mem != nil {
		off := gmem.GetOffset(s.tex0.TBP0, s.tex0.TBW, s.tex0.PSM)
		fi := gmem.FormatOf(s.tex0.PSM)
		for i := 0; i < s.writeCount; i++ {
			r := s.write[i]
			pitch := r.Width() * 4
			buf := make([]byte, pitch*r.Height())
			if fi.Pal > 0 {
				pitch = r.Width()
				buf = make([]byte, pitch*r.Height())
				mem.ReadTextureP(off, r, buf, pitch, s.texa)
			} else {
				mem.ReadTexture(off, r, buf, pitch, s.texa)
			}
			s.texture.Update(r, buf, pitch, 0)
		}
	}
	s.writeCount = 0
}
