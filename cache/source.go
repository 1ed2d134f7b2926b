// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/internal/bitvec"
)

// dirtyPage names one guest page of a Source that still needs its
// backing texture refreshed, along with the local rect (in the Source's
// own coordinate space) that page covers.
type dirtyPage struct {
	page uint32
	rect gmem.Rect
}

// Source is a GPU texture sampled from guest memory by a draw call. It
// tracks, at block granularity, which parts of its footprint are already
// uploaded (valid) and which guest pages have been written since (the
// dirty list), so that LookupSource only ever re-uploads what changed.
type Source struct {
	surface

	off *gmem.Offset

	// valid has one bit per block in the source's footprint; a set bit
	// means that block's pixel data is current in texture.
	valid bitvec.V[uint32]

	// pagesAsBit is the page-granularity footprint, reused by SourceMap
	// as the reverse-index key set.
	pagesAsBit bitvec.V[uint32]

	dirty []dirtyPage

	// repeating reports whether this source samples with wrap/repeat
	// addressing; it changes how a single invalidated page propagates
	// to the valid bitmap (spec §4.1's page-to-tile aliasing).
	repeating bool

	// palette is non-nil for paletted formats once a Palette has been
	// attached (see TextureCache.AttachPaletteToSource).
	palette *Palette

	blockCount int
}

func newSource(tex0 gmem.TEX0, texa gmem.TEXA, sf surface, off *gmem.Offset, pages []uint32) *Source {
	fi := gmem.FormatOf(tex0.PSM)
	blocksPerPage := fi.PageSize.Width / fi.BlockSize.Width * (fi.PageSize.Height / fi.BlockSize.Height)
	s := &Source{
		surface:    sf,
		off:        off,
		repeating:  tex0.Repeating,
		blockCount: len(pages) * blocksPerPage,
	}
	s.valid.Grow((s.blockCount + 31) / 32)
	s.pagesAsBit = off.GetPagesAsBits(tex0)
	return s
}

// IsComplete reports whether every block of the source's footprint is
// already uploaded, i.e. nothing in Flush would need to read guest
// memory.
func (s *Source) IsComplete() bool { return s.valid.Rem() == 0 }

// Palette returns the palette currently attached to this source, or nil.
func (s *Source) Palette() *Palette { return s.palette }

// PagesAsBits returns the page-granularity footprint of this source.
func (s *Source) PagesAsBits() *bitvec.V[uint32] { return &s.pagesAsBit }

// setValidBlock marks a single block index as uploaded.
func (s *Source) setValidBlock(b int) {
	if b >= 0 && b < s.blockCount {
		s.valid.Set(b)
	}
}

// blockIndex maps a raw guest block address to this source's local
// valid-bitmap index, or -1 if it does not fall within the footprint
// this source was built for.
func (s *Source) blockIndex(block uint32) int {
	base := s.off.Block(0, 0)
	idx := int(block) - int(base)
	if idx < 0 || idx >= s.blockCount {
		return -1
	}
	return idx
}

// setDirtyPage records that page (already known to intersect this
// source's footprint) was written in guest memory, clearing the valid
// bits it covers. rect is the page's extent in the source's local pixel
// coordinates. tiles, if non-nil, additionally clears every bit that
// aliases page under this source's repeat addressing (spec §4.1); when
// nil, only page's own blocks are cleared — a documented simplification
// of the original's full page-to-tile map for repeating sources.
func (s *Source) setDirtyPage(page uint32, rect gmem.Rect, tiles []gmem.PageTile) {
	for _, d := range s.dirty {
		if d.page == page {
			return
		}
	}
	s.dirty = append(s.dirty, dirtyPage{page: page, rect: rect})

	bs := s.off.BlockSize()
	for y := rect.Y0; y < rect.Y1; y += bs.Height {
		for x := rect.X0; x < rect.X1; x += bs.Width {
			if i := s.blockIndex(s.off.Block(x, y)); i >= 0 {
				s.valid.Unset(i)
			}
		}
	}
	if s.repeating {
		for _, t := range tiles {
			for b := 0; b < 32; b++ {
				if t.Mask&(1<<b) != 0 {
					s.valid.Unset(t.Word*32 + b)
				}
			}
		}
	}
}

// markPageValid sets every block bit falling in page's rect as uploaded,
// used after a GPU-to-GPU copy (Phase A) makes CPU re-upload unnecessary
// for that page.
func (s *Source) markPageValid(rect gmem.Rect) {
	bs := s.off.BlockSize()
	for y := rect.Y0; y < rect.Y1; y += bs.Height {
		for x := rect.X0; x < rect.X1; x += bs.Width {
			s.setValidBlock(s.blockIndex(s.off.Block(x, y)))
		}
	}
}

// pageValid reports whether every block falling in rect is already
// marked uploaded, i.e. this page needs no CPU re-upload.
func (s *Source) pageValid(rect gmem.Rect) bool {
	bs := s.off.BlockSize()
	for y := rect.Y0; y < rect.Y1; y += bs.Height {
		for x := rect.X0; x < rect.X1; x += bs.Width {
			i := s.blockIndex(s.off.Block(x, y))
			if i < 0 || !s.valid.IsSet(i) {
				return false
			}
		}
	}
	return true
}

// clearDirty drops page from the dirty list, if present, once it has
// been refreshed.
func (s *Source) clearDirty(page uint32) {
	for i, d := range s.dirty {
		if d.page == page {
			s.dirty = append(s.dirty[:i], s.dirty[i+1:]...)
			return
		}
	}
}
