// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/internal/bitvec"
)

// SurfaceType distinguishes the two kinds of render target a guest draw
// call addresses: the color buffer and the depth/stencil buffer. A
// Target of one type never satisfies a lookup for the other, even if
// their TEX0 addresses happen to collide.
type SurfaceType int

const (
	RenderTarget SurfaceType = iota
	DepthStencil
)

// Target is a GPU render target (color or depth/stencil) addressed by
// guest base pointer. Unlike a Source it tracks dirtiness at page, not
// block, granularity: the whole surface is always GPU-resident, but a
// page freshly added to the footprint by Extend starts out dirty just
// like a brand-new Target's full footprint does, until TextureCache
// fills it from guest memory. Extend only ever grows the footprint;
// TextureCache removes a page from it when another Target claims that
// page or the page is returned to the CPU, and destroys the Target once
// no page is left.
type Target struct {
	surface

	typ SurfaceType
	off *gmem.Offset

	// endBlock is the highest block address this target's page
	// footprint reaches (the last block of its highest page). Nothing in
	// this package reads it; Overlaps tests against rect instead.
	endBlock uint32

	pagesAsBit bitvec.V[uint32]

	// pagesValid has one bit per page in pagesAsBit; a set bit means
	// that page's texture content is current. Extend leaves the bits of
	// pages retained from the old footprint untouched and only ever
	// adds pages whose bit starts unset, so growing the footprint never
	// loses a page's already-valid state.
	pagesValid bitvec.V[uint32]

	// isFrame marks a Target currently scanned out to the display. No
	// code in this package sets it, and LookupTarget and
	// InvalidateVideoMem do not consult it.
	isFrame bool

	// used records whether this target has been drawn to or sampled
	// from since creation. No code in this package sets or reads it.
	used bool
}

func newTarget(typ SurfaceType, tex0 gmem.TEX0, texa gmem.TEXA, sf surface, off *gmem.Offset, rect gmem.Rect) *Target {
	t := &Target{surface: sf, typ: typ, off: off}
	t.rect = rect
	t.growFootprint(rect)
	return t
}

// Type returns whether this is a color or depth/stencil target.
func (t *Target) Type() SurfaceType { return t.typ }

// IsFrame reports whether this target is the current display buffer.
func (t *Target) IsFrame() bool { return t.isFrame }

// PagesAsBits returns the page-granularity footprint of this target.
func (t *Target) PagesAsBits() *bitvec.V[uint32] { return &t.pagesAsBit }

func (t *Target) growFootprint(rect gmem.Rect) {
	pages := t.off.GetPages(rect, nil)
	if t.pagesAsBit.Len() == 0 {
		t.pagesAsBit.Grow(gmem.MaxPages / 32)
		t.pagesValid.Grow(gmem.MaxPages / 32)
	}
	for _, p := range pages {
		t.pagesAsBit.Set(int(p))
		if last := p*gmem.BlocksPerPage + gmem.BlocksPerPage - 1; last > t.endBlock {
			t.endBlock = last
		}
	}
}

// pageValid reports whether page p's texture content is current.
func (t *Target) pageValid(p uint32) bool { return t.pagesValid.IsSet(int(p)) }

// markPageValid records that page p has been refreshed from guest
// memory (or GPU-copied in by Extend's resize, for pages retained from
// the old footprint, whose bit is simply never cleared).
func (t *Target) markPageValid(p uint32) { t.pagesValid.Set(int(p)) }

// Extend grows this target's recorded footprint to additionally cover
// rect (in the target's own guest pixel coordinates), for example when a
// draw call's scissor reaches beyond the area the target was first
// created for. It only updates the footprint and dirty-page bookkeeping;
// pages retained from the old footprint keep their valid bit untouched,
// newly added pages start unset (dirty). It reports the pre-extend rect
// and whether growth actually happened, so the caller — which alone
// knows how to size a new backing texture for the current upscale/
// custom-resolution mode — can resize and GPU-copy the old content in
// at that original rect. It is a no-op if rect is already fully
// contained.
func (t *Target) Extend(rect gmem.Rect) (old gmem.Rect, grew bool) {
	old = t.rect
	grown := gmem.Rect{
		X0: min(old.X0, rect.X0),
		Y0: min(old.Y0, rect.Y0),
		X1: max(old.X1, rect.X1),
		Y1: max(old.Y1, rect.Y1),
	}
	if grown == old {
		return old, false
	}
	t.rect = grown
	t.growFootprint(grown)
	return old, true
}

// Overlaps reports whether rect (in guest pixel coordinates) intersects
// this target's current footprint.
func (t *Target) Overlaps(rect gmem.Rect) bool {
	return !t.rect.Intersect(rect).Empty()
}
