// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gmem

import "github.com/gviegas/gscache/internal/bitvec"

// Offset deterministically enumerates the pages and blocks that a
// (TBP0, TBW, PSM) triple covers. It is the Go analogue of spec §6's
// GSOffset: GetPages, GetRect, GetPagesAsBits, and the block row/col
// tables used by the cache's block-granular upload path.
//
// Block numbering is row-major within the buffer (see package doc):
// block(x, y) = TBP0 + (y/bs.Height)*TBW + (x/bs.Width). This is not a
// faithful reproduction of hardware tile swizzling; only the addressing
// needs to be consistent from one call to the next.
type Offset struct {
	bp     uint32
	bw     uint32 // as given by the caller, for reporting only
	stride uint32 // bw rounded up to a multiple of BlocksPerPageRow
	psm    PSM
	bs     Dim2
	pgs    Dim2
}

// GetOffset builds an Offset for the given guest descriptor components.
// bw must be at least 1.
func GetOffset(bp, bw uint32, psm PSM) *Offset {
	if bw < 1 {
		panic(prefix + "non-positive TBW")
	}
	fi := FormatOf(psm)
	stride := uint32(blocksPerRow(bw)) * BlocksPerPageRow
	return &Offset{bp: bp, bw: bw, stride: stride, psm: psm, bs: fi.BlockSize, pgs: fi.PageSize}
}

// Block returns the raw (unwrapped) block address of the pixel at (x, y).
// The result may be greater than or equal to MaxBlocks; callers decide
// whether to wrap it (spec §4.3.5's wrap_gs_mem) or discard it.
//
// The row stride used here is bw rounded up to a whole number of pages
// per row, so that block addresses and GetRect's page grid stay mutually
// consistent regardless of how bw divides BlocksPerPageRow.
func (o *Offset) Block(x, y int) uint32 {
	row := uint32(y / o.bs.Height)
	col := uint32(x / o.bs.Width)
	return o.bp + row*o.stride + col
}

// BlockSize returns the block geometry, in pixels, of this Offset's PSM.
func (o *Offset) BlockSize() Dim2 { return o.bs }

// PageSize returns the page geometry, in pixels, of this Offset's PSM.
func (o *Offset) PageSize() Dim2 { return o.pgs }

// page returns the (wrapped) page number containing block address addr.
func page(addr uint32) uint32 { return (addr % MaxBlocks) / BlocksPerPage }

// GetPages enumerates, in ascending order, the distinct (wrapped) pages
// that rect covers. If clip is non-nil, it is set to rect block-aligned
// outward (the "Hint of the surface area" rect the original computes
// alongside the page list).
func (o *Offset) GetPages(rect Rect, clip *Rect) []uint32 {
	r := rect.AlignOutside(o.bs)
	if clip != nil {
		*clip = r
	}
	var seen bitvec.V[uint32]
	seen.Grow(MaxPages / 32)
	var pages []uint32
	for y := r.Y0; y < r.Y1; y += o.bs.Height {
		for x := r.X0; x < r.X1; x += o.bs.Width {
			p := page(o.Block(x, y))
			if !seen.IsSet(int(p)) {
				seen.Set(int(p))
				pages = append(pages, p)
			}
		}
	}
	return pages
}

// GetPagesAsBits returns the page footprint of t (relative to this
// Offset's bp/bw/psm) as a bit vector indexed by page number.
func (o *Offset) GetPagesAsBits(t TEX0) bitvec.V[uint32] {
	var v bitvec.V[uint32]
	v.Grow(MaxPages / 32)
	r := Rect{0, 0, t.Width(), t.Height()}
	for _, p := range o.GetPages(r, nil) {
		v.Set(int(p))
	}
	return v
}

// GetRect returns the rectangle, in this Offset's local pixel coordinates
// (i.e. relative to bp==0), covered by page p. Pages are laid out in a
// row-major grid of page-sized cells, BlocksPerPageRow/BlocksPerPageCol
// blocks forming each page as documented on the package.
func (o *Offset) GetRect(p uint32) Rect {
	idx := int(p) - int(o.bp/BlocksPerPage)
	if idx < 0 {
		idx += MaxPages
	}
	pagesPerRow := int(o.stride / BlocksPerPageRow)
	if pagesPerRow < 1 {
		pagesPerRow = 1
	}
	row := idx / pagesPerRow
	col := idx % pagesPerRow
	x0 := col * o.pgs.Width
	y0 := row * o.pgs.Height
	return Rect{x0, y0, x0 + o.pgs.Width, y0 + o.pgs.Height}
}

// blocksPerRow returns the number of pages needed to span one row of the
// buffer, given its width in blocks (the width rounded up to whole pages).
func blocksPerRow(bw uint32) int {
	return int((bw + BlocksPerPageRow - 1) / BlocksPerPageRow)
}
