// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gmem

// TEX0 is the guest descriptor identifying a rectangular region of guest
// memory: a base pointer, the buffer's width (in blocks per row), a pixel
// format and a log2 size.
type TEX0 struct {
	TBP0 uint32 // base pointer, in blocks
	TBW  uint32 // buffer width, in blocks per row
	PSM  PSM
	TW   uint32 // log2 width
	TH   uint32 // log2 height
	CBP  uint32 // CLUT base pointer, meaningful only if PSM is paletted

	// Repeating reports whether this descriptor is sampled with
	// wrap/repeat addressing. In a real guest-memory module this is
	// derived from a separate wrap-mode register; it is folded into
	// TEX0 here since this package does not model that register.
	Repeating bool
}

// Width returns 1<<TW.
func (t TEX0) Width() int { return 1 << t.TW }

// Height returns 1<<TH.
func (t TEX0) Height() int { return 1 << t.TH }

// Equal reports whether t and o identify the same guest region and format.
// CBP and Repeating are not part of surface identity (spec §4.3.1: a
// Source hit requires only TBP0/TBW/PSM/TW/TH equality).
func (t TEX0) Equal(o TEX0) bool {
	return t.TBP0 == o.TBP0 && t.TBW == o.TBW && t.PSM == o.PSM && t.TW == o.TW && t.TH == o.TH
}

// TEXA carries the alpha-expansion configuration used when converting
// 16/24-bit guest formats into full RGBA.
type TEXA struct {
	TA0, TA1 byte // alpha values substituted for formats lacking an alpha channel
	AEM      bool // alpha expansion mode: treat black (0,0,0) as transparent
}

// Rect is an axis-aligned rectangle in guest pixel coordinates, [X0,X1)x[Y0,Y1).
type Rect struct{ X0, Y0, X1, Y1 int }

// Width returns the rect's width.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns the rect's height.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Intersect returns the intersection of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X0, o.X0), max(r.Y0, o.Y0)
	x1, y1 := min(r.X1, o.X1), min(r.Y1, o.Y1)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{x0, y0, x1, y1}
}

// Eq reports whether r and o describe the same rectangle.
func (r Rect) Eq(o Rect) bool { return r == o }

// AlignOutside returns r expanded outward so that each edge lands on a
// multiple of the given block size.
func (r Rect) AlignOutside(bs Dim2) Rect {
	return Rect{
		X0: floorTo(r.X0, bs.Width),
		Y0: floorTo(r.Y0, bs.Height),
		X1: ceilTo(r.X1, bs.Width),
		Y1: ceilTo(r.Y1, bs.Height),
	}
}

func floorTo(x, n int) int { return (x / n) * n }
func ceilTo(x, n int) int  { return ((x + n - 1) / n) * n }
