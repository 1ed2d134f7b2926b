// Copyright 2023 Gustavo C. Viegas. All rights reserported.

package gmem

// PageTile identifies one (word, mask) pair to clear in a repeating
// Source's valid bitmap when the given guest page is invalidated. It is
// the Go analogue of the original's precomputed m_p2t page-to-tile map.
type PageTile struct {
	Word int
	Mask uint32
}

// Memory is the guest-memory facade the cache reads CLUT and texel data
// through. It is an external collaborator (spec §6 "Consumed"): this
// package does not implement pixel swizzling itself, it only defines the
// contract; no implementation of Memory ships in this package.
type Memory interface {
	// CLUT returns the live color-lookup-table buffer. Implementations
	// must not reallocate the returned slice's backing array across
	// calls; callers that need a stable snapshot must copy it.
	CLUT() []uint32

	// ReadCLUT refreshes the live CLUT from guest memory for the given
	// descriptor, if t's format is paletted.
	ReadCLUT(t TEX0, a TEXA)

	// ReadTexture materializes rect (already block-aligned) of the
	// region described by off into dst, using the given row pitch in
	// bytes and alpha-expansion configuration. dst holds full RGBA
	// texels (4 bytes/pixel).
	ReadTexture(off *Offset, rect Rect, dst []byte, pitch int, a TEXA)

	// ReadTextureP is the paletted variant of ReadTexture: dst holds
	// one index byte per pixel instead of expanded RGBA.
	ReadTextureP(off *Offset, rect Rect, dst []byte, pitch int, a TEXA)

	// PageToTileMap returns, for a repeating descriptor t, one []PageTile
	// per page in t's footprint (indexed the same way GetPages/GetRect
	// are), describing which valid bits alias that page. Implementations
	// that do not special-case repeating addressing may return nil, in
	// which case the cache clears only the invalidated page's own bits.
	PageToTileMap(t TEX0) [][]PageTile
}
