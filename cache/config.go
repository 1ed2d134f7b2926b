// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

// Config collects the user-hack and preload toggles the original exposes
// as a flat list of independent booleans/ints (spec §6). There is no file
// or environment parsing here: the embedding application owns that and
// passes the resolved values straight into New.
type Config struct {
	// HalfPixelOffset is stored but not read by TextureCache: the
	// StretchRect rects it issues are never offset by half a texel.
	HalfPixelOffset bool

	// PreloadFrameData is reserved for the original's frame-buffer-
	// specific preload hack (eagerly refreshing the live display
	// target ahead of a scanout, rather than only newly-dirtied pages).
	// LookupTarget already fills every dirty page of every Target
	// unconditionally (spec §4.3.2), so there is no consumer for this
	// flag until isFrame scheduling is wired up; kept so Config's shape
	// still matches the original's flat option list.
	PreloadFrameData bool

	// DisablePartialInvalidation forces InvalidateVideoMem to destroy
	// any Source overlapping the invalidated pages outright, instead of
	// the default finer-grained per-page dirtying.
	DisablePartialInvalidation bool

	// PreferGPUUpload is stored but not read by TextureCache: whatever
	// its value, a page owned by a same-format Target is always copied
	// GPU-to-GPU with StretchRect (Phase A), and every other page not
	// yet valid goes through the CPU upload path (Phase B).
	PreferGPUUpload bool

	// PaletteMapCapacity bounds each of PaletteMap's two maps (16-entry
	// and 256-entry CLUTs). Zero selects a built-in default.
	PaletteMapCapacity int
}

func (c Config) paletteMapCapacity() int {
	if c.PaletteMapCapacity > 0 {
		return c.PaletteMapCapacity
	}
	return 65
}
