// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import "github.com/gviegas/gscache/gpu"

// Palette is a content-addressed CLUT: two Sources that happen to sample
// the same 16 or 256 RGBA entries share one Palette and therefore one
// lookup texture, no matter where in guest memory each CLUT copy lives.
// It is reference-counted by the Sources currently attached to it (see
// TextureCache.AttachPaletteToSource); paletteMap sweeps entries whose
// count has dropped to zero.
type Palette struct {
	clut    []uint32 // copied at creation; 16 or 256 entries
	texture gpu.Texture
	refs    int
}

func newPalette(clut []uint32, texture gpu.Texture) *Palette {
	cp := make([]uint32, len(clut))
	copy(cp, clut)
	return &Palette{clut: cp, texture: texture}
}

// CLUT returns the palette's own copy of the color table.
func (p *Palette) CLUT() []uint32 { return p.clut }

// Texture returns the lookup texture for this palette, or nil if it was
// created without one (needTexture == false: the Source samples its
// indices directly and the GPU does the lookup in-shader instead).
func (p *Palette) Texture() gpu.Texture { return p.texture }

func (p *Palette) addRef()     { p.refs++ }
func (p *Palette) release() int { p.refs--; return p.refs }

// paletteMap caches Palettes by CLUT content, split into a 16-entry map
// and a 256-entry map (the only two sizes a PSM can require), keyed by
// the CLUT bytes themselves: Go's built-in array equality does exactly
// the job the original's hand-rolled PaletteKeyHash/PaletteKeyEqual
// functors perform, so no custom hash is implemented here.
type paletteMap struct {
	m16  map[[16]uint32]*Palette
	m256 map[[256]uint32]*Palette
	cap  int
}

func newPaletteMap(capacity int) *paletteMap {
	return &paletteMap{
		m16:  make(map[[16]uint32]*Palette),
		m256: make(map[[256]uint32]*Palette),
		cap:  capacity,
	}
}

// lookup returns a Palette with the given content, creating one (via
// newTexture, only if needTexture) and inserting it if none exists yet.
func (pm *paletteMap) lookup(clut []uint32, needTexture bool, newTexture func() gpu.Texture) *Palette {
	switch len(clut) {
	case 16:
		var k [16]uint32
		copy(k[:], clut)
		if p, ok := pm.m16[k]; ok {
			if needTexture && p.texture == nil {
				p.texture = newTexture()
			}
			return p
		}
		var tex gpu.Texture
		if needTexture {
			tex = newTexture()
		}
		p := newPalette(clut, tex)
		pm.m16[k] = p
		pm.sweep16()
		return p
	case 256:
		var k [256]uint32
		copy(k[:], clut)
		if p, ok := pm.m256[k]; ok {
			if needTexture && p.texture == nil {
				p.texture = newTexture()
			}
			return p
		}
		var tex gpu.Texture
		if needTexture {
			tex = newTexture()
		}
		p := newPalette(clut, tex)
		pm.m256[k] = p
		pm.sweep256()
		return p
	default:
		panic(prefix + "palette size must be 16 or 256")
	}
}

// sweep16/sweep256 evict every zero-refcount entry once the map exceeds
// its capacity, mirroring the original's PaletteMap::Clear pass run
// opportunistically on insert rather than on a timer.
func (pm *paletteMap) sweep16() {
	if len(pm.m16) <= pm.cap {
		return
	}
	for k, p := range pm.m16 {
		if p.refs == 0 {
			delete(pm.m16, k)
		}
	}
}

func (pm *paletteMap) sweep256() {
	if len(pm.m256) <= pm.cap {
		return
	}
	for k, p := range pm.m256 {
		if p.refs == 0 {
			delete(pm.m256, k)
		}
	}
}

// removeAll drops every cached palette regardless of refcount, used by
// TextureCache.RemoveAll.
func (pm *paletteMap) removeAll() {
	clear(pm.m16)
	clear(pm.m256)
}
