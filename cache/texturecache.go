// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package cache implements a GPU-side texture cache: it keeps GPU-
// resident pixel data (Sources sampled by draws, Targets rendered into,
// Palettes shared by content) coherent with a guest program's flat,
// page-addressed video memory, re-uploading or copying only what guest
// writes have actually touched.
package cache

import (
	"errors"

	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/gpu"
)

const prefix = "cache: "

// TextureCache is the orchestrator: it owns every live Source and
// Target, the page ownership table deciding which side (CPU or GPU) is
// authoritative for a given guest page, and the content-addressed
// palette cache.
//
// A TextureCache is driven from a single thread, exactly like the
// original being driven from one render thread: it is not safe for
// concurrent use from multiple goroutines, and it does not attempt to
// enforce that with a mutex (doing so would imply the type expects
// contention it is not designed to handle).
type TextureCache struct {
	r   Renderer
	cfg Config

	sources  sourceMap
	targets  [2][]*Target // indexed by SurfaceType
	pages    pageTable
	palettes *paletteMap

	// temp is a scratch slice allocated by New with capacity
	// gmem.MaxPages, the counterpart of the original's m_temp buffer.
	// No method reads or writes it: Offset.GetPages returns a freshly
	// allocated slice on every call.
	temp []uint32

	rtCache *texInsideRTCache
}

// New constructs a TextureCache bound to r, configured by cfg.
func New(r Renderer, cfg Config) *TextureCache {
	return &TextureCache{
		r:        r,
		cfg:      cfg,
		palettes: newPaletteMap(cfg.paletteMapCapacity()),
		temp:     make([]uint32, 0, gmem.MaxPages),
		rtCache:  newTexInsideRTCache(8),
	}
}

// LookupSource returns a Source for tex0/texa covering at least rect,
// reusing an existing one if its footprint and descriptor already match,
// refreshing any pages that guest memory has dirtied since it was built,
// or creating a new one. The only failure mode is the device refusing to
// allocate the backing texture.
func (tc *TextureCache) LookupSource(tex0 gmem.TEX0, texa gmem.TEXA, rect gmem.Rect) (*Source, error) {
	off := gmem.GetOffset(tex0.TBP0, tex0.TBW, tex0.PSM)
	pages := off.GetPages(rect, nil)

	if s := tc.findSource(tex0, pages); s != nil {
		s.touch()
		tc.promoteAll(pages, s)
		tc.updateSource(s, pages)
		return s, nil
	}

	dev := tc.r.Device()
	fi := gmem.FormatOf(tex0.PSM)
	gfmt := gpu.PixelFmt(fi.Fmt)
	if fi.Pal > 0 {
		gfmt = tc.r.Get8bitFormat()
	}
	tex, err := dev.CreateTexture(rect.Width(), rect.Height(), gfmt)
	if err != nil {
		return nil, errors.New(prefix + "create source texture: " + err.Error())
	}

	sf := newSurface(tex0, texa, tex)
	sf.rect = rect
	s := newSource(tex0, texa, sf, off, pages)
	tc.updateSource(s, pages)
	tc.sources.add(s)
	return s, nil
}

// findSource scans the Sources registered at pages[0] (if any) for one
// whose descriptor matches tex0 exactly, spec §4.3.1's hit test.
func (tc *TextureCache) findSource(tex0 gmem.TEX0, pages []uint32) *Source {
	if len(pages) == 0 {
		return nil
	}
	for _, s := range tc.sources.sourcesAt(pages[0]) {
		if s.tex0.Equal(tex0) {
			return s
		}
	}
	return nil
}

func (tc *TextureCache) promoteAll(pages []uint32, s *Source) {
	for _, p := range pages {
		tc.sources.promote(p, s)
	}
}

// updateSource brings every page in pages current in s's texture: pages
// owned by a same-format Target are copied GPU-to-GPU (Phase A), every
// other page not already valid is queued for CPU upload (Phase B), and
// whatever is still queued at the end is flushed.
func (tc *TextureCache) updateSource(s *Source, pages []uint32) {
	mem := tc.r.Memory()
	dev := tc.r.Device()

	for _, p := range pages {
		rect := s.off.GetRect(p).Intersect(gmem.Rect{0, 0, s.rect.Width(), s.rect.Height()})
		if rect.Empty() {
			continue
		}
		if owner := tc.pages.owner(p); owner != nil && owner.tex0.PSM == s.tex0.PSM {
			// A GPU-owned page may have changed on the GPU since it was
			// last copied, with no CPU-visible write to trigger
			// InvalidateVideoMem, so it is always refreshed rather than
			// skipped even when already marked valid.
			srcRect := normalize(rect, owner.rect)
			dstRect := normalize(rect, s.rect)
			dev.StretchRect(owner.Texture(), srcRect, s.Texture(), dstRect, gpu.ShaderCopy, false)
			s.markPageValid(rect)
			s.clearDirty(p)
			continue
		}
		if s.pageValid(rect) {
			continue
		}
		// Cross-format GPU conversion is intentionally not implemented:
		// the original's equivalent path is unreachable dead code (an
		// unconditional return precedes it). Always fall through to the
		// CPU path, which is never wrong, only potentially slower.
		s.writeRect(rect, mem)
		s.markPageValid(rect)
		s.clearDirty(p)
	}
	s.flushTo(mem)
}

// normalize converts local (a rect in guest pixel coordinates relative
// to full's origin) into the [0,1] normalized texture coordinates
// StretchRect addresses both source and destination with, independent of
// either side's actual (possibly upscaled) pixel dimensions.
func normalize(local, full gmem.Rect) gpu.RectF {
	fw, fh := float32(full.Width()), float32(full.Height())
	if fw == 0 || fh == 0 {
		return gpu.RectF{}
	}
	return gpu.RectF{
		X0: float32(local.X0-full.X0) / fw,
		Y0: float32(local.Y0-full.Y0) / fh,
		X1: float32(local.X1-full.X0) / fw,
		Y1: float32(local.Y1-full.Y0) / fh,
	}
}

// LookupTarget returns the Target of the given type currently owning
// tex0's base pointer, extending it if tex0 requires a larger footprint
// than it already has, or creates a new one. Every page the returned
// Target covers is claimed for it; any other Target that owned one of
// those pages loses it from its footprint and is destroyed if it is left
// with no footprint at all.
func (tc *TextureCache) LookupTarget(tex0 gmem.TEX0, typ SurfaceType) (*Target, error) {
	rect := gmem.Rect{0, 0, tex0.Width(), tex0.Height()}
	off := gmem.GetOffset(tex0.TBP0, tex0.TBW, tex0.PSM)

	for _, t := range tc.targets[typ] {
		if t.tex0.TBP0 == tex0.TBP0 && t.tex0.TBW == tex0.TBW && t.tex0.PSM == tex0.PSM {
			t.touch()
			if old, grew := t.Extend(rect); grew {
				if err := tc.resizeTarget(t, old); err != nil {
					return nil, errors.New(prefix + "extend target texture: " + err.Error())
				}
			}
			tc.claimPages(t, rect, off)
			tc.updateTarget(t)
			return t, nil
		}
	}

	size := tc.targetSize(rect)
	dev := tc.r.Device()
	var tex gpu.Texture
	var err error
	if typ == DepthStencil {
		tex, err = dev.CreateSparseDepthStencil(size.Width, size.Height)
	} else {
		tex, err = dev.CreateSparseRenderTarget(size.Width, size.Height)
	}
	if err != nil {
		return nil, errors.New(prefix + "create target texture: " + err.Error())
	}

	sf := newSurface(tex0, gmem.TEXA{}, tex)
	sf.rect = rect
	t := newTarget(typ, tex0, gmem.TEXA{}, sf, off, rect)
	tc.applyScale(t, rect)
	tc.claimPages(t, rect, off)
	tc.targets[typ] = append(tc.targets[typ], t)

	tc.updateTarget(t)
	return t, nil
}

// resizeTarget allocates a new, larger backing texture sized for rect
// under the cache's current upscale/custom-resolution mode, GPU-copies
// old (the target's pre-extend rect) into it at the same origin, and
// recycles the previous texture — the device-owning half of
// Target.Extend, which only knows the new footprint, not how to size a
// texture for it.
func (tc *TextureCache) resizeTarget(t *Target, old gmem.Rect) error {
	dev := tc.r.Device()
	size := tc.targetSize(t.rect)
	var newTex gpu.Texture
	var err error
	if t.typ == DepthStencil {
		newTex, err = dev.CreateSparseDepthStencil(size.Width, size.Height)
	} else {
		newTex, err = dev.CreateSparseRenderTarget(size.Width, size.Height)
	}
	if err != nil {
		return err
	}
	dev.CopyRect(t.texture, newTex, old)
	if !t.shared {
		dev.Recycle(t.texture)
	}
	t.texture = newTex
	tc.applyScale(t, t.rect)
	return nil
}

// updateTarget fills every page of t's footprint not yet marked valid —
// newly added by creation or by Extend — by reading its pixel data from
// guest memory, the page-granular analogue of updateSource's Phase B
// that spec §4.3.2 requires LookupTarget to run via
// UpdateSurface(target, target.rect) before returning.
func (tc *TextureCache) updateTarget(t *Target) {
	mem := tc.r.Memory()
	fi := gmem.FormatOf(t.tex0.PSM)
	full := gmem.Rect{0, 0, t.rect.Width(), t.rect.Height()}

	for p, set := range t.pagesAsBit.All() {
		if !set || t.pageValid(uint32(p)) {
			continue
		}
		rect := t.off.GetRect(uint32(p)).Intersect(full)
		if rect.Empty() {
			t.markPageValid(uint32(p))
			continue
		}
		pitch := rect.Width() * 4
		if fi.Pal > 0 {
			pitch = rect.Width()
		}
		buf := make([]byte, pitch*rect.Height())
		if fi.Pal > 0 {
			mem.ReadTextureP(t.off, rect, buf, pitch, t.texa)
		} else {
			mem.ReadTexture(t.off, rect, buf, pitch, t.texa)
		}
		t.texture.Update(rect, buf, pitch, 0)
		t.markPageValid(uint32(p))
	}
}

func (tc *TextureCache) targetSize(rect gmem.Rect) gmem.Dim2 {
	if n := tc.r.UpscaleMultiplier(); n > 0 {
		return gmem.Dim2{Width: rect.Width() * n, Height: rect.Height() * n}
	}
	return tc.r.CustomResolution()
}

func (tc *TextureCache) applyScale(t *Target, rect gmem.Rect) {
	size := t.texture.GetSize()
	if rect.Width() == 0 || rect.Height() == 0 {
		return
	}
	t.setScale(float32(size.Width)/float32(rect.Width()), float32(size.Height)/float32(rect.Height()))
}

// claimPages transfers ownership of every page target's extended
// footprint covers to target, shrinking or destroying whichever other
// Target previously owned each page.
func (tc *TextureCache) claimPages(target *Target, rect gmem.Rect, off *gmem.Offset) {
	for _, p := range off.GetPages(rect, nil) {
		prev := tc.pages.claim(p, target)
		if prev == nil || prev == target {
			continue
		}
		prev.pagesAsBit.Unset(int(p))
		if prev.pagesAsBit.Rem() == prev.pagesAsBit.Len() {
			tc.destroyTarget(prev)
		}
	}
}

func (tc *TextureCache) destroyTarget(t *Target) {
	tc.pages.releaseOwnedBy(t)
	for typ := range tc.targets {
		list := tc.targets[typ]
		for i, x := range list {
			if x == t {
				tc.targets[typ] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	t.destroy()
}

// InvalidateVideoMem marks every Source overlapping rect as dirty for
// the pages actually touched, destroying any Source left with no valid
// data at all, and transfers ownership of those pages to fb (the Target
// now being drawn into), releasing them from whatever Target held them
// before.
func (tc *TextureCache) InvalidateVideoMem(off *gmem.Offset, rect gmem.Rect, fb *Target) {
	mem := tc.r.Memory()
	pages := off.GetPages(rect, nil)

	for _, p := range pages {
		local := off.GetRect(p)
		for _, s := range append([]*Source(nil), tc.sources.sourcesAt(p)...) {
			var tiles []gmem.PageTile
			if s.repeating {
				if m := mem.PageToTileMap(s.tex0); m != nil {
					if idx := pageIndexIn(s, p); idx >= 0 && idx < len(m) {
						tiles = m[idx]
					}
				}
			}
			if tc.cfg.DisablePartialInvalidation {
				tc.sources.removeAt(s)
				s.destroy()
				continue
			}
			s.setDirtyPage(p, local, tiles)
			if s.valid.Rem() == s.valid.Len() {
				tc.sources.removeAt(s)
				s.destroy()
			}
		}

		prev := tc.pages.owner(p)
		if prev == fb {
			continue
		}
		if prev != nil {
			prev.pagesAsBit.Unset(int(p))
			if prev.pagesAsBit.Rem() == prev.pagesAsBit.Len() {
				tc.destroyTarget(prev)
			}
		}
		if fb != nil {
			tc.pages.claim(p, fb)
		} else {
			tc.pages.release(p)
		}
	}
}

// pageIndexIn returns the position of page p within s's own GetPages
// enumeration, used to index a PageToTileMap result.
func pageIndexIn(s *Source, p uint32) int {
	i := 0
	for q, set := range s.pagesAsBit.All() {
		if !set {
			continue
		}
		if uint32(q) == p {
			return i
		}
		i++
	}
	return -1
}

// InvalidateLocalMem releases every GPU-owned page covered by rect back
// to CPU ownership. Reading GPU pixel data back into guest memory itself
// is outside this package's simplified gmem facade (spec §1): a full
// implementation would copy each page's texels out through
// gpu.Texture.Map before releasing it; this cache only performs the
// ownership-transfer half of that protocol.
func (tc *TextureCache) InvalidateLocalMem(off *gmem.Offset, rect gmem.Rect) {
	for _, p := range off.GetPages(rect, nil) {
		if owner := tc.pages.owner(p); owner != nil {
			owner.pagesAsBit.Unset(int(p))
			tc.pages.release(p)
			if owner.pagesAsBit.Rem() == owner.pagesAsBit.Len() {
				tc.destroyTarget(owner)
			}
		}
	}
}

// RemoveAll destroys every Source and Target and clears the palette
// cache, returning the TextureCache to its just-constructed state.
func (tc *TextureCache) RemoveAll() {
	for typ := range tc.targets {
		for _, t := range tc.targets[typ] {
			t.destroy()
		}
		tc.targets[typ] = nil
	}
	tc.sources.removeAll()
	tc.pages = pageTable{}
	tc.palettes.removeAll()
}

// AttachPaletteToSource attaches a Palette holding the first palSize
// entries of the renderer's live CLUT to s, creating a GPU lookup
// texture for it only if needTexture is true and one is not already
// cached for this content.
func (tc *TextureCache) AttachPaletteToSource(s *Source, palSize int, needTexture bool) {
	clut := tc.r.Memory().CLUT()
	if palSize > len(clut) {
		palSize = len(clut)
	}
	clut = clut[:palSize]

	newTex := func() gpu.Texture {
		tex, err := tc.r.Device().CreateTexture(palSize, 1, gpu.RGBA8)
		if err != nil {
			return nil
		}
		return tex
	}

	p := tc.palettes.lookup(clut, needTexture, newTex)

	if s.palette != nil && s.palette != p {
		s.palette.release()
	}
	if s.palette != p {
		p.addRef()
	}
	s.palette = p
}

// ScaleTexture applies this cache's current upscale factor to t, for
// textures created outside LookupTarget's own scaling (e.g. a one-off
// render target the embedding renderer manages itself).
func (tc *TextureCache) ScaleTexture(t gpu.Texture) {
	if n := tc.r.UpscaleMultiplier(); n > 0 {
		t.SetScale(float32(n), float32(n))
		return
	}
	size := tc.r.CustomResolution()
	cur := t.GetSize()
	if cur.Width == 0 || cur.Height == 0 {
		return
	}
	t.SetScale(float32(size.Width)/float32(cur.Width), float32(size.Height)/float32(cur.Height))
}
