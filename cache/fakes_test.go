// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/gpu"
)

// fakeTexture is a minimal in-memory gpu.Texture: it tracks only enough
// state (size, scale, an id) for the cache's bookkeeping to be checked,
// and records every Update call instead of actually storing pixels.
type fakeTexture struct {
	id         int
	size       gpu.Dim2
	scaleX     float32
	scaleY     float32
	updates    []gmem.Rect
	mapped     gmem.Rect
	recycled   bool
}

func (t *fakeTexture) Update(r gmem.Rect, data []byte, pitch int, layer int) {
	t.updates = append(t.updates, r)
}

func (t *fakeTexture) Map(r gmem.Rect, layer int) (gpu.Map, bool) {
	t.mapped = r
	return gpu.Map{Bits: make([]byte, r.Width()*r.Height()*4), Pitch: r.Width() * 4}, true
}

func (t *fakeTexture) Unmap() {}

func (t *fakeTexture) SetScale(x, y float32) { t.scaleX, t.scaleY = x, y }
func (t *fakeTexture) GetScale() (float32, float32) { return t.scaleX, t.scaleY }
func (t *fakeTexture) GetSize() gpu.Dim2 { return t.size }
func (t *fakeTexture) GetID() int { return t.id }
func (t *fakeTexture) GetMemUsage() int { return t.size.Width * t.size.Height * 4 }

// fakeDevice creates fakeTextures and records copy/stretch calls.
type fakeDevice struct {
	nextID    int
	upscale   int
	stretches int
	copies    int
	failNext  bool
}

func (d *fakeDevice) newTexture(w, h int) *fakeTexture {
	d.nextID++
	return &fakeTexture{id: d.nextID, size: gpu.Dim2{Width: w, Height: h}, scaleX: 1, scaleY: 1}
}

func (d *fakeDevice) CreateTexture(w, h int, format gpu.PixelFmt) (gpu.Texture, error) {
	if d.failNext {
		d.failNext = false
		return nil, errTest
	}
	return d.newTexture(w, h), nil
}

func (d *fakeDevice) CreateSparseRenderTarget(w, h int) (gpu.Texture, error) {
	n := d.upscale
	if n == 0 {
		n = 1
	}
	return d.newTexture(w*n, h*n), nil
}

func (d *fakeDevice) CreateSparseDepthStencil(w, h int) (gpu.Texture, error) {
	return d.CreateSparseRenderTarget(w, h)
}

func (d *fakeDevice) Recycle(t gpu.Texture) { t.(*fakeTexture).recycled = true }

func (d *fakeDevice) CopyRect(src, dst gpu.Texture, r gmem.Rect) { d.copies++ }

func (d *fakeDevice) StretchRect(src gpu.Texture, sRect gpu.RectF, dst gpu.Texture, dRect gpu.RectF, shader gpu.Shader, linear bool) {
	d.stretches++
}

var errTest = errString("fake device: out of memory")

type errString string

func (e errString) Error() string { return string(e) }

// fakeMemory is a flat guest-memory stand-in: ReadTexture/ReadTextureP
// leave dst untouched and just record the rect they were asked for,
// enough for tests to assert that a read happened and with which rect,
// without modeling real pixel formats.
type fakeMemory struct {
	clut       []uint32
	reads      []gmem.Rect
	readsP     []gmem.Rect
	pageToTile map[int][][]gmem.PageTile
}

func (m *fakeMemory) CLUT() []uint32 { return m.clut }

func (m *fakeMemory) ReadCLUT(t gmem.TEX0, a gmem.TEXA) {}

func (m *fakeMemory) ReadTexture(off *gmem.Offset, r gmem.Rect, dst []byte, pitch int, a gmem.TEXA) {
	m.reads = append(m.reads, r)
}

func (m *fakeMemory) ReadTextureP(off *gmem.Offset, r gmem.Rect, dst []byte, pitch int, a gmem.TEXA) {
	m.readsP = append(m.readsP, r)
}

func (m *fakeMemory) PageToTileMap(t gmem.TEX0) [][]gmem.PageTile {
	if m.pageToTile == nil {
		return nil
	}
	return m.pageToTile[int(t.TBP0)]
}

// fakeRenderer bundles the fakes above into a Renderer.
type fakeRenderer struct {
	dev      *fakeDevice
	mem      *fakeMemory
	upscale  int
	display  gmem.Rect
	custom   gmem.Dim2
	fmt8bit  gpu.PixelFmt
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		dev: &fakeDevice{},
		mem: &fakeMemory{clut: make([]uint32, 256)},
	}
}

func (r *fakeRenderer) Device() gpu.Device              { return r.dev }
func (r *fakeRenderer) Memory() gmem.Memory             { return r.mem }
func (r *fakeRenderer) UpscaleMultiplier() int          { return r.upscale }
func (r *fakeRenderer) DisplayRect() gmem.Rect          { return r.display }
func (r *fakeRenderer) CustomResolution() gmem.Dim2     { return r.custom }
func (r *fakeRenderer) Get8bitFormat() gpu.PixelFmt     { return r.fmt8bit }
