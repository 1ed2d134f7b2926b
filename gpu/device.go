// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package gpu defines the narrow GPU-texture vocabulary a
// cache.TextureCache needs from a graphics device: creating render
// targets and plain textures, copying or stretch-blitting between them,
// and recycling them back to the device. It deliberately omits render
// passes, pipelines, descriptor heaps and command recording — a texture
// cache never draws, it only shuffles pixels between surfaces.
package gpu

import "github.com/gviegas/gscache/gmem"

const prefix = "gpu: "

// PixelFmt names a GPU-side texture pixel format.
//
// RGBA8 and R8 intentionally occupy iota values 0 and 1: gmem.FormatInfo.Fmt
// encodes the same two tags as plain ints so a PSM's guest format maps
// straight onto a PixelFmt without gmem importing this package.
type PixelFmt int

const (
	RGBA8 PixelFmt = iota
	R8
	RGBA16F
	RGBA32F
	D32FS8
)

// Shader selects the conversion (if any) StretchRect applies while
// copying from a source texture's format to the destination's.
type Shader int

const (
	// ShaderCopy performs no conversion; src and dst must share format.
	ShaderCopy Shader = iota
	// ShaderConvertDepth reinterprets color data as depth or vice versa.
	ShaderConvertDepth
)

// Dim2 is a 2D integer extent, in pixels.
type Dim2 struct{ Width, Height int }

// RectF is an axis-aligned rectangle in normalized ([0,1]) texture
// coordinates, used by StretchRect to address both source and
// destination independent of their pixel dimensions.
type RectF struct{ X0, Y0, X1, Y1 float32 }

// Map describes a mapped region of a Texture's backing memory, returned
// by Texture.Map for CPU-side upload.
type Map struct {
	Bits  []byte
	Pitch int // bytes per row
}

// Texture is a GPU-resident 2D image, optionally supersampled relative
// to its logical (guest) size. Layer selects a mip/array slice for
// textures with more than one; cache.TextureCache only ever addresses
// layer 0.
type Texture interface {
	// Update uploads data (pitch bytes per row) into rect of layer.
	Update(r gmem.Rect, data []byte, pitch int, layer int)

	// Map returns a CPU-visible view of rect in layer for writing,
	// uploading the contents back to the GPU resource on Unmap.
	Map(r gmem.Rect, layer int) (Map, bool)

	// Unmap flushes a previous Map's writes.
	Unmap()

	// SetScale records the supersampling scale this texture was created
	// at, relative to its logical guest size.
	SetScale(x, y float32)

	// GetScale returns the scale last set by SetScale, or 1,1.
	GetScale() (x, y float32)

	// GetSize returns the texture's actual (possibly upscaled) extent.
	GetSize() Dim2

	// GetID returns an opaque, device-assigned identifier stable for
	// the texture's lifetime; used only for cache bookkeeping/logging.
	GetID() int

	// GetMemUsage returns an estimate of GPU memory used, in bytes.
	GetMemUsage() int
}

// Device is the graphics device abstraction the cache is built against.
// A real implementation is an external collaborator (spec §1); this
// package defines only the contract.
type Device interface {
	// CreateTexture allocates a plain sampled texture of the given
	// logical size and format, with no render-target or depth-stencil
	// usage and no upscaling.
	CreateTexture(w, h int, format PixelFmt) (Texture, error)

	// CreateSparseRenderTarget allocates a color render target of w×h
	// pixels. cache.TextureCache passes a size that already includes its
	// upscale multiplier or custom resolution.
	CreateSparseRenderTarget(w, h int) (Texture, error)

	// CreateSparseDepthStencil allocates a depth/stencil render target,
	// analogous to CreateSparseRenderTarget.
	CreateSparseDepthStencil(w, h int) (Texture, error)

	// Recycle releases t back to the device. t must not be used after
	// Recycle returns.
	Recycle(t Texture)

	// CopyRect copies pixels, format and dimensions matching exactly, at
	// unit scale from src to dst, both addressed by the same rect.
	CopyRect(src, dst Texture, r gmem.Rect)

	// StretchRect copies and resamples pixels from src to dst, applying
	// shader if the formats require conversion. sRect/dRect are
	// normalized ([0,1]) texture coordinates; linear selects the
	// sampling filter.
	StretchRect(src Texture, sRect RectF, dst Texture, dRect RectF, shader Shader, linear bool)
}
