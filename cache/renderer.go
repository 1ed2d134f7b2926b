// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import (
	"github.com/gviegas/gscache/gmem"
	"github.com/gviegas/gscache/gpu"
)

// Renderer bundles the collaborators TextureCache needs from the
// embedding application: a GPU device, the guest-memory facade, and the
// handful of renderer-state queries the original reads off its
// GSRenderer* (upscale factor, display rect, the format chosen for
// 8-bit-indexed textures that are kept paletted on the GPU).
//
// A TextureCache holds exactly one Renderer, passed once to New — unlike
// the teacher's engine/internal/ctxt package-level singleton, this is
// plain constructor injection, closer to the original's
// GSTextureCache(GSRenderer* r) and better suited to a library with no
// implicit process-wide GPU context.
type Renderer interface {
	// Device returns the GPU device textures are created on.
	Device() gpu.Device

	// Memory returns the guest-memory facade CLUTs and texel data are
	// read from.
	Memory() gmem.Memory

	// UpscaleMultiplier returns the integer supersampling factor applied
	// to render targets, or 0 if CustomResolution should be used instead.
	UpscaleMultiplier() int

	// DisplayRect returns the guest rect currently being displayed.
	// TextureCache does not call it.
	DisplayRect() gmem.Rect

	// CustomResolution returns the fixed render-target resolution to use
	// when UpscaleMultiplier reports 0.
	CustomResolution() gmem.Dim2

	// Get8bitFormat returns the GPU pixel format used for Sources of
	// paletted formats (PSMT8/PSMT4), which hold raw palette indices
	// rather than expanded RGBA.
	Get8bitFormat() gpu.PixelFmt
}
