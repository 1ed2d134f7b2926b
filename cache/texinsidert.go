// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import lru "github.com/hashicorp/golang-lru/v2"

// texInsideRTKey identifies a sampled texture's address for the purpose
// of the "texture inside render target" cache below.
type texInsideRTKey struct {
	psm    int
	bp, bw uint32
}

// texInsideRTEntry records that a texture read at a given key was found
// to alias a live render target (targetBP, endBlock), at the given block
// offset from the target's base. It is the Go analogue of the
// original's TexInsideRtCacheEntry.
type texInsideRTEntry struct {
	targetBP uint32
	endBlock uint32
	offset   uint32
}

// texInsideRTCache is a small bounded LRU of texInsideRTEntry values,
// backed by hashicorp/golang-lru (the same dependency family the example
// pack's noisetorch repo carries) rather than a hand-rolled move-to-
// front slice.
//
// spec §9 reserves this as an optimization for the case where a sampled
// texture's block range falls entirely inside a live render target's
// range at some constant offset, letting a lookup skip straight to a
// sub-rect copy instead of rescanning page ownership.
//
// It is implemented and tested here but not called from
// TextureCache.LookupSource: there is no consumer wired up for it yet,
// matching spec's "implementation may omit until a consumer appears" —
// the type stays available so a future caller doesn't need to reinvent
// it, without us building out the unreachable cross-format conversion
// path that would otherwise be its only user.
type texInsideRTCache struct {
	c *lru.Cache[texInsideRTKey, texInsideRTEntry]
}

func newTexInsideRTCache(capacity int) *texInsideRTCache {
	if capacity <= 0 {
		capacity = 8
	}
	c, err := lru.New[texInsideRTKey, texInsideRTEntry](capacity)
	if err != nil {
		// Only returned for a non-positive size, which capacity above
		// already rules out.
		panic(prefix + "texInsideRTCache: " + err.Error())
	}
	return &texInsideRTCache{c: c}
}

// Lookup returns the cached entry for (psm, bp, bw), if any.
func (c *texInsideRTCache) Lookup(psm int, bp, bw uint32) (texInsideRTEntry, bool) {
	return c.c.Get(texInsideRTKey{psm: psm, bp: bp, bw: bw})
}

// Insert records e under (psm, bp, bw), evicting the least recently used
// entry if the cache is at capacity.
func (c *texInsideRTCache) Insert(psm int, bp, bw uint32, e texInsideRTEntry) {
	c.c.Add(texInsideRTKey{psm: psm, bp: bp, bw: bw}, e)
}
