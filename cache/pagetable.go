// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import "github.com/gviegas/gscache/gmem"

// PageState names which side of the CPU/GPU split currently owns a given
// guest page's data.
type PageState int

const (
	// PageCPU means guest memory holds the authoritative content; any
	// GPU-side copy (a Source's uploaded blocks) may be stale and must
	// be refreshed before use.
	PageCPU PageState = iota

	// PageGPU means a Target currently owns this page's content on the
	// GPU and guest memory may be stale. InvalidateLocalMem returns the
	// page to PageCPU without copying the GPU content back.
	PageGPU
)

// pageInfo is one entry of the page table (spec §4.1's PageInfo/m_pages):
// the ownership state of a guest page, and, when GPU-owned, the Target
// that owns it.
type pageInfo struct {
	state PageState
	owner *Target
}

// pageTable is the fixed-size array of per-page ownership records
// indexed directly by page number, the Go analogue of the original's
// std::array<PageInfo, MAX_PAGES> m_pages.
type pageTable [gmem.MaxPages]pageInfo

// claim records that target now owns page p, transitioning it to
// PageGPU. The previous owner, if any, is returned so the caller can
// decide whether it needs to shrink or be destroyed.
func (pt *pageTable) claim(p uint32, target *Target) *Target {
	prev := pt[p].owner
	pt[p] = pageInfo{state: PageGPU, owner: target}
	return prev
}

// release returns page p to CPU ownership.
func (pt *pageTable) release(p uint32) {
	pt[p] = pageInfo{state: PageCPU}
}

// releaseOwnedBy returns every page owned by target to CPU ownership;
// called when target is destroyed or evicted.
func (pt *pageTable) releaseOwnedBy(target *Target) {
	for p, set := range target.pagesAsBit.All() {
		if set && pt[p].owner == target {
			pt[p] = pageInfo{state: PageCPU}
		}
	}
}

// owner returns the Target that owns page p, or nil if it is CPU-owned.
func (pt *pageTable) owner(p uint32) *Target {
	if pt[p].state == PageGPU {
		return pt[p].owner
	}
	return nil
}

// isGPU reports whether page p is currently GPU-owned.
func (pt *pageTable) isGPU(p uint32) bool { return pt[p].state == PageGPU }
