// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import "testing"

func TestPageTableClaimAndRelease(t *testing.T) {
	var pt pageTable
	target := &Target{}

	if owner := pt.owner(5); owner != nil {
		t.Fatalf("owner(5) before claim = %v, want nil", owner)
	}
	if prev := pt.claim(5, target); prev != nil {
		t.Errorf("claim(5, target) returned prev = %v, want nil", prev)
	}
	if !pt.isGPU(5) {
		t.Error("isGPU(5) = false after claim, want true")
	}
	if pt.owner(5) != target {
		t.Errorf("owner(5) = %v, want %v", pt.owner(5), target)
	}

	pt.release(5)
	if pt.isGPU(5) {
		t.Error("isGPU(5) = true after release, want false")
	}
	if pt.owner(5) != nil {
		t.Error("owner(5) after release should be nil")
	}
}

func TestPageTableClaimReturnsPreviousOwner(t *testing.T) {
	var pt pageTable
	a := &Target{}
	b := &Target{}

	pt.claim(3, a)
	prev := pt.claim(3, b)
	if prev != a {
		t.Errorf("claim returned prev = %v, want %v", prev, a)
	}
	if pt.owner(3) != b {
		t.Errorf("owner(3) = %v, want %v", pt.owner(3), b)
	}
}
