// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gmem

import "testing"

func TestGetOffsetPanicsOnZeroTBW(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("GetOffset(bp, 0, psm): want panic, got none")
		}
	}()
	GetOffset(0, 0, PSMCT32)
}

func TestBlockRoundTripsThroughPage(t *testing.T) {
	// bw=10 is not a multiple of BlocksPerPageRow (8): this is exactly
	// the case that must still round-trip through stride padding.
	off := GetOffset(0, 10, PSMCT32)
	fi := FormatOf(PSMCT32)

	rect := Rect{0, 0, fi.PageSize.Width * 3, fi.PageSize.Height * 2}
	pages := off.GetPages(rect, nil)
	if len(pages) == 0 {
		t.Fatal("GetPages: got no pages for a non-empty rect")
	}
	for _, p := range pages {
		r := off.GetRect(p)
		got := off.GetPages(r, nil)
		found := false
		for _, q := range got {
			if q == p {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("GetRect(%d) -> GetPages(...) does not contain %d: %v", p, p, got)
		}
	}
}

func TestGetPagesDeduplicates(t *testing.T) {
	off := GetOffset(0, 8, PSMCT32)
	fi := FormatOf(PSMCT32)
	rect := Rect{0, 0, fi.BlockSize.Width, fi.BlockSize.Height}
	pages := off.GetPages(rect, nil)
	if len(pages) != 1 {
		t.Fatalf("GetPages: got %d pages for a single-block rect, want 1", len(pages))
	}
}

func TestGetPagesAsBitsMatchesGetPages(t *testing.T) {
	off := GetOffset(64, 16, PSMT8)
	tex := TEX0{TBP0: 64, TBW: 16, PSM: PSMT8, TW: 7, TH: 6} // 128x64
	bits := off.GetPagesAsBits(tex)
	pages := off.GetPages(Rect{0, 0, tex.Width(), tex.Height()}, nil)
	for _, p := range pages {
		if !bits.IsSet(int(p)) {
			t.Errorf("GetPagesAsBits: bit %d not set, but GetPages reported it", p)
		}
	}
}

func TestAlignOutside(t *testing.T) {
	r := Rect{3, 3, 13, 13}
	got := r.AlignOutside(Dim2{8, 8})
	want := Rect{0, 0, 16, 16}
	if got != want {
		t.Errorf("AlignOutside: got %+v, want %+v", got, want)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 20, 20}
	got := a.Intersect(b)
	want := Rect{5, 5, 10, 10}
	if got != want {
		t.Errorf("Intersect: got %+v, want %+v", got, want)
	}

	c := Rect{100, 100, 110, 110}
	got = a.Intersect(c)
	if !got.Empty() {
		t.Errorf("Intersect of disjoint rects: got %+v, want empty", got)
	}
}
