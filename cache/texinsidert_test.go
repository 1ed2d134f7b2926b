// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import "testing"

func TestTexInsideRTCacheLookupMiss(t *testing.T) {
	c := newTexInsideRTCache(2)
	if _, ok := c.Lookup(0, 0, 0); ok {
		t.Error("Lookup on empty cache: want false")
	}
}

func TestTexInsideRTCacheInsertAndLookup(t *testing.T) {
	c := newTexInsideRTCache(2)
	want := texInsideRTEntry{targetBP: 10, endBlock: 20, offset: 5}
	c.Insert(0, 1, 2, want)

	got, ok := c.Lookup(0, 1, 2)
	if !ok || got != want {
		t.Errorf("Lookup(0, 1, 2) = %+v, %v; want %+v, true", got, ok, want)
	}
}

func TestTexInsideRTCacheEvictsLRU(t *testing.T) {
	c := newTexInsideRTCache(2)
	c.Insert(0, 1, 1, texInsideRTEntry{targetBP: 1})
	c.Insert(0, 2, 1, texInsideRTEntry{targetBP: 2})
	c.Insert(0, 3, 1, texInsideRTEntry{targetBP: 3}) // evicts (0,1,1)

	if _, ok := c.Lookup(0, 1, 1); ok {
		t.Error("Lookup(0, 1, 1): want evicted, got a hit")
	}
	if _, ok := c.Lookup(0, 3, 1); !ok {
		t.Error("Lookup(0, 3, 1): want a hit for the most recently inserted entry")
	}
}
