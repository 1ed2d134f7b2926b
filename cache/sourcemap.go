// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cache

import "github.com/gviegas/gscache/gmem"

// sourceMap is the reverse index from guest page number to every Source
// whose footprint covers that page, kept in most-recently-used order so
// LookupSource's scan checks the likeliest hit first.
type sourceMap struct {
	pages [gmem.MaxPages][]*Source
}

// add registers s under every page in its footprint, at the front of
// each page's list.
func (sm *sourceMap) add(s *Source) {
	for p, set := range s.pagesAsBit.All() {
		if set {
			sm.pages[p] = append([]*Source{s}, sm.pages[p]...)
		}
	}
}

// removeAt drops s from every page list it appears in.
func (sm *sourceMap) removeAt(s *Source) {
	for p, set := range s.pagesAsBit.All() {
		if !set {
			continue
		}
		list := sm.pages[p]
		for i, x := range list {
			if x == s {
				sm.pages[p] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// sourcesAt returns the sources currently registered under page, most
// recently used first. The returned slice is shared with the map and
// must not be retained across a call to add/removeAt/promote.
func (sm *sourceMap) sourcesAt(page uint32) []*Source { return sm.pages[page] }

// promote moves s to the front of page's list, recording it as the most
// recently used Source on that page.
func (sm *sourceMap) promote(page uint32, s *Source) {
	list := sm.pages[page]
	for i, x := range list {
		if x == s {
			if i == 0 {
				return
			}
			copy(list[1:i+1], list[0:i])
			list[0] = s
			return
		}
	}
}

// removeAll drops every registered source from every page.
func (sm *sourceMap) removeAll() {
	for i := range sm.pages {
		sm.pages[i] = nil
	}
}
