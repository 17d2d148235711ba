// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package index implements the global inverted index (§3 KmerToLoci) that
// maps a canonical k-mer to the set of tandem-repeat loci whose reference
// k-mer set contains it, plus an optional Bloom "fast screen" layer in
// front of it (§B.2 of SPEC_FULL.md) modeled on muscato_screen.go's
// multi-hash Bloom sketch.
//
// The index is built once at startup from the on-disk §6 k-mer file format
// and is immutable during query; concurrent reads from many worker
// goroutines require no locking.
package index

import "sort"

// Index is the inverted index from canonical k-mer to the sorted, unique
// set of locus ids whose reference k-mer set contains it. Locus id NLoci is
// the reserved "bait / unassigned" sentinel (§3) and may also appear as a
// posting when the index is built from a bait k-mer file.
type Index struct {
	K     int
	NLoci int

	post   map[uint64][]uint32
	screen *screen
}

// New creates an empty index for k-mers of width k over nLoci real loci. If
// screenBits is nonzero, a Bloom fast-screen with numHash independent hash
// functions backs MayContain; pass screenBits=0 to disable it and make
// MayContain always report "maybe present".
func New(k, nLoci int, screenBits uint64, numHash int) *Index {
	ix := &Index{
		K:     k,
		NLoci: nLoci,
		post:  make(map[uint64][]uint32),
	}
	if screenBits > 0 && numHash > 0 {
		ix.screen = newScreen(screenBits, numHash)
	}
	return ix
}

// Add records that canonical k-mer km appears in locus's reference k-mer
// set. Loci are kept sorted and deduplicated per k-mer.
func (ix *Index) Add(km uint64, locus int) {
	l := uint32(locus)
	lst := ix.post[km]
	i := sort.Search(len(lst), func(i int) bool { return lst[i] >= l })
	if i < len(lst) && lst[i] == l {
		// already recorded
	} else {
		lst = append(lst, 0)
		copy(lst[i+1:], lst[i:])
		lst[i] = l
		ix.post[km] = lst
	}
	if ix.screen != nil {
		ix.screen.add(km)
	}
}

// Loci returns the sorted locus ids containing km, and whether km is
// present in the index at all.
func (ix *Index) Loci(km uint64) ([]uint32, bool) {
	lst, ok := ix.post[km]
	return lst, ok
}

// Multiplicity returns m(k) = |KmerToLoci[k]|, the number of loci whose
// posting list contains km, and whether km is present at all (§4.3, §
// GLOSSARY "specificity").
func (ix *Index) Multiplicity(km uint64) (int, bool) {
	lst, ok := ix.post[km]
	return len(lst), ok
}

// Len returns the number of distinct k-mers recorded in the index.
func (ix *Index) Len() int { return len(ix.post) }

// MayContain is a false-positive-only, false-negative-free membership test:
// if it returns false, km is definitely absent from the index and callers
// may skip the authoritative map lookup; if it returns true, the caller
// must still consult Loci/Multiplicity for the real answer. With no Bloom
// screen configured it always returns true (i.e. it never short-circuits).
func (ix *Index) MayContain(km uint64) bool {
	if ix.screen == nil {
		return true
	}
	return ix.screen.test(km)
}

// ContainsLocus reports whether the sorted locus list lst contains id,
// using binary search — the Go translation of the original's
// unordered_set::count(top.idx) checks used during classifier refinement
// (§4.4).
func ContainsLocus(lst []uint32, id uint32) bool {
	i := sort.Search(len(lst), func(i int) bool { return lst[i] >= id })
	return i < len(lst) && lst[i] == id
}
