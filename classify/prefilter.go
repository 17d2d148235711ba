// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package classify implements the pre-filter, multiplicity accounting, and
// locus-classification state machine (§4.2-§4.4): given a pair's two mate
// k-mer lists and the inverted index, decide whether the pair maps to a
// single locus with enough specificity and coverage to accept.
package classify

import "github.com/kshedden/pantr/index"

// DefaultNFilter and DefaultNMFilter are the reference pre-filter
// parameters (§4.2): subsample 4 positions per mate, accept a mate as soon
// as 1 of them hits the index.
const (
	DefaultNFilter  = 4
	DefaultNMFilter = 1
)

// PreFilter implements kfilter (§4.2): evaluate nFilter positions of each
// mate's k-mer list, spaced as {0, L/(nFilter-1), 2L/(nFilter-1), ...,
// L-1}, stopping as soon as the running hit count reaches nmFilter. The
// pair passes iff both mates individually reach nmFilter.
func PreFilter(ix *index.Index, kmers1, kmers2 []uint64, nFilter, nmFilter int) bool {
	if !preFilterMate(ix, kmers1, nFilter, nmFilter) {
		return false
	}
	return preFilterMate(ix, kmers2, nFilter, nmFilter)
}

func preFilterMate(ix *index.Index, kmers []uint64, nFilter, nmFilter int) bool {
	l := len(kmers)
	if l == 0 || nFilter < 2 {
		return false
	}
	step := l / (nFilter - 1)
	h := 0
	for i := 0; i < nFilter; i++ {
		pos := i * step
		if i == nFilter-1 {
			pos = l - 1
		}
		if ix.MayContain(kmers[pos]) {
			if _, ok := ix.Loci(kmers[pos]); ok {
				h++
			}
		}
		if h >= nmFilter {
			return true
		}
	}
	return h >= nmFilter
}
