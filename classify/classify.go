// Copyright 2017, Kerby Shedden and the Muscato contributors.

package classify

import "github.com/kshedden/pantr/index"

// None is the sentinel "no locus assigned yet" value for Assignment.Idx
// (NAN32 in the reference).
const None = ^uint32(0)

// Assignment is the transient per-pair front-runner record (§3): a locus id
// with its accumulated forward and reverse hit counts.
type Assignment struct {
	Idx uint32
	Fc  uint64
	Rc  uint64
}

func newAssignment() Assignment { return Assignment{Idx: None} }

// updateTop2 implements updatetop2: a strictly greater combined score than
// top's promotes to top, demoting the prior top to second; otherwise a
// strictly greater combined score than second's promotes to second. Equal
// sums never promote.
func updateTop2(fc, rc uint64, locus uint32, top, second *Assignment) {
	sum := fc + rc
	if sum > top.Fc+top.Rc {
		if top.Idx != locus {
			*second = *top
			top.Idx = locus
		}
		top.Fc, top.Rc = fc, rc
	} else if sum > second.Fc+second.Rc {
		second.Idx = locus
		second.Fc, second.Rc = fc, rc
	}
}

// acmGap implements get_acm2: whether the current lead over second is still
// smaller than what the remaining k-mers could add, i.e. the ordering is
// not yet locked in.
func acmGap(top, second Assignment, rem uint64) bool {
	return (top.Fc+top.Rc)-(second.Fc+second.Rc) < rem
}

// cmpRatio implements get_cmp: whether the ratio pass/fail decision is not
// yet forced — the locked-in top ratio is still below rth but the
// best-possible top ratio (crediting all of rem to top) is still >= rth.
func cmpRatio(top, second Assignment, rem uint64, rth float64) bool {
	denom := float64(top.Fc + top.Rc + second.Fc + second.Rc + rem)
	if denom == 0 {
		return false
	}
	locked := float64(top.Fc+top.Rc) / denom
	best := float64(top.Fc+top.Rc+rem) / denom
	return locked < rth && best >= rth
}

// acmCount implements get_acm1: whether top still needs (and could still
// reach, from rem) cth on either strand.
func acmCount(top Assignment, rem, cth uint64) bool {
	return (top.Fc < cth && cth-top.Fc <= rem) || (top.Rc < cth && cth-top.Rc <= rem)
}

// Classify implements countHit (§4.4): scan the multiplicity-sorted k-mer
// list accumulating per-locus hit counts and front-runner state, break out
// of the main scan as soon as the early-exit predicate fires, then run the
// ratio-refine and count-refine phases (which update only the current
// front-runners), and apply the final acceptance test. Returns the winning
// locus id, or nLoci if the pair is rejected.
func Classify(ix *index.Index, kmers1, kmers2 []uint64, nLoci int, cth uint64, rth float64) int {
	kmers, dup, remain := FillStats(ix, kmers1, kmers2)
	if len(kmers) == 0 {
		return nLoci
	}

	hits1 := make([]uint64, nLoci+1)
	hits2 := make([]uint64, nLoci+1)
	top, second := newAssignment(), newAssignment()

	j := len(kmers) - 1
scanAll:
	for i := 0; i < len(kmers); i++ {
		if ix.MayContain(kmers[i]) {
			loci, _ := ix.Loci(kmers[i])
			for _, locus := range loci {
				hits1[locus] += uint64(dup[i].Fwd)
				hits2[locus] += uint64(dup[i].Rev)
				updateTop2(hits1[locus], hits2[locus], locus, &top, &second)
			}
		}
		if !acmGap(top, second, remain[i]) {
			j = i
			if rth != 0.5 {
				for j+1 < len(kmers) && cmpRatio(top, second, remain[j], rth) {
					j++
					var loci []uint32
					if ix.MayContain(kmers[j]) {
						loci, _ = ix.Loci(kmers[j])
					}
					switch {
					case index.ContainsLocus(loci, top.Idx):
						top.Fc += uint64(dup[j].Fwd)
						top.Rc += uint64(dup[j].Rev)
					case index.ContainsLocus(loci, second.Idx):
						second.Fc += uint64(dup[j].Fwd)
						second.Rc += uint64(dup[j].Rev)
					}
				}
			}
			for j+1 < len(kmers) && acmCount(top, remain[j], cth) {
				j++
				var loci []uint32
				if ix.MayContain(kmers[j]) {
					loci, _ = ix.Loci(kmers[j])
				}
				if index.ContainsLocus(loci, top.Idx) {
					top.Fc += uint64(dup[j].Fwd)
					top.Rc += uint64(dup[j].Rev)
				}
			}
			break scanAll
		}
	}

	if top.Idx != None && int(top.Idx) < nLoci &&
		top.Fc >= cth && top.Rc >= cth &&
		float64(top.Fc+top.Rc)/float64(top.Fc+top.Rc+second.Fc+second.Rc) >= rth {
		return int(top.Idx)
	}
	return nLoci
}
