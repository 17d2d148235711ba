// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package thread implements graph threading (§4.5): walking a read's
// directed k-mers through a locus's de Bruijn graph to decide whether the
// read is a plausible pangenomic walk, optionally correcting single-base
// errors along the way.
package thread

import (
	"github.com/kshedden/pantr/graph"
	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmer"
)

// MaxCorrection bounds the number of substitution corrections a single
// threading attempt may make (§4.5).
const MaxCorrection = 2

// Result is isThreadFeasible's three-way outcome.
type Result int

const (
	Reject                 Result = 0
	Accepted               Result = 1
	AcceptedWithCorrection Result = 2
)

var nucLetters = [8]byte{'A', 'C', 'G', 'T', 'a', 'c', 'g', 't'}

func nucMaskK(k int) uint64 {
	if k <= 1 {
		return 0
	}
	return (uint64(1) << uint(2*(k-1))) - 1
}

// Thread walks directed k-mers through locus graph g, starting from the
// first position whose k-mer is a graph node. kmers is mutated in place:
// corrected positions are rewritten with the committed nucleotide and the
// change is propagated forward to the next up-to-(k-1) k-mers of the same
// run, so callers that canonicalize kmers afterward see the corrected
// read. tr, if non-nil, is consulted to decide upper/lower-case op
// characters (TR-table membership); ops, if non-nil, must have length
// len(kmers) and receives one trace character per k-mer position.
func Thread(g *graph.Graph, kmers []uint64, thCth int, correction bool, tr *index.Table, locus int, ops []byte) Result {
	k := g.K
	nkmers := len(kmers)
	if nkmers == 0 {
		return Reject
	}

	var maxSkip int
	if nkmers >= thCth {
		maxSkip = nkmers - thCth
	}
	nskip, ncorrection := 0, 0

	isTR := func(km uint64) bool {
		return tr != nil && tr.Has(locus, kmer.Canonical(km, k))
	}
	markOp := func(i int, km uint64) {
		if ops == nil {
			return
		}
		if isTR(km) {
			ops[i] = '='
		} else {
			ops[i] = '.'
		}
	}

	i0 := 0
	for !g.Has(kmers[i0]) {
		if ops != nil {
			ops[i0] = 'S'
		}
		nskip++
		i0++
		if i0 >= nkmers {
			return Reject
		}
	}
	markOp(i0, kmers[i0])
	feasible := map[uint64]bool{kmers[i0]: true}

	var outBuf []uint64
	for i := i0 + 1; i < nkmers; i++ {
		if kmers[i] == kmers[i-1] {
			if ops != nil {
				if isTR(kmers[i]) {
					ops[i] = 'H'
				} else {
					ops[i] = 'h'
				}
			}
			nskip++
			continue
		}

		next := make(map[uint64]bool)
		matched := false
		for node := range feasible {
			outBuf = g.OutNodes(outBuf, node)
			found := false
			for _, on := range outBuf {
				next[on] = true
				if kmers[i] == on {
					found = true
					break
				}
			}
			if found {
				next = map[uint64]bool{kmers[i]: true}
				matched = true
				break
			}
		}
		if matched {
			markOp(i, kmers[i])
			feasible = next
			continue
		}

		oldnt := kmers[i] & 3
		var candnts []uint64
		if correction && ncorrection < MaxCorrection {
			for nt := uint64(0); nt < 4; nt++ {
				if nt == oldnt {
					continue
				}
				if next[kmers[i]-oldnt+nt] {
					candnts = append(candnts, nt)
				}
			}
		}

		if len(candnts) == 0 {
			if ops != nil {
				ops[i] = 'S'
			}
			nskip++
			if nskip > maxSkip {
				return Reject
			}
			feasible = next
			continue
		}

		corrected := len(candnts) == 1
		if !corrected {
			depth := k
			if nkmers-i < depth {
				depth = nkmers - i
			}
			for j := 1; j < depth; j++ {
				var survivors []uint64
				for _, nt := range candnts {
					shift := uint((j - 1) * 2)
					node := kmers[i+j-1] + uint64((int64(nt)-int64(oldnt))<<shift)
					outBuf = g.OutNodes(outBuf, node)
					candKmer := kmers[i+j] + uint64((int64(nt)-int64(oldnt))<<uint(j*2))
					for _, on := range outBuf {
						if on == candKmer {
							survivors = append(survivors, nt)
							break
						}
					}
				}
				candnts = survivors
				if len(candnts) == 0 {
					break
				}
				if len(candnts) == 1 {
					corrected = true
					break
				}
			}
			if len(candnts) > 1 {
				corrected = true // commits to candnts[0], a known small-nucleotide bias (§9)
			}
		}

		if !corrected {
			if ops != nil {
				ops[i] = 'S'
			}
			nskip++
			feasible = next
			continue
		}

		ncorrection++
		nt := candnts[0]
		kmers[i] = kmers[i] - oldnt + nt
		if ops != nil {
			if isTR(kmers[i]) {
				ops[i] = nucLetters[nt]
			} else {
				ops[i] = nucLetters[nt+4]
			}
		}
		mask := nucMaskK(k)
		depth := k
		if nkmers-i < depth {
			depth = nkmers - i
		}
		for j := 1; j < depth; j++ {
			nextKmer := kmers[i+j] - (oldnt << uint(j*2)) + (nt << uint(j*2))
			if (nextKmer>>2)<<2 != (kmers[i+j-1]&mask)<<2 {
				break
			}
			kmers[i+j] = nextKmer
		}
		feasible = map[uint64]bool{kmers[i]: true}
	}

	if nskip < maxSkip && ncorrection < MaxCorrection {
		if ncorrection > 0 {
			return AcceptedWithCorrection
		}
		return Accepted
	}
	return Reject
}
