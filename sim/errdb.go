// Copyright 2017, Kerby Shedden and the Muscato contributors.

package sim

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/kshedden/pantr/classify"
	"github.com/kshedden/pantr/index"
)

// ErrCounts is the (falseNegative, falsePositiveUncorrected,
// falsePositiveCorrected) triple the reference packs into a std::tuple
// (§ countFPFN).
type ErrCounts struct {
	FN            uint64
	FPUncorrected uint64
	FPCorrected   uint64
}

// ErrDB is simulation-mode-2's per-(srcLocus, destLocus) error accounting
// table (err_umap).
type ErrDB struct {
	bySrc map[int]map[int]*ErrCounts
}

// NewErrDB allocates an empty error-accounting table.
func NewErrDB() *ErrDB {
	return &ErrDB{bySrc: make(map[int]map[int]*ErrCounts)}
}

func (e *ErrDB) cell(src, dest int) *ErrCounts {
	d, ok := e.bySrc[src]
	if !ok {
		d = make(map[int]*ErrCounts)
		e.bySrc[src] = d
	}
	c, ok := d[dest]
	if !ok {
		c = &ErrCounts{}
		d[dest] = c
	}
	return c
}

// CountFPFN implements countFPFN: for every surviving k-mer of the pair,
// attribute its fwd+rev count as a false negative if the pair's true
// locus's TR table doesn't contain it (or the pair had no true locus), and
// as a false positive if the assigned destination locus's TR table
// doesn't contain it (or the pair was unassigned). Corrected k-mers
// (cakmers, produced by successful threading) are counted separately as
// corrected false positives.
func CountFPFN(srcLocus, destLocus, nLoci int, tr *index.Table, kmers []uint64, dup []classify.KMC, cakmers map[uint64]uint64, e *ErrDB) {
	c := e.cell(srcLocus, destLocus)
	for i, km := range kmers {
		cnt := uint64(dup[i].Fwd) + uint64(dup[i].Rev)
		if srcLocus == nLoci || !tr.Has(srcLocus, km) {
			c.FN += cnt
		}
		if destLocus == nLoci || !tr.Has(destLocus, km) {
			c.FPUncorrected += cnt
		}
	}
	for km, cnt := range cakmers {
		if destLocus == nLoci || !tr.Has(destLocus, km) {
			c.FPCorrected += cnt
		}
	}
}

// Merge folds another per-thread ErrDB snapshot into e.
func (e *ErrDB) Merge(other *ErrDB) {
	for src, dests := range other.bySrc {
		for dest, c := range dests {
			cell := e.cell(src, dest)
			cell.FN += c.FN
			cell.FPUncorrected += c.FPUncorrected
			cell.FPCorrected += c.FPCorrected
		}
	}
}

// WriteTo writes the §6 `.err` file: one line per source locus,
// "src:{dest>fn,fpUncorrected,fpCorrected;...}".
func (e *ErrDB) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	srcs := make([]int, 0, len(e.bySrc))
	for s := range e.bySrc {
		srcs = append(srcs, s)
	}
	sort.Ints(srcs)
	for _, src := range srcs {
		if _, err := fmt.Fprintf(bw, "%d:{", src); err != nil {
			return err
		}
		dests := e.bySrc[src]
		keys := make([]int, 0, len(dests))
		for d := range dests {
			keys = append(keys, d)
		}
		sort.Ints(keys)
		for _, d := range keys {
			c := dests[d]
			if _, err := fmt.Fprintf(bw, "%d>%d,%d,%d;", d, c.FN, c.FPUncorrected, c.FPCorrected); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(bw, "}\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
