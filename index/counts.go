// Copyright 2017, Kerby Shedden and the Muscato contributors.

package index

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kshedden/pantr/kmerfile"
)

// Table is the TR reference count table (§3 LocusCounts[L]): for each
// locus, a map from canonical k-mer to a 64-bit occurrence count,
// initialized from the reference TR k-mer file. During a run only counts
// for keys already present are incremented; unknown k-mers are never
// inserted (§3 invariant).
type Table struct {
	K     int
	NLoci int
	loci  []locusCounts
}

type locusCounts struct {
	mu     sync.Mutex
	counts map[uint64]*uint64
}

// NewTable allocates an empty table for nLoci loci.
func NewTable(k, nLoci int) *Table {
	t := &Table{K: k, NLoci: nLoci, loci: make([]locusCounts, nLoci)}
	for i := range t.loci {
		t.loci[i].counts = make(map[uint64]*uint64)
	}
	return t
}

// LoadFrom populates the table from the reference TR k-mer file: every
// row's canonical k-mer becomes a present key for its locus, with the
// file's own count column as the initial value (the reference loads the
// file's existing counts as the starting point for accumulation).
func (t *Table) LoadFrom(path string) error {
	f, err := kmerfile.Open(path)
	if err != nil {
		return fmt.Errorf("index: opening %s: %w", path, err)
	}
	defer f.Close()
	return kmerfile.Scan(f, t.K, func(r kmerfile.Row) error {
		if r.Locus < 0 || r.Locus >= t.NLoci {
			return fmt.Errorf("index: locus %d out of range [0,%d)", r.Locus, t.NLoci)
		}
		v := r.Value
		t.loci[r.Locus].counts[r.Canonical] = &v
		return nil
	})
}

// Has reports whether canonical k-mer km is a TR reference k-mer of locus.
// Used by the threading step (§4.5) to test whether a node is "in the TR
// table" for alignment-op casing, and by the invariant in §3 linking the
// graph and the TR table.
func (t *Table) Has(locus int, km uint64) bool {
	if locus < 0 || locus >= t.NLoci {
		return false
	}
	_, ok := t.loci[locus].counts[km]
	return ok
}

// Add increments the count for canonical k-mer km at locus by delta, but
// only if km is already a present key — unknown k-mers are never inserted
// (§3 invariant). Safe for concurrent use by multiple workers: per §4.6,
// increments to distinct keys are independent and increments to the same
// key are order-independent, so this uses a per-locus mutex rather than a
// global one (coarser than a true atomic map update, but the common case of
// distinct loci per worker batch never contends).
func (t *Table) Add(locus int, km uint64, delta uint64) {
	if locus < 0 || locus >= t.NLoci || delta == 0 {
		return
	}
	lc := &t.loci[locus]
	lc.mu.Lock()
	if p, ok := lc.counts[km]; ok {
		atomic.AddUint64(p, delta)
	}
	lc.mu.Unlock()
}

// Rows returns a deterministically (kmer-ascending) ordered snapshot of one
// locus's (kmer, count) pairs, for writing a .tr.kmers output file.
func (t *Table) Rows(locus int) []kmerfile.KV {
	lc := &t.loci[locus]
	lc.mu.Lock()
	defer lc.mu.Unlock()
	out := make([]kmerfile.KV, 0, len(lc.counts))
	for km, p := range lc.counts {
		out = append(out, kmerfile.KV{Kmer: km, Value: atomic.LoadUint64(p)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kmer < out[j].Kmer })
	return out
}
