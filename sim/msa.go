// Copyright 2017, Kerby Shedden and the Muscato contributors.

package sim

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// MSAStats is simulation-mode-1's per-source-locus map of destination
// locus -> assignment count (msa_umap), one per source locus.
type MSAStats struct {
	byLocus []map[int]uint64
}

// NewMSAStats allocates an empty stats table for nLoci source loci, plus one
// extra slot for the sentinel locus id nLoci, the largest source id the
// pipeline accepts from a simulated title.
func NewMSAStats(nLoci int) *MSAStats {
	m := &MSAStats{byLocus: make([]map[int]uint64, nLoci+1)}
	for i := range m.byLocus {
		m.byLocus[i] = make(map[int]uint64)
	}
	return m
}

// Record increments the (src, dest) assignment count, matching the
// reference's `++msa[srcLocus][destLocus]` (only called when srcLocus !=
// destLocus and extraction to stdout is not active).
func (m *MSAStats) Record(src, dest int) {
	m.byLocus[src][dest]++
}

// Merge folds another per-thread MSAStats snapshot into m, for the
// worker-pipeline batch-boundary merge (§4.6).
func (m *MSAStats) Merge(other *MSAStats) {
	for src, dests := range other.byLocus {
		for dest, c := range dests {
			m.byLocus[src][dest] += c
		}
	}
}

// WriteTo writes the §6 `.msa` file: one ">src" header per source locus
// followed by "dest\tcount" rows, destinations in ascending order for
// deterministic output.
func (m *MSAStats) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for src, dests := range m.byLocus {
		if _, err := fmt.Fprintf(bw, ">%d\n", src); err != nil {
			return err
		}
		keys := make([]int, 0, len(dests))
		for d := range dests {
			keys = append(keys, d)
		}
		sort.Ints(keys)
		for _, d := range keys {
			if _, err := fmt.Fprintf(bw, "%d\t%d\n", d, dests[d]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
