// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package emit implements the §6 output writers: the updated per-locus
// k-mer count table, extracted-read records, per-pair alignment traces,
// and the Bloom-filtered non-match FASTQ pass.
package emit

import (
	"io"

	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmerfile"
)

// WriteTRKmers writes the §6 `.tr.kmers` file from a TR count table: one
// ">locus" block per locus, rows sorted by k-mer ascending.
func WriteTRKmers(w io.Writer, tr *index.Table, nLoci int) error {
	return kmerfile.WriteBlocks(w, tr.K, nLoci, func(locus int) []kmerfile.KV {
		return tr.Rows(locus)
	})
}
