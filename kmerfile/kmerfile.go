// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package kmerfile implements the §6 on-disk k-mer file format shared by
// the TR/NTR/bait k-mer databases and the per-locus de Bruijn graph files:
// newline-delimited blocks, each beginning with a ">locusId" header line,
// followed by "kmer\tcount" rows (for a graph file, the count column holds
// the 4-bit outgoing-edge bitmask instead of an occurrence count).
//
// Every file may optionally be snappy-compressed, signaled by a ".sz"
// suffix, matching the convention used for every intermediate and output
// file in Muscato.
package kmerfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/kshedden/pantr/kmer"
)

// Open opens path for reading, transparently wrapping it in a snappy
// reader if the name ends in ".sz".
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".sz") {
		return snappyReadCloser{r: snappy.NewReader(f), c: f}, nil
	}
	return f, nil
}

type snappyReadCloser struct {
	r *snappy.Reader
	c io.Closer
}

func (s snappyReadCloser) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s snappyReadCloser) Close() error                { return s.c.Close() }

// Create creates path for writing, transparently wrapping it in a buffered
// snappy writer if the name ends in ".sz".
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".sz") {
		return snappyWriteCloser{w: snappy.NewBufferedWriter(f), c: f}, nil
	}
	return f, nil
}

type snappyWriteCloser struct {
	w *snappy.Writer
	c io.Closer
}

func (s snappyWriteCloser) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s snappyWriteCloser) Close() error {
	if err := s.w.Close(); err != nil {
		return err
	}
	return s.c.Close()
}

// Row is one parsed "kmer\tcount" data line of a block.
type Row struct {
	Locus int
	Kmer  uint64
	// Directed is the directed (non-canonicalized) encoding of the row's
	// kmer column, in read order. Canonical is Directed canonicalized.
	// Both are populated; callers pick whichever their structure's
	// invariant requires (§3: index/TR-table keys are canonical, graph
	// nodes are directed).
	Directed  uint64
	Canonical uint64
	Value     uint64
}

// Scan reads a k-mer file of width k, invoking visit once per data row. A
// data row appearing before any ">locus" header, or a malformed line, is a
// corrupt-index condition (§7) and returns an error for the caller to
// treat as fatal.
func Scan(r io.Reader, k int, visit func(Row) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	locus := -1
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '>' {
			v, err := strconv.Atoi(strings.TrimSpace(line[1:]))
			if err != nil {
				return fmt.Errorf("kmerfile: line %d: bad locus header %q: %w", lineno, line, err)
			}
			locus = v
			continue
		}
		if locus < 0 {
			return fmt.Errorf("kmerfile: line %d: data row before any locus header", lineno)
		}
		toks := strings.SplitN(line, "\t", 2)
		if len(toks) != 2 {
			return fmt.Errorf("kmerfile: line %d: expected \"kmer\\tcount\", got %q", lineno, line)
		}
		seq := strings.TrimSpace(toks[0])
		directed, ok := kmer.Encode([]byte(seq), k)
		if !ok {
			return fmt.Errorf("kmerfile: line %d: invalid k-mer %q for k=%d", lineno, seq, k)
		}
		val, err := strconv.ParseUint(strings.TrimSpace(toks[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("kmerfile: line %d: bad count %q: %w", lineno, toks[1], err)
		}
		if err := visit(Row{
			Locus:     locus,
			Directed:  directed,
			Canonical: kmer.Canonical(directed, k),
			Value:     val,
		}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// CountLoci scans a k-mer file only for its locus headers and returns the
// number of header lines (a repeated header is counted again), matching
// the reference's countLoci used to size
// trKmerDB/graphDB before the real load pass.
func CountLoci(path string) (int, error) {
	f, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && line[0] == '>' {
			n++
		}
	}
	return n, scanner.Err()
}

// WriteBlocks writes nLoci blocks to w, in locus order, where rows(locus)
// supplies the (kmer, value) rows for one locus in the order it yields
// them. Kmer values are rendered back to nucleotide strings via kmer.String
// for width k.
func WriteBlocks(w io.Writer, k, nLoci int, rows func(locus int) []KV) error {
	bw := bufio.NewWriter(w)
	for l := 0; l < nLoci; l++ {
		if _, err := fmt.Fprintf(bw, ">%d\n", l); err != nil {
			return err
		}
		for _, kv := range rows(l) {
			if _, err := fmt.Fprintf(bw, "%s\t%d\n", kmer.String(kv.Kmer, k), kv.Value); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// KV is one output row: a kmer (in whatever form the caller's file expects
// — canonical for TR tables, directed for graphs) and its associated
// count/bitmask value.
type KV struct {
	Kmer  uint64
	Value uint64
}
