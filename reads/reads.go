// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package reads implements the interleaved paired-end FASTA/FASTQ reader
// (§6 external interfaces, `-fai`/`-fqi`): each call to Next returns one
// mate pair, read as two consecutive records from a single input stream.
package reads

import (
	"bufio"
	"fmt"
	"io"
)

// Format selects the record framing of the underlying stream.
type Format int

const (
	FASTA Format = iota
	FASTQ
)

// Pair is one mate pair: titles include the record's leading '>' or '@'.
type Pair struct {
	Title1 string
	Seq1   string
	Title2 string
	Seq2   string
}

// Reader scans an interleaved paired-end stream, two records (one pair) at
// a time, in the style of the teacher's ReadInSeq scanner.
type Reader struct {
	format  Format
	scanner *bufio.Scanner
}

// NewReader wraps r for the given format. Matches the teacher's 64KiB
// initial / 1MiB max scanner buffer, sized for long nanopore-class reads.
func NewReader(r io.Reader, format Format) *Reader {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return &Reader{format: format, scanner: scanner}
}

// Next reads one mate pair. ok is false at a clean EOF between pairs; err
// is non-nil if the stream ends mid-pair or mid-record, or on a scan
// error.
func (rd *Reader) Next() (p Pair, ok bool, err error) {
	t1, s1, ok1, err := rd.nextRecord()
	if err != nil {
		return Pair{}, false, err
	}
	if !ok1 {
		return Pair{}, false, nil
	}
	t2, s2, ok2, err := rd.nextRecord()
	if err != nil {
		return Pair{}, false, err
	}
	if !ok2 {
		return Pair{}, false, fmt.Errorf("reads: truncated pair after mate %q", t1)
	}
	return Pair{Title1: t1, Seq1: s1, Title2: t2, Seq2: s2}, true, nil
}

// ReadBatch reads up to n pairs, stopping early (without error) at a clean
// EOF that falls on a pair boundary. Used by the worker pipeline's
// reader-lock critical section (§4.6) to pull one batch at a time.
func (rd *Reader) ReadBatch(n int) ([]Pair, error) {
	batch := make([]Pair, 0, n)
	for len(batch) < n {
		p, ok, err := rd.Next()
		if err != nil {
			return batch, err
		}
		if !ok {
			break
		}
		batch = append(batch, p)
	}
	return batch, nil
}

func (rd *Reader) nextRecord() (title, seq string, ok bool, err error) {
	if !rd.scanner.Scan() {
		return "", "", false, rd.scanner.Err()
	}
	title = rd.scanner.Text()
	if !rd.scanner.Scan() {
		if err := rd.scanner.Err(); err != nil {
			return "", "", false, err
		}
		return "", "", false, fmt.Errorf("reads: missing sequence line after title %q", title)
	}
	seq = rd.scanner.Text()
	if rd.format == FASTQ {
		if !rd.scanner.Scan() {
			return "", "", false, fmt.Errorf("reads: missing '+' line after title %q", title)
		}
		if !rd.scanner.Scan() {
			return "", "", false, fmt.Errorf("reads: missing quality line after title %q", title)
		}
	}
	return title, seq, true, nil
}
