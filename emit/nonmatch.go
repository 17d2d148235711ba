// Copyright 2017, Kerby Shedden and the Muscato contributors.

package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/willf/bloom"
)

// NonMatchFilter tracks which read titles were assigned to some locus
// during the main pass using a Bloom filter (matching `muscato.go`'s
// `writeNonMatch`), so a second pass over the original input can emit the
// complement without keeping an exact set of every matched title in
// memory.
type NonMatchFilter struct {
	bf *bloom.BloomFilter
}

// NewNonMatchFilter sizes the filter for expectedReads items at the given
// false-positive rate.
func NewNonMatchFilter(expectedReads uint, falsePositiveRate float64) *NonMatchFilter {
	m, k := bloom.EstimateParameters(expectedReads, falsePositiveRate)
	return &NonMatchFilter{bf: bloom.New(m, k)}
}

// MarkMatched records that a read (identified by its title) was assigned
// to some locus.
func (f *NonMatchFilter) MarkMatched(title string) {
	f.bf.Add([]byte(title))
}

// Matched reports whether title was (probably) recorded by MarkMatched. A
// false positive here only means a genuinely non-matching read is dropped
// from the non-match output, never the reverse.
func (f *NonMatchFilter) Matched(title string) bool {
	return f.bf.Test([]byte(title))
}

// WriteNonMatchFastq writes title/seq as a 4-line FASTQ record with a
// placeholder quality string (all '!', the reference's convention for
// reads whose real quality was not retained) if title was not recorded as
// matched.
func (f *NonMatchFilter) WriteNonMatchFastq(w io.Writer, title, seq string) error {
	if f.Matched(title) {
		return nil
	}
	qual := strings.Repeat("!", len(seq))
	_, err := fmt.Fprintf(w, "%s\n%s\n+\n%s\n", title, seq, qual)
	return err
}
