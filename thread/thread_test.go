package thread

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kshedden/pantr/graph"
	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmer"
	"github.com/stretchr/testify/require"
)

// buildChain extracts seq's directed k-mers and wires them as a simple
// linear de Bruijn graph (each k-mer's out-edges are its true successors
// in seq; a k-mer that recurs keeps the edges of every occurrence),
// mirroring a single clean haplotype's graph.
func buildChain(t *testing.T, seq string, k int) (*graph.Graph, []uint64) {
	t.Helper()
	kms := kmer.ExtractDirected(nil, []byte(seq), k)
	require.NotEmpty(t, kms)
	g := graph.New(k)
	masks := make(map[uint64]uint8, len(kms))
	for i, km := range kms {
		var mask uint8
		if i+1 < len(kms) {
			mask = 1 << (kms[i+1] & 3)
		}
		masks[km] |= mask
	}
	for km, mask := range masks {
		g.AddNode(km, mask)
	}
	return g, kms
}

func TestThreadAcceptsPerfectChain(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTACGTA", 7)
	read := append([]uint64{}, kms...)
	ops := make([]byte, len(read))
	res := Thread(g, read, 4, false, nil, 0, ops)
	require.Equal(t, Accepted, res)
	for _, op := range ops {
		require.Equal(t, byte('.'), op)
	}
}

func TestThreadHomopolymerCollapseStillAccepts(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTACG", 7) // 5 directed k-mers A..E; E repeats A
	require.Len(t, kms, 5)
	read := []uint64{kms[0], kms[1], kms[2], kms[2], kms[3], kms[4]}
	ops := make([]byte, len(read))
	res := Thread(g, read, 4, false, nil, 0, ops)
	require.Equal(t, Accepted, res)
	require.Equal(t, byte('h'), ops[3])
}

func TestThreadAcceptsWithTrailingCorrection(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTAC", 7) // 4 directed nodes A..D
	require.Len(t, kms, 4)
	d := kms[3]
	oldBase := d & 3
	newBase := (oldBase + 1) % 4
	x := d - oldBase + newBase
	require.NotEqual(t, d, x)

	read := append(append([]uint64{}, kms[:3]...), x)
	ops := make([]byte, len(read))
	res := Thread(g, read, 3, true, nil, 0, ops)
	require.Equal(t, AcceptedWithCorrection, res)
	require.Equal(t, byte('.'), ops[0])
	require.Equal(t, byte('.'), ops[1])
	require.Equal(t, byte('.'), ops[2])
	require.True(t, strings.ContainsRune("acgt", rune(ops[3])))
	require.Equal(t, d, read[3]) // corrected in place
}

func TestThreadCorrectionUsesUppercaseWhenTR(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTAC", 7)
	d := kms[3]
	oldBase := d & 3
	newBase := (oldBase + 1) % 4
	x := d - oldBase + newBase

	dir := t.TempDir()
	p := filepath.Join(dir, "tr.kmers")
	body := fmt.Sprintf(">0\n%s\t0\n", kmer.String(kmer.Canonical(d, 7), 7))
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	tr := index.NewTable(7, 1)
	require.NoError(t, tr.LoadFrom(p))

	read := append(append([]uint64{}, kms[:3]...), x)
	ops := make([]byte, len(read))
	res := Thread(g, read, 3, true, tr, 0, ops)
	require.Equal(t, AcceptedWithCorrection, res)
	require.True(t, strings.ContainsRune("ACGT", rune(ops[3])))
}

func TestThreadRejectsUncorrectableTail(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTAC", 7)
	d := kms[3]
	y := d ^ (uint64(1) << 10) // differs in a high bit, not just the trailing base
	read := append(append([]uint64{}, kms[:3]...), y)
	res := Thread(g, read, 3, true, nil, 0, nil)
	require.Equal(t, Reject, res)
}

// TestThreadAcceptsMiddleCorrectionWithValidSuccessor covers a read whose bad
// k-mer sits one position before the end of the chain rather than at the
// very last position: the corrected k-mer must still thread forward into a
// real successor for the read to be accepted.
func TestThreadAcceptsMiddleCorrectionWithValidSuccessor(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTACG", 7) // 5 directed k-mers A..E; E repeats A
	require.Len(t, kms, 5)
	d := kms[3]
	oldBase := d & 3
	newBase := (oldBase + 1) % 4
	x := d - oldBase + newBase
	require.NotEqual(t, d, x)

	read := []uint64{kms[0], kms[1], kms[2], x, kms[4]}
	ops := make([]byte, len(read))
	res := Thread(g, read, 4, true, nil, 0, ops)
	require.Equal(t, AcceptedWithCorrection, res)
	require.Equal(t, byte('.'), ops[0])
	require.Equal(t, byte('.'), ops[1])
	require.Equal(t, byte('.'), ops[2])
	require.True(t, strings.ContainsRune("acgt", rune(ops[3])))
	require.Equal(t, byte('.'), ops[4])
	require.Equal(t, d, read[3])
	require.Equal(t, kms[4], read[4])
}

// TestThreadRejectsTwoUncorrectablePositions covers a read with two
// independent bad k-mers, neither of which is a single-base substitution
// away from its expected chain node: the thread must reject rather than
// accept with two corrections.
func TestThreadRejectsTwoUncorrectablePositions(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTACG", 7) // 5 directed k-mers A..E; E repeats A
	require.Len(t, kms, 5)
	bad1 := kms[1] ^ (uint64(1) << 10)
	bad2 := kms[3] ^ (uint64(1) << 10)
	read := []uint64{kms[0], bad1, kms[2], bad2, kms[4]}
	res := Thread(g, read, 4, true, nil, 0, nil)
	require.Equal(t, Reject, res)
}

func TestThreadCorrectionTieBreakPicksSmallestNucleotide(t *testing.T) {
	g := graph.New(3)
	g.AddNode(0, 0b0101) // out-edges to trailing A(0) and G(2), ambiguous at full look-ahead
	read := []uint64{0, 1}
	ops := make([]byte, len(read))
	res := Thread(g, read, 1, true, nil, 0, ops)
	require.Equal(t, AcceptedWithCorrection, res)
	require.Equal(t, byte('a'), ops[1]) // smaller ordinal (A=0) wins over G=2
	require.EqualValues(t, 0, read[1])
}

func TestThreadSkipCountedOncePerPosition(t *testing.T) {
	g, kms := buildChain(t, "ACGTACGTACG", 7)
	read := []uint64{kms[0], kms[1], kms[2], kms[2], kms[3], kms[4]}
	ops := make([]byte, len(read))
	res := Thread(g, read, 4, false, nil, 0, ops)
	require.Equal(t, Accepted, res)
	skipLike := 0
	for _, op := range ops {
		if op == 'S' || op == 'H' || op == 'h' {
			skipLike++
		}
	}
	require.Equal(t, 1, skipLike) // the single homopolymer position, counted once
}

func TestThreadRejectsWhenNoNodeMatchesAtAll(t *testing.T) {
	g := graph.New(7)
	read := []uint64{123, 456, 789}
	res := Thread(g, read, 1, false, nil, 0, nil)
	require.Equal(t, Reject, res)
}
