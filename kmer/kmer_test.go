package kmer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	km, ok := Encode([]byte("ACGTA"), 5)
	require.True(t, ok)
	require.Equal(t, "ACGTA", String(km, 5))
}

func TestEncodeRejectsNonACGT(t *testing.T) {
	_, ok := Encode([]byte("ACNTA"), 5)
	require.False(t, ok)
}

func TestCanonicalIdempotent(t *testing.T) {
	km, ok := Encode([]byte("ACGTAGC"), 7)
	require.True(t, ok)
	ca := Canonical(km, 7)
	require.Equal(t, ca, Canonical(ca, 7))
	rc := ReverseComplement(km, 7)
	require.Equal(t, ca, Canonical(rc, 7))
}

func TestReverseComplement(t *testing.T) {
	km, _ := Encode([]byte("AAAAA"), 5)
	rc := ReverseComplement(km, 5)
	require.Equal(t, "TTTTT", String(rc, 5))
}

func TestExtractDirectedGapOnN(t *testing.T) {
	// "AAAAA" valid window at 0, then N breaks the run, then "CCCCC" valid.
	seq := []byte("AAAAANCCCCC")
	kms := ExtractDirected(nil, seq, 5)
	// windows: AAAAA (pos0), then positions overlapping N invalid, CCCCC at pos6
	require.Len(t, kms, 2)
	require.Equal(t, "AAAAA", String(kms[0], 5))
	require.Equal(t, "CCCCC", String(kms[1], 5))
}

func TestExtractCanonicalOrderPreserved(t *testing.T) {
	seq := []byte("ACGTACGTA")
	dir := ExtractDirected(nil, seq, 5)
	can := ExtractCanonical(nil, seq, 5)
	require.Equal(t, len(dir), len(can))
	for i := range dir {
		require.Equal(t, Canonical(dir[i], 5), can[i])
	}
}

func TestExtractShortReadNoWindow(t *testing.T) {
	kms := ExtractDirected(nil, []byte("ACG"), 5)
	require.Empty(t, kms)
}
